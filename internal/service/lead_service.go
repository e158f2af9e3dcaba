package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pipeline"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

var (
	ErrLeadNotFound    = errors.New("线索不存在")
	ErrGroupNotFound   = errors.New("线索组不存在")
	ErrGroupUnassigned = errors.New("线索组尚未指派经理，不能往里放线索")
	ErrAssigneeUnknown = errors.New("指派对象不存在")
)

type LeadService struct {
	leadRepo   *repository.LeadRepository
	teamRepo   *repository.TeamRepository
	clientRepo *repository.ClientRepository
	callRepo   *repository.CallRepository
}

func NewLeadService(leadRepo *repository.LeadRepository, teamRepo *repository.TeamRepository, clientRepo *repository.ClientRepository, callRepo *repository.CallRepository) *LeadService {
	return &LeadService{
		leadRepo:   leadRepo,
		teamRepo:   teamRepo,
		clientRepo: clientRepo,
		callRepo:   callRepo,
	}
}

// buildRoster 拉全量经理/员工建查找表
func (s *LeadService) buildRoster(companyID int64) (*pipeline.Roster, error) {
	managers, err := s.teamRepo.ListManagers(companyID)
	if err != nil {
		return nil, err
	}
	employees, err := s.teamRepo.ListEmployees(companyID)
	if err != nil {
		return nil, err
	}
	return pipeline.BuildRoster(managers, employees), nil
}

// ListLeads 线索列表：全量拉取后走内存筛选管线
func (s *LeadService) ListLeads(companyID int64, filters pipeline.Filters, page int) (*dto.LeadListResponse, error) {
	roster, err := s.buildRoster(companyID)
	if err != nil {
		return nil, err
	}

	leads, err := s.leadRepo.ListAll(companyID)
	if err != nil {
		return nil, err
	}

	groups, err := s.leadRepo.ListGroups(companyID)
	if err != nil {
		return nil, err
	}
	groupByID := make(map[int64]*model.LeadGroup, len(groups))
	for _, g := range groups {
		groupByID[g.ID] = g
	}

	rows := make([]pipeline.LeadRow, 0, len(leads))
	for _, l := range leads {
		row := pipeline.LeadRow{
			Lead:  l,
			Owner: roster.ResolveOwner(l.AssignedTo, l.UserID),
		}
		if l.GroupID != nil {
			row.Group = groupByID[*l.GroupID]
		}
		rows = append(rows, row)
	}

	filtered := pipeline.FilterLeads(rows, filters, roster)
	total := len(filtered)
	paged := pipeline.Paginate(filtered, page)

	// 补充通话数和客户/职位名
	leadIDs := make([]int64, 0, len(paged))
	for _, r := range paged {
		leadIDs = append(leadIDs, r.Lead.ID)
	}
	callCounts, err := s.callRepo.CountByLead(companyID, leadIDs)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LeadItem, 0, len(paged))
	for _, r := range paged {
		items = append(items, s.buildLeadItem(companyID, r, callCounts[r.Lead.ID]))
	}

	if page < 1 {
		page = 1
	}
	return &dto.LeadListResponse{
		Leads:      items,
		Total:      total,
		Page:       page,
		TotalPages: pipeline.TotalPages(total),
	}, nil
}

func (s *LeadService) buildLeadItem(companyID int64, r pipeline.LeadRow, callCount int) dto.LeadItem {
	item := dto.LeadItem{
		ID:        r.Lead.ID,
		Name:      r.Lead.Name,
		Email:     r.Lead.Email,
		Phone:     r.Lead.Phone,
		Status:    r.Lead.Status,
		Source:    r.Lead.Source,
		GroupID:   r.Lead.GroupID,
		OwnerName: r.Owner.Name(),
		CallCount: callCount,
		CreatedAt: r.Lead.CreatedAt.Format(time.RFC3339),
	}
	if r.Owner.Manager != nil {
		item.OwnerRole = model.RoleManager
	} else if r.Owner.Employee != nil {
		item.OwnerRole = model.RoleEmployee
	}
	if r.Group != nil {
		item.GroupName = r.Group.Name
	}
	if r.Lead.ClientID != nil {
		if client, err := s.clientRepo.GetByID(companyID, *r.Lead.ClientID); err == nil {
			item.ClientName = client.Name
		}
	}
	if r.Lead.JobID != nil {
		if job, err := s.clientRepo.GetJobByID(companyID, *r.Lead.JobID); err == nil {
			item.JobTitle = job.Title
		}
	}
	return item
}

// CreateLead 创建线索。放进组里时组必须已指派经理
func (s *LeadService) CreateLead(companyID int64, req *dto.CreateLeadRequest) (*model.Lead, error) {
	lead := &model.Lead{
		CompanyID: companyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
		Status:    model.LeadStatusUnassigned,
		Source:    "manual",
		ClientID:  req.ClientID,
		JobID:     req.JobID,
	}

	if req.GroupID != nil {
		group, err := s.leadRepo.GetGroupByID(companyID, *req.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGroupNotFound
			}
			return nil, err
		}
		if group.AssignedTo == nil {
			return nil, ErrGroupUnassigned
		}
		lead.GroupID = req.GroupID
		lead.Source = "group"
		// 组内线索继承组的经理归属
		lead.AssignedTo = group.AssignedTo
		lead.Status = model.LeadStatusAssigned
	}

	if err := s.leadRepo.Create(lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// UpdateLead 更新线索
func (s *LeadService) UpdateLead(companyID, leadID int64, req *dto.UpdateLeadRequest) error {
	if _, err := s.leadRepo.GetByID(companyID, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.GroupID != nil {
		group, err := s.leadRepo.GetGroupByID(companyID, *req.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}
		if group.AssignedTo == nil {
			return ErrGroupUnassigned
		}
		fields["group_id"] = *req.GroupID
	}
	if req.ClientID != nil {
		fields["client_id"] = *req.ClientID
	}
	if req.JobID != nil {
		fields["job_id"] = *req.JobID
	}
	if len(fields) == 0 {
		return nil
	}
	return s.leadRepo.UpdateFields(companyID, leadID, fields)
}

// DeleteLead 删除线索
func (s *LeadService) DeleteLead(companyID, leadID int64) error {
	if _, err := s.leadRepo.GetByID(companyID, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}
	return s.leadRepo.Delete(companyID, leadID)
}

// AssignLead 分配/改派线索。assignee_id 按归属解析的老规矩解释：
// 先当经理行 ID，再当员工 user_id。写回 assigned_to 列，
// 老的 user_id 列清掉，避免两列打架。
func (s *LeadService) AssignLead(companyID, leadID int64, assigneeID int64) (*dto.LeadItem, error) {
	lead, err := s.leadRepo.GetByID(companyID, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	roster, err := s.buildRoster(companyID)
	if err != nil {
		return nil, err
	}

	owner := roster.ResolveOwner(&assigneeID, nil)
	if owner.Unassigned() {
		return nil, ErrAssigneeUnknown
	}

	err = s.leadRepo.UpdateFields(companyID, leadID, map[string]interface{}{
		"assigned_to": assigneeID,
		"user_id":     nil,
		"status":      model.LeadStatusAssigned,
	})
	if err != nil {
		return nil, err
	}

	lead.AssignedTo = &assigneeID
	lead.UserID = nil
	lead.Status = model.LeadStatusAssigned

	item := s.buildLeadItem(companyID, pipeline.LeadRow{Lead: lead, Owner: owner}, 0)
	return &item, nil
}

// UnassignLead 收回线索
func (s *LeadService) UnassignLead(companyID, leadID int64) error {
	if _, err := s.leadRepo.GetByID(companyID, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}
	return s.leadRepo.UpdateFields(companyID, leadID, map[string]interface{}{
		"assigned_to": nil,
		"user_id":     nil,
		"status":      model.LeadStatusUnassigned,
	})
}

// ListGroups 线索组列表
func (s *LeadService) ListGroups(companyID int64) ([]dto.GroupItem, error) {
	groups, err := s.leadRepo.ListGroups(companyID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.GroupItem, 0, len(groups))
	for _, g := range groups {
		item := dto.GroupItem{
			ID:        g.ID,
			Name:      g.Name,
			CreatedAt: g.CreatedAt.Format(time.RFC3339),
		}
		if g.AssignedTo != nil {
			if manager, err := s.teamRepo.GetManagerByID(companyID, *g.AssignedTo); err == nil {
				item.ManagerName = manager.Name
			}
		}
		count, err := s.leadRepo.CountByGroup(companyID, g.ID)
		if err != nil {
			return nil, err
		}
		item.LeadCount = int(count)
		items = append(items, item)
	}
	return items, nil
}

// CreateGroup 创建线索组
func (s *LeadService) CreateGroup(companyID int64, req *dto.CreateGroupRequest) (*model.LeadGroup, error) {
	if req.AssignedTo != nil {
		if _, err := s.teamRepo.GetManagerByID(companyID, *req.AssignedTo); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeUnknown
			}
			return nil, err
		}
	}

	group := &model.LeadGroup{
		CompanyID:  companyID,
		Name:       req.Name,
		AssignedTo: req.AssignedTo,
	}
	if err := s.leadRepo.CreateGroup(group); err != nil {
		return nil, err
	}
	return group, nil
}

// AssignGroup 给组指派经理
func (s *LeadService) AssignGroup(companyID, groupID, managerID int64) error {
	if _, err := s.leadRepo.GetGroupByID(companyID, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	if _, err := s.teamRepo.GetManagerByID(companyID, managerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeUnknown
		}
		return err
	}
	return s.leadRepo.UpdateGroupFields(companyID, groupID, map[string]interface{}{
		"assigned_to": managerID,
	})
}

// DeleteGroup 删除线索组，组内线索一并删除，返回删掉的线索数
func (s *LeadService) DeleteGroup(companyID, groupID int64) (*dto.DeleteGroupResponse, error) {
	if _, err := s.leadRepo.GetGroupByID(companyID, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	removed, err := s.leadRepo.DeleteGroupCascade(companyID, groupID)
	if err != nil {
		return nil, err
	}
	return &dto.DeleteGroupResponse{RemovedLeads: int(removed)}, nil
}
