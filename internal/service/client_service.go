package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

var (
	ErrClientNotFound = errors.New("客户不存在")
	ErrJobNotFound    = errors.New("职位不存在")
	ErrClientHasLeads = errors.New("客户名下还有线索，不能删除")
	ErrJobHasLeads    = errors.New("职位名下还有线索，不能删除")
)

// ClientService HR 行业租户的客户/职位管理
type ClientService struct {
	clientRepo *repository.ClientRepository
	leadRepo   *repository.LeadRepository
}

func NewClientService(clientRepo *repository.ClientRepository, leadRepo *repository.LeadRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		leadRepo:   leadRepo,
	}
}

// ListClients 客户列表，带在招职位数和关联线索数
func (s *ClientService) ListClients(companyID int64) ([]dto.ClientItem, error) {
	clients, err := s.clientRepo.ListAll(companyID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ClientItem, 0, len(clients))
	for _, c := range clients {
		openJobs, err := s.clientRepo.CountOpenJobs(companyID, c.ID)
		if err != nil {
			return nil, err
		}
		leadCount, err := s.leadRepo.CountByClient(companyID, c.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, dto.ClientItem{
			ID:            c.ID,
			Name:          c.Name,
			ContactPerson: c.ContactPerson,
			Email:         c.Email,
			Phone:         c.Phone,
			OpenJobs:      int(openJobs),
			LeadCount:     int(leadCount),
			CreatedAt:     c.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

// CreateClient 创建客户
func (s *ClientService) CreateClient(companyID int64, req *dto.CreateClientRequest) (*model.Client, error) {
	client := &model.Client{
		CompanyID:     companyID,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Notes:         req.Notes,
		Status:        "active",
	}
	if err := s.clientRepo.Create(client); err != nil {
		return nil, err
	}
	return client, nil
}

// UpdateClient 更新客户
func (s *ClientService) UpdateClient(companyID, clientID int64, req *dto.UpdateClientRequest) error {
	if _, err := s.clientRepo.GetByID(companyID, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.ContactPerson != nil {
		fields["contact_person"] = *req.ContactPerson
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
	if len(fields) == 0 {
		return nil
	}
	return s.clientRepo.UpdateFields(companyID, clientID, fields)
}

// DeleteClient 删除客户。名下还有线索时拒绝
func (s *ClientService) DeleteClient(companyID, clientID int64) error {
	if _, err := s.clientRepo.GetByID(companyID, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return err
	}

	leadCount, err := s.leadRepo.CountByClient(companyID, clientID)
	if err != nil {
		return err
	}
	if leadCount > 0 {
		return ErrClientHasLeads
	}

	return s.clientRepo.Delete(companyID, clientID)
}

// ListJobs 职位列表
func (s *ClientService) ListJobs(companyID int64) ([]dto.JobItem, error) {
	jobs, err := s.clientRepo.ListJobs(companyID)
	if err != nil {
		return nil, err
	}
	clients, err := s.clientRepo.ListAll(companyID)
	if err != nil {
		return nil, err
	}
	clientByID := make(map[int64]*model.Client, len(clients))
	for _, c := range clients {
		clientByID[c.ID] = c
	}

	items := make([]dto.JobItem, 0, len(jobs))
	for _, j := range jobs {
		item := dto.JobItem{
			ID:        j.ID,
			ClientID:  j.ClientID,
			Title:     j.Title,
			Status:    j.Status,
			CreatedAt: j.CreatedAt.Format(time.RFC3339),
		}
		if c, ok := clientByID[j.ClientID]; ok {
			item.ClientName = c.Name
		}
		leadCount, err := s.leadRepo.CountByJob(companyID, j.ID)
		if err != nil {
			return nil, err
		}
		item.LeadCount = int(leadCount)
		items = append(items, item)
	}
	return items, nil
}

// CreateJob 创建职位
func (s *ClientService) CreateJob(companyID int64, req *dto.CreateJobRequest) (*model.Job, error) {
	if _, err := s.clientRepo.GetByID(companyID, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	job := &model.Job{
		CompanyID:   companyID,
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.JobStatusOpen,
	}
	if err := s.clientRepo.CreateJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateJob 更新职位
func (s *ClientService) UpdateJob(companyID, jobID int64, req *dto.UpdateJobRequest) error {
	if _, err := s.clientRepo.GetJobByID(companyID, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if len(fields) == 0 {
		return nil
	}
	return s.clientRepo.UpdateJobFields(companyID, jobID, fields)
}

// DeleteJob 删除职位。名下还有线索时拒绝
func (s *ClientService) DeleteJob(companyID, jobID int64) error {
	if _, err := s.clientRepo.GetJobByID(companyID, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobNotFound
		}
		return err
	}

	leadCount, err := s.leadRepo.CountByJob(companyID, jobID)
	if err != nil {
		return err
	}
	if leadCount > 0 {
		return ErrJobHasLeads
	}

	return s.clientRepo.DeleteJob(companyID, jobID)
}
