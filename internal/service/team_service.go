package service

import (
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pipeline"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/email"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

var (
	ErrMemberNotFound     = errors.New("成员不存在")
	ErrManagerHasEmployee = errors.New("经理名下还有员工，不能删除")
)

type TeamService struct {
	teamRepo    *repository.TeamRepository
	companyRepo *repository.CompanyRepository
	email       *email.Service
	cfg         *config.Config
}

func NewTeamService(teamRepo *repository.TeamRepository, companyRepo *repository.CompanyRepository, emailSvc *email.Service, cfg *config.Config) *TeamService {
	return &TeamService{
		teamRepo:    teamRepo,
		companyRepo: companyRepo,
		email:       emailSvc,
		cfg:         cfg,
	}
}

// GetTeam 团队总览：全部经理 + 全部员工，带挂靠关系
func (s *TeamService) GetTeam(companyID int64) (*dto.TeamResponse, error) {
	managers, err := s.teamRepo.ListManagers(companyID)
	if err != nil {
		return nil, err
	}
	employees, err := s.teamRepo.ListEmployees(companyID)
	if err != nil {
		return nil, err
	}

	roster := pipeline.BuildRoster(managers, employees)

	resp := &dto.TeamResponse{
		Managers:  make([]dto.ManagerItem, 0, len(managers)),
		Employees: make([]dto.EmployeeItem, 0, len(employees)),
	}

	// 统计每个经理名下的员工数
	counts := make(map[int64]int, len(managers))
	for _, e := range employees {
		if m := roster.ManagerOf(e); m != nil {
			counts[m.ID]++
		}
	}

	for _, m := range managers {
		resp.Managers = append(resp.Managers, dto.ManagerItem{
			ID:            m.ID,
			UserID:        m.UserID,
			Name:          m.Name,
			Email:         m.Email,
			Phone:         m.Phone,
			EmployeeCount: counts[m.ID],
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		})
	}

	for _, e := range employees {
		item := dto.EmployeeItem{
			ID:        e.ID,
			UserID:    e.UserID,
			Name:      e.Name,
			Email:     e.Email,
			Phone:     e.Phone,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
		if m := roster.ManagerOf(e); m != nil {
			item.ManagerName = m.Name
		}
		resp.Employees = append(resp.Employees, item)
	}

	return resp, nil
}

// CreateManager 创建经理。同角色内邮箱不能重复
func (s *TeamService) CreateManager(companyID int64, req *dto.CreateManagerRequest) (*dto.ManagerItem, error) {
	taken, err := s.teamRepo.EmailTakenInRole(companyID, model.RoleManager, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userID, err := s.nextUserID()
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashed)
	manager := &model.Manager{
		CompanyID:    companyID,
		UserID:       userID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: &passwordStr,
		Status:       "active",
	}
	if err := s.teamRepo.CreateManager(manager); err != nil {
		return nil, err
	}

	s.sendInvite(companyID, req.Email, req.Name)

	return &dto.ManagerItem{
		ID:        manager.ID,
		UserID:    manager.UserID,
		Name:      manager.Name,
		Email:     manager.Email,
		Phone:     manager.Phone,
		CreatedAt: manager.CreatedAt.Format(time.RFC3339),
	}, nil
}

// CreateEmployee 创建员工
func (s *TeamService) CreateEmployee(companyID int64, req *dto.CreateEmployeeRequest) (*dto.EmployeeItem, error) {
	taken, err := s.teamRepo.EmailTakenInRole(companyID, model.RoleEmployee, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	var managerName string
	if req.ManagerID != nil {
		manager, err := s.teamRepo.GetManagerByID(companyID, *req.ManagerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, err
		}
		managerName = manager.Name
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userID, err := s.nextUserID()
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashed)
	employee := &model.Employee{
		CompanyID:    companyID,
		UserID:       userID,
		ManagerID:    req.ManagerID, // 新数据统一存经理行 ID
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: &passwordStr,
		Status:       "active",
	}
	if err := s.teamRepo.CreateEmployee(employee); err != nil {
		return nil, err
	}

	s.sendInvite(companyID, req.Email, req.Name)

	return &dto.EmployeeItem{
		ID:          employee.ID,
		UserID:      employee.UserID,
		Name:        employee.Name,
		Email:       employee.Email,
		Phone:       employee.Phone,
		ManagerName: managerName,
		CreatedAt:   employee.CreatedAt.Format(time.RFC3339),
	}, nil
}

// UpdateManager 更新经理资料
func (s *TeamService) UpdateManager(companyID, managerID int64, req *dto.UpdateMemberRequest) error {
	manager, err := s.teamRepo.GetManagerByID(companyID, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != manager.Email {
		taken, err := s.teamRepo.EmailTakenInRole(companyID, model.RoleManager, *req.Email, manager.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailExists
		}
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if len(fields) == 0 {
		return nil
	}
	return s.teamRepo.UpdateManagerFields(companyID, managerID, fields)
}

// UpdateEmployee 更新员工资料，可改挂靠经理
func (s *TeamService) UpdateEmployee(companyID, employeeID int64, req *dto.UpdateMemberRequest) error {
	employee, err := s.teamRepo.GetEmployeeByID(companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != employee.Email {
		taken, err := s.teamRepo.EmailTakenInRole(companyID, model.RoleEmployee, *req.Email, employee.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailExists
		}
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.ManagerID != nil {
		if _, err := s.teamRepo.GetManagerByID(companyID, *req.ManagerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		fields["manager_id"] = *req.ManagerID
	}
	if len(fields) == 0 {
		return nil
	}
	return s.teamRepo.UpdateEmployeeFields(companyID, employeeID, fields)
}

// DeleteManager 删除经理。名下还有在职员工时拒绝
func (s *TeamService) DeleteManager(companyID, managerID int64) error {
	manager, err := s.teamRepo.GetManagerByID(companyID, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	count, err := s.teamRepo.CountEmployeesOfManager(companyID, manager)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrManagerHasEmployee
	}

	return s.teamRepo.DeleteManager(companyID, managerID)
}

// DeleteEmployee 删除员工
func (s *TeamService) DeleteEmployee(companyID, employeeID int64) error {
	if _, err := s.teamRepo.GetEmployeeByID(companyID, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	return s.teamRepo.DeleteEmployee(companyID, employeeID)
}

func (s *TeamService) nextUserID() (int64, error) {
	max, err := s.teamRepo.MaxUserID()
	if err != nil {
		return 0, err
	}
	if max < 1000 {
		max = 1000
	}
	return max + 1, nil
}

// sendInvite 开通邮件发送失败不阻塞建号，只记日志
func (s *TeamService) sendInvite(companyID int64, to, name string) {
	if s.email == nil {
		return
	}
	companyName := ""
	if company, err := s.companyRepo.GetByID(companyID); err == nil {
		companyName = company.Name
	}
	go func() {
		if err := s.email.SendInvite(to, name, companyName, s.cfg.Server.Host); err != nil {
			log.Printf("send invite email to %s failed: %v", to, err)
		}
	}()
}
