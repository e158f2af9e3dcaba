package service

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

var ErrCompanyNotFound = errors.New("公司不存在")

type CompanyService struct {
	companyRepo *repository.CompanyRepository
	teamRepo    *repository.TeamRepository
}

func NewCompanyService(companyRepo *repository.CompanyRepository, teamRepo *repository.TeamRepository) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		teamRepo:    teamRepo,
	}
}

// GetCompany 公司详情（含配置和外呼号码）
func (s *CompanyService) GetCompany(companyID int64) (*dto.CompanyDetail, error) {
	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	detail := &dto.CompanyDetail{
		ID:        company.ID,
		Name:      company.Name,
		Industry:  company.Industry,
		Address:   company.Address,
		Website:   company.Website,
		CreatedAt: company.CreatedAt.Format(time.RFC3339),
	}

	if settings, err := s.companyRepo.GetSettings(companyID); err == nil {
		detail.Settings = &dto.CompanySettings{
			Timezone:        settings.Timezone,
			SessionTimeout:  settings.SessionTimeout,
			AnalysisEnabled: settings.AnalysisEnabled,
		}
	}

	numbers, err := s.companyRepo.ListPhoneNumbers(companyID)
	if err != nil {
		return nil, err
	}
	for _, n := range numbers {
		detail.PhoneNumbers = append(detail.PhoneNumbers, dto.PhoneNumber{
			ID:     n.ID,
			Number: n.Number,
			Label:  n.Label,
			Active: n.Active,
		})
	}

	return detail, nil
}

// UpdateCompanyInfo 更新公司信息，只动请求里带的字段
func (s *CompanyService) UpdateCompanyInfo(companyID int64, req *dto.UpdateCompanyInfoRequest) error {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Industry != nil {
		fields["industry"] = *req.Industry
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Website != nil {
		fields["website"] = *req.Website
	}
	if len(fields) == 0 {
		return nil
	}
	return s.companyRepo.UpdateFields(companyID, fields)
}

// UpdateSettings 更新公司配置
func (s *CompanyService) UpdateSettings(companyID int64, req *dto.UpdateCompanySettingsRequest) error {
	// 保证配置行存在
	if _, err := s.companyRepo.GetSettings(companyID); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if req.Timezone != nil {
		fields["timezone"] = *req.Timezone
	}
	if req.SessionTimeout != nil {
		fields["session_timeout"] = *req.SessionTimeout
	}
	if req.AnalysisEnabled != nil {
		fields["analysis_enabled"] = *req.AnalysisEnabled
	}
	if len(fields) == 0 {
		return nil
	}
	return s.companyRepo.UpdateSettings(companyID, fields)
}

// UpdateAdminProfile 更新管理员资料
func (s *CompanyService) UpdateAdminProfile(adminUserID int64, req *dto.UpdateAdminProfileRequest) error {
	admin, err := s.teamRepo.GetAdminByUserID(adminUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != admin.Email {
		taken, err := s.teamRepo.EmailTakenInRole(admin.CompanyID, model.RoleAdmin, *req.Email, admin.ID)
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
	return s.teamRepo.UpdateAdminFields(admin.ID, fields)
}

// UpdateAdminPassword 修改管理员密码，先验原密码
func (s *CompanyService) UpdateAdminPassword(adminUserID int64, req *dto.UpdatePasswordRequest) error {
	admin, err := s.teamRepo.GetAdminByUserID(adminUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if admin.PasswordHash == nil {
		return ErrOldPasswordWrong
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*admin.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrOldPasswordWrong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.teamRepo.UpdateAdminFields(admin.ID, map[string]interface{}{
		"password_hash": string(hashed),
	})
}

// AddPhoneNumber 添加外呼号码
func (s *CompanyService) AddPhoneNumber(companyID int64, req *dto.AddPhoneNumberRequest) (*dto.PhoneNumber, error) {
	number := &model.PhoneNumber{
		CompanyID: companyID,
		Number:    req.Number,
		Label:     req.Label,
		Active:    true,
	}
	if err := s.companyRepo.CreatePhoneNumber(number); err != nil {
		return nil, err
	}
	return &dto.PhoneNumber{
		ID:     number.ID,
		Number: number.Number,
		Label:  number.Label,
		Active: number.Active,
	}, nil
}

// RemovePhoneNumber 删除外呼号码
func (s *CompanyService) RemovePhoneNumber(companyID, id int64) error {
	return s.companyRepo.DeletePhoneNumber(companyID, id)
}
