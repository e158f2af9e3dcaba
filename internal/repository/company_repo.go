package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(company *model.Company) error {
	return r.db.Create(company).Error
}

func (r *CompanyRepository) GetByID(id int64) (*model.Company, error) {
	var company model.Company
	err := r.db.Where("id = ?", id).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) Update(company *model.Company) error {
	return r.db.Save(company).Error
}

func (r *CompanyRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Company{}).Where("id = ?", id).Updates(fields).Error
}

// GetSettings 读取公司配置，不存在时落一条默认配置再返回
func (r *CompanyRepository) GetSettings(companyID int64) (*model.CompanySettings, error) {
	var settings model.CompanySettings
	err := r.db.Where("company_id = ?", companyID).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = model.CompanySettings{
			CompanyID:       companyID,
			Timezone:        "UTC",
			SessionTimeout:  30,
			AnalysisEnabled: true,
		}
		if err := r.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *CompanyRepository) UpdateSettings(companyID int64, fields map[string]interface{}) error {
	return r.db.Model(&model.CompanySettings{}).
		Where("company_id = ?", companyID).Updates(fields).Error
}

func (r *CompanyRepository) ListPhoneNumbers(companyID int64) ([]*model.PhoneNumber, error) {
	var numbers []*model.PhoneNumber
	err := r.db.Where("company_id = ?", companyID).Order("id").Find(&numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *CompanyRepository) CreatePhoneNumber(number *model.PhoneNumber) error {
	return r.db.Create(number).Error
}

func (r *CompanyRepository) DeletePhoneNumber(companyID, id int64) error {
	return r.db.Where("company_id = ? AND id = ?", companyID, id).
		Delete(&model.PhoneNumber{}).Error
}
