package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(client *model.Client) error {
	return r.db.Create(client).Error
}

func (r *ClientRepository) GetByID(companyID, id int64) (*model.Client, error) {
	var client model.Client
	err := r.db.Where("company_id = ? AND id = ?", companyID, id).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) UpdateFields(companyID, id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Client{}).
		Where("company_id = ? AND id = ?", companyID, id).Updates(fields).Error
}

func (r *ClientRepository) Delete(companyID, id int64) error {
	return r.db.Where("company_id = ? AND id = ?", companyID, id).
		Delete(&model.Client{}).Error
}

func (r *ClientRepository) ListAll(companyID int64) ([]*model.Client, error) {
	var all []*model.Client
	for offset := 0; ; offset += listPageSize {
		var page []*model.Client
		err := r.db.Where("company_id = ?", companyID).
			Order("id").Offset(offset).Limit(listPageSize).Find(&page).Error
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < listPageSize {
			return all, nil
		}
	}
}

func (r *ClientRepository) CreateJob(job *model.Job) error {
	return r.db.Create(job).Error
}

func (r *ClientRepository) GetJobByID(companyID, id int64) (*model.Job, error) {
	var job model.Job
	err := r.db.Where("company_id = ? AND id = ?", companyID, id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ClientRepository) UpdateJobFields(companyID, id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Job{}).
		Where("company_id = ? AND id = ?", companyID, id).Updates(fields).Error
}

func (r *ClientRepository) DeleteJob(companyID, id int64) error {
	return r.db.Where("company_id = ? AND id = ?", companyID, id).
		Delete(&model.Job{}).Error
}

func (r *ClientRepository) ListJobs(companyID int64) ([]*model.Job, error) {
	var jobs []*model.Job
	err := r.db.Where("company_id = ?", companyID).Order("id").Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *ClientRepository) CountOpenJobs(companyID, clientID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Job{}).
		Where("company_id = ? AND client_id = ? AND status = ?",
			companyID, clientID, model.JobStatusOpen).
		Count(&count).Error
	return count, err
}
