package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(lead *model.Lead) error {
	return r.db.Create(lead).Error
}

func (r *LeadRepository) CreateBatch(leads []*model.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	return r.db.Create(&leads).Error
}

func (r *LeadRepository) GetByID(companyID, id int64) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.Where("company_id = ? AND id = ?", companyID, id).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) Update(lead *model.Lead) error {
	return r.db.Save(lead).Error
}

func (r *LeadRepository) UpdateFields(companyID, id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Lead{}).
		Where("company_id = ? AND id = ?", companyID, id).Updates(fields).Error
}

func (r *LeadRepository) Delete(companyID, id int64) error {
	return r.db.Where("company_id = ? AND id = ?", companyID, id).
		Delete(&model.Lead{}).Error
}

// ListAll 拉取租户全部线索，翻页绕过单次查询上限。
// 筛选、排序、分页都在内存管线里做，这里只负责取全量。
func (r *LeadRepository) ListAll(companyID int64) ([]*model.Lead, error) {
	var all []*model.Lead
	for offset := 0; ; offset += listPageSize {
		var page []*model.Lead
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

func (r *LeadRepository) CountByGroup(companyID, groupID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Lead{}).
		Where("company_id = ? AND group_id = ?", companyID, groupID).
		Count(&count).Error
	return count, err
}

func (r *LeadRepository) CountByClient(companyID, clientID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Lead{}).
		Where("company_id = ? AND client_id = ?", companyID, clientID).
		Count(&count).Error
	return count, err
}

func (r *LeadRepository) CountByJob(companyID, jobID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Lead{}).
		Where("company_id = ? AND job_id = ?", companyID, jobID).
		Count(&count).Error
	return count, err
}

func (r *LeadRepository) CreateGroup(group *model.LeadGroup) error {
	return r.db.Create(group).Error
}

func (r *LeadRepository) GetGroupByID(companyID, id int64) (*model.LeadGroup, error) {
	var group model.LeadGroup
	err := r.db.Where("company_id = ? AND id = ?", companyID, id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *LeadRepository) UpdateGroupFields(companyID, id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.LeadGroup{}).
		Where("company_id = ? AND id = ?", companyID, id).Updates(fields).Error
}

func (r *LeadRepository) ListGroups(companyID int64) ([]*model.LeadGroup, error) {
	var groups []*model.LeadGroup
	err := r.db.Where("company_id = ?", companyID).Order("id").Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// DeleteGroupCascade 删除线索组并级联删除组内线索，
// 返回被删除的线索数。整体在一个事务里完成。
func (r *LeadRepository) DeleteGroupCascade(companyID, groupID int64) (int64, error) {
	var removed int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("company_id = ? AND group_id = ?", companyID, groupID).
			Delete(&model.Lead{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return tx.Where("company_id = ? AND id = ?", companyID, groupID).
			Delete(&model.LeadGroup{}).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
