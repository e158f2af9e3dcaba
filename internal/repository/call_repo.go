package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
)

type CallRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) Create(call *model.Call) error {
	return r.db.Create(call).Error
}

func (r *CallRepository) GetByID(companyID, id int64) (*model.Call, error) {
	var call model.Call
	err := r.db.Where("company_id = ? AND id = ?", companyID, id).First(&call).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *CallRepository) UpdateFields(companyID, id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Call{}).
		Where("company_id = ? AND id = ?", companyID, id).Updates(fields).Error
}

func (r *CallRepository) Delete(companyID, id int64) error {
	return r.db.Where("company_id = ? AND id = ?", companyID, id).
		Delete(&model.Call{}).Error
}

// ListAll 拉取租户全部通话，翻页绕过单次查询上限。
// 筛选和排序在内存管线里做。
func (r *CallRepository) ListAll(companyID int64) ([]*model.Call, error) {
	var all []*model.Call
	for offset := 0; ; offset += listPageSize {
		var page []*model.Call
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

func (r *CallRepository) ListByLead(companyID, leadID int64) ([]*model.Call, error) {
	var calls []*model.Call
	err := r.db.Where("company_id = ? AND lead_id = ?", companyID, leadID).
		Order("call_date DESC").Find(&calls).Error
	if err != nil {
		return nil, err
	}
	return calls, nil
}

func (r *CallRepository) CountByLead(companyID int64, leadIDs []int64) (map[int64]int, error) {
	if len(leadIDs) == 0 {
		return map[int64]int{}, nil
	}
	type row struct {
		LeadID int64
		Count  int
	}
	var rows []row
	err := r.db.Model(&model.Call{}).
		Select("lead_id, COUNT(*) AS count").
		Where("company_id = ? AND lead_id IN ?", companyID, leadIDs).
		Group("lead_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.LeadID] = r.Count
	}
	return counts, nil
}
