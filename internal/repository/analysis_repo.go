package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) CreateRecording(recording *model.Recording) error {
	return r.db.Create(recording).Error
}

func (r *AnalysisRepository) GetRecordingByID(companyID, id int64) (*model.Recording, error) {
	var recording model.Recording
	err := r.db.Where("company_id = ? AND id = ?", companyID, id).First(&recording).Error
	if err != nil {
		return nil, err
	}
	return &recording, nil
}

// GetRecordingByCallID 通话对应的录音，可能由触发器写入也可能由客户端兜底创建
func (r *AnalysisRepository) GetRecordingByCallID(companyID, callID int64) (*model.Recording, error) {
	var recording model.Recording
	err := r.db.Where("company_id = ? AND call_id = ?", companyID, callID).
		Order("id").First(&recording).Error
	if err != nil {
		return nil, err
	}
	return &recording, nil
}

func (r *AnalysisRepository) UpdateRecordingFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Recording{}).Where("id = ?", id).Updates(fields).Error
}

func (r *AnalysisRepository) MarkRecordingDispatched(id int64) error {
	now := time.Now()
	return r.db.Model(&model.Recording{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        model.AnalysisStatusProcessing,
		"dispatched_at": &now,
	}).Error
}

func (r *AnalysisRepository) Create(analysis *model.Analysis) error {
	return r.db.Create(analysis).Error
}

func (r *AnalysisRepository) GetByID(companyID, id int64) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.Where("company_id = ? AND id = ?", companyID, id).First(&analysis).Error
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetAnyByID 不带租户条件取分析。外部服务回调只带 analysis_id，
// 公司要靠这条记录反查
func (r *AnalysisRepository) GetAnyByID(id int64) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.Where("id = ?", id).First(&analysis).Error
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetByCallID 通话已有的分析。发起分析前用它查重，
// 查重和插入不在一个事务里，并发下可能各自都没查到。
func (r *AnalysisRepository) GetByCallID(companyID, callID int64) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.Where("company_id = ? AND call_id = ?", companyID, callID).
		Order("id").First(&analysis).Error
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *AnalysisRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Analysis{}).Where("id = ?", id).Updates(fields).Error
}

func (r *AnalysisRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&model.Analysis{}).Where("id = ?", id).Update("status", status).Error
}

// ListByCallIDs 批量取通话的分析，一个通话多条时取 id 最小的那条，
// 与 GetByCallID 的取法保持一致
func (r *AnalysisRepository) ListByCallIDs(companyID int64, callIDs []int64) (map[int64]*model.Analysis, error) {
	if len(callIDs) == 0 {
		return map[int64]*model.Analysis{}, nil
	}
	var analyses []*model.Analysis
	err := r.db.Where("company_id = ? AND call_id IN ?", companyID, callIDs).
		Order("id").Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	byCall := make(map[int64]*model.Analysis, len(analyses))
	for _, a := range analyses {
		if _, ok := byCall[a.CallID]; !ok {
			byCall[a.CallID] = a
		}
	}
	return byCall, nil
}

// ListStale 长时间停在 processing 的分析，清理任务用
func (r *AnalysisRepository) ListStale(olderThan time.Time, limit int) ([]*model.Analysis, error) {
	var analyses []*model.Analysis
	err := r.db.Where("status = ? AND updated_at < ?", model.AnalysisStatusProcessing, olderThan).
		Order("updated_at").Limit(limit).Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}
