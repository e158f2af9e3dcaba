package service

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pipeline"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/oss"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

var (
	ErrCallNotFound       = errors.New("通话记录不存在")
	ErrStorageUnavailable = errors.New("未配置对象存储")
)

type CallService struct {
	callRepo     *repository.CallRepository
	leadRepo     *repository.LeadRepository
	teamRepo     *repository.TeamRepository
	analysisRepo *repository.AnalysisRepository
	ossCli       *oss.Client
}

func NewCallService(callRepo *repository.CallRepository, leadRepo *repository.LeadRepository, teamRepo *repository.TeamRepository, analysisRepo *repository.AnalysisRepository, ossCli *oss.Client) *CallService {
	return &CallService{
		callRepo:     callRepo,
		leadRepo:     leadRepo,
		teamRepo:     teamRepo,
		analysisRepo: analysisRepo,
		ossCli:       ossCli,
	}
}

// ListCalls 通话列表：全量拉取、内存筛选排序、固定页大小分页
func (s *CallService) ListCalls(companyID int64, q *dto.CallListQuery) (*dto.CallListResponse, error) {
	managers, err := s.teamRepo.ListManagers(companyID)
	if err != nil {
		return nil, err
	}
	employees, err := s.teamRepo.ListEmployees(companyID)
	if err != nil {
		return nil, err
	}
	roster := pipeline.BuildRoster(managers, employees)

	calls, err := s.callRepo.ListAll(companyID)
	if err != nil {
		return nil, err
	}
	leads, err := s.leadRepo.ListAll(companyID)
	if err != nil {
		return nil, err
	}
	leadByID := make(map[int64]*model.Lead, len(leads))
	for _, l := range leads {
		leadByID[l.ID] = l
	}

	callIDs := make([]int64, 0, len(calls))
	for _, c := range calls {
		callIDs = append(callIDs, c.ID)
	}
	analysisByCall, err := s.analysisRepo.ListByCallIDs(companyID, callIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]pipeline.CallRow, 0, len(calls))
	for _, c := range calls {
		row := pipeline.CallRow{
			Call: c,
			Lead: leadByID[c.LeadID],
		}
		// 通话归属：先按员工 user_id 解析，兼容线索归属
		employeeID := c.EmployeeID
		row.Owner = roster.ResolveOwner(nil, &employeeID)
		if row.Owner.Unassigned() && row.Lead != nil {
			row.Owner = roster.ResolveOwner(row.Lead.AssignedTo, row.Lead.UserID)
		}
		if a, ok := analysisByCall[c.ID]; ok {
			row.AnalysisStatus = a.Status
		}
		rows = append(rows, row)
	}

	filters := pipeline.Filters{
		Search:         q.Search,
		EmployeeID:     q.EmployeeID,
		ManagerID:      q.ManagerID,
		Outcome:        q.Outcome,
		AnalysisStatus: q.AnalysisStatus,
	}
	if q.DatePreset != "" {
		filters.Date = pipeline.PresetRange(q.DatePreset, time.Now())
	} else if q.DateFrom != "" || q.DateTo != "" {
		filters.Date = pipeline.DateRange{From: q.DateFrom, To: q.DateTo}
	}

	filtered := pipeline.FilterCalls(rows, filters, roster)
	pipeline.SortCalls(filtered, q.SortBy, q.Desc)

	total := len(filtered)
	page := q.Page
	if page < 1 {
		page = 1
	}
	paged := pipeline.Paginate(filtered, page)

	items := make([]dto.CallItem, 0, len(paged))
	for _, r := range paged {
		item := dto.CallItem{
			ID:              r.Call.ID,
			LeadID:          r.Call.LeadID,
			AgentName:       r.Owner.Name(),
			Outcome:         model.NormalizeOutcome(r.Call.Outcome),
			CallDate:        r.Call.CallDate,
			DurationSeconds: r.Call.DurationSeconds,
			RecordingURL:    r.Call.RecordingURL,
			Notes:           r.Call.Notes,
			AnalysisStatus:  r.AnalysisStatus,
		}
		if r.Lead != nil {
			item.LeadName = r.Lead.Name
		}
		if a, ok := analysisByCall[r.Call.ID]; ok {
			item.AnalysisID = a.ID
		}
		items = append(items, item)
	}

	return &dto.CallListResponse{
		Calls:      items,
		Total:      total,
		Page:       page,
		TotalPages: pipeline.TotalPages(total),
	}, nil
}

// CreateCall 记录通话
func (s *CallService) CreateCall(companyID, employeeUserID int64, req *dto.CreateCallRequest) (*model.Call, error) {
	if _, err := s.leadRepo.GetByID(companyID, req.LeadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	callDate := req.CallDate
	if callDate == "" {
		callDate = time.Now().UTC().Format("2006-01-02T15:04:05")
	}

	call := &model.Call{
		CompanyID:       companyID,
		LeadID:          req.LeadID,
		EmployeeID:      employeeUserID,
		Outcome:         req.Outcome, // 写入保留原样，读取时再归一
		CallDate:        callDate,
		DurationSeconds: req.DurationSeconds,
		RecordingURL:    req.RecordingURL,
		Notes:           req.Notes,
	}
	if err := s.callRepo.Create(call); err != nil {
		return nil, err
	}

	// 带录音的通话兜底建录音行，触发器缺失时分析链路也能走通
	if call.RecordingURL != "" {
		if _, err := s.analysisRepo.GetRecordingByCallID(companyID, call.ID); errors.Is(err, gorm.ErrRecordNotFound) {
			recording := &model.Recording{
				CompanyID: companyID,
				CallID:    call.ID,
				URL:       call.RecordingURL,
				Status:    model.AnalysisStatusPending,
				Source:    "client",
			}
			if err := s.analysisRepo.CreateRecording(recording); err != nil {
				return nil, err
			}
		}
	}

	return call, nil
}

// UpdateCall 更新通话记录
func (s *CallService) UpdateCall(companyID, callID int64, req *dto.UpdateCallRequest) error {
	if _, err := s.callRepo.GetByID(companyID, callID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCallNotFound
		}
		return err
	}

	fields := map[string]interface{}{}
	if req.Outcome != nil {
		fields["outcome"] = *req.Outcome
	}
	if req.DurationSeconds != nil {
		fields["duration_seconds"] = *req.DurationSeconds
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if len(fields) == 0 {
		return nil
	}
	return s.callRepo.UpdateFields(companyID, callID, fields)
}

// DeleteCall 删除通话记录
func (s *CallService) DeleteCall(companyID, callID int64) error {
	call, err := s.callRepo.GetByID(companyID, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCallNotFound
		}
		return err
	}

	// 自家桶上的录音跟着删，删对象失败只记日志不挡删除
	if s.ossCli != nil && call.RecordingURL != "" && s.ossCli.Owns(call.RecordingURL) {
		if err := s.ossCli.Delete(s.ossCli.ExtractObjectKey(call.RecordingURL)); err != nil {
			log.Printf("delete recording object for call %d failed: %v", callID, err)
		}
	}

	return s.callRepo.Delete(companyID, callID)
}

// UploadRecording 客户端直传录音，存进 OSS 后回填通话和录音行
func (s *CallService) UploadRecording(companyID, callID int64, data []byte, ext string) (string, error) {
	if _, err := s.callRepo.GetByID(companyID, callID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCallNotFound
		}
		return "", err
	}
	if s.ossCli == nil {
		return "", ErrStorageUnavailable
	}

	url, err := s.ossCli.UploadRecording(companyID, callID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.callRepo.UpdateFields(companyID, callID, map[string]interface{}{
		"recording_url": url,
	}); err != nil {
		return "", err
	}

	recording, err := s.analysisRepo.GetRecordingByCallID(companyID, callID)
	switch {
	case err == nil:
		if err := s.analysisRepo.UpdateRecordingFields(recording.ID, map[string]interface{}{
			"url":    url,
			"source": "client",
		}); err != nil {
			return "", err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.analysisRepo.CreateRecording(&model.Recording{
			CompanyID: companyID,
			CallID:    callID,
			URL:       url,
			Status:    model.AnalysisStatusPending,
			Source:    "client",
		}); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	return url, nil
}

// RecordingPlaybackURL 录音播放地址。录音桶不公开读，
// 自家 OSS 上的对象换成签名地址，外部托管的原样返回。
func (s *CallService) RecordingPlaybackURL(companyID, callID int64) (string, error) {
	call, err := s.callRepo.GetByID(companyID, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCallNotFound
		}
		return "", err
	}

	url := call.RecordingURL
	if url == "" {
		recording, err := s.analysisRepo.GetRecordingByCallID(companyID, callID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrNoRecording
			}
			return "", err
		}
		url = recording.URL
	}
	if url == "" {
		return "", ErrNoRecording
	}

	if s.ossCli != nil && s.ossCli.Owns(url) {
		signed, err := s.ossCli.GetSignedURL(s.ossCli.ExtractObjectKey(url))
		if err != nil {
			return "", err
		}
		return signed, nil
	}
	return url, nil
}

// ListLeadCalls 某条线索的通话历史
func (s *CallService) ListLeadCalls(companyID, leadID int64) ([]dto.CallItem, error) {
	if _, err := s.leadRepo.GetByID(companyID, leadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	calls, err := s.callRepo.ListByLead(companyID, leadID)
	if err != nil {
		return nil, err
	}

	callIDs := make([]int64, 0, len(calls))
	for _, c := range calls {
		callIDs = append(callIDs, c.ID)
	}
	analysisByCall, err := s.analysisRepo.ListByCallIDs(companyID, callIDs)
	if err != nil {
		return nil, err
	}

	managers, err := s.teamRepo.ListManagers(companyID)
	if err != nil {
		return nil, err
	}
	employees, err := s.teamRepo.ListEmployees(companyID)
	if err != nil {
		return nil, err
	}
	roster := pipeline.BuildRoster(managers, employees)

	items := make([]dto.CallItem, 0, len(calls))
	for _, c := range calls {
		employeeID := c.EmployeeID
		owner := roster.ResolveOwner(nil, &employeeID)
		item := dto.CallItem{
			ID:              c.ID,
			LeadID:          c.LeadID,
			AgentName:       owner.Name(),
			Outcome:         model.NormalizeOutcome(c.Outcome),
			CallDate:        c.CallDate,
			DurationSeconds: c.DurationSeconds,
			RecordingURL:    c.RecordingURL,
			Notes:           c.Notes,
		}
		if a, ok := analysisByCall[c.ID]; ok {
			item.AnalysisStatus = a.Status
			item.AnalysisID = a.ID
		}
		items = append(items, item)
	}
	return items, nil
}
