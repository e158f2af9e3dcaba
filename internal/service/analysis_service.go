package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/pubsub"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/queue"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

var (
	ErrAnalysisNotFound  = errors.New("分析不存在")
	ErrAnalysisExists    = errors.New("该通话已有分析")
	ErrAnalysisDisabled  = errors.New("当前公司未开启通话分析")
	ErrCallNotAnswered   = errors.New("未接通的通话不能发起分析")
	ErrNoRecording       = errors.New("通话没有录音，不能发起分析")
	ErrAnalysisNotFailed = errors.New("只有失败的分析可以重试")
)

type AnalysisService struct {
	analysisRepo *repository.AnalysisRepository
	callRepo     *repository.CallRepository
	leadRepo     *repository.LeadRepository
	companyRepo  *repository.CompanyRepository
	dispatchQ    *queue.Queue
	publisher    *pubsub.Publisher
}

func NewAnalysisService(analysisRepo *repository.AnalysisRepository, callRepo *repository.CallRepository, leadRepo *repository.LeadRepository, companyRepo *repository.CompanyRepository, dispatchQ *queue.Queue, publisher *pubsub.Publisher) *AnalysisService {
	return &AnalysisService{
		analysisRepo: analysisRepo,
		callRepo:     callRepo,
		leadRepo:     leadRepo,
		companyRepo:  companyRepo,
		dispatchQ:    dispatchQ,
		publisher:    publisher,
	}
}

// Submit 对通话发起分析。
//
// 查重和落库是两步，没有唯一索引兜底，并发双击可能各自都
// 通过查重，落下两条分析。后到的结果会覆盖先到的，业务上可
// 接受，保持现状。
func (s *AnalysisService) Submit(ctx context.Context, companyID, userID int64, req *dto.SubmitAnalysisRequest) (*dto.SubmitAnalysisResponse, error) {
	settings, err := s.companyRepo.GetSettings(companyID)
	if err != nil {
		return nil, err
	}
	if !settings.AnalysisEnabled {
		return nil, ErrAnalysisDisabled
	}

	call, err := s.callRepo.GetByID(companyID, req.CallID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallNotFound
		}
		return nil, err
	}

	if !outcomeAnswered(call.Outcome) {
		return nil, ErrCallNotAnswered
	}

	// 查重
	if _, err := s.analysisRepo.GetByCallID(companyID, call.ID); err == nil {
		return nil, ErrAnalysisExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	recording, err := s.resolveRecording(companyID, call, req.RecordingURL)
	if err != nil {
		return nil, err
	}

	analysis := &model.Analysis{
		CompanyID:   companyID,
		CallID:      call.ID,
		RecordingID: recording.ID,
		SubmittedBy: userID,
		Status:      model.AnalysisStatusPending,
	}
	if err := s.analysisRepo.Create(analysis); err != nil {
		return nil, err
	}

	// 先置 processing 再投递。投递失败由 worker 标记 failed，
	// 不让状态停在 pending 卡住前端轮询
	if err := s.analysisRepo.UpdateStatus(analysis.ID, model.AnalysisStatusProcessing); err != nil {
		return nil, err
	}
	if err := s.analysisRepo.MarkRecordingDispatched(recording.ID); err != nil {
		return nil, err
	}

	leadName := ""
	if lead, err := s.leadRepo.GetByID(companyID, call.LeadID); err == nil {
		leadName = lead.Name
	}

	msg := &queue.DispatchMessage{
		AnalysisID:   analysis.ID,
		RecordingID:  recording.ID,
		CallID:       call.ID,
		CompanyID:    companyID,
		UserID:       userID,
		RecordingURL: recording.URL,
		LeadName:     leadName,
	}
	if err := s.dispatchQ.Push(ctx, msg); err != nil {
		// 入队失败直接标失败，让用户看到可重试
		s.markFailed(ctx, analysis.ID, companyID, userID, call.ID, "任务入队失败")
		return nil, err
	}

	s.publishStatus(ctx, userID, companyID, analysis.ID, call.ID, model.AnalysisStatusProcessing, "")

	return &dto.SubmitAnalysisResponse{
		AnalysisID:  analysis.ID,
		RecordingID: recording.ID,
		Status:      model.AnalysisStatusProcessing,
	}, nil
}

// resolveRecording 找通话的录音行，没有就兜底创建
func (s *AnalysisService) resolveRecording(companyID int64, call *model.Call, overrideURL string) (*model.Recording, error) {
	recording, err := s.analysisRepo.GetRecordingByCallID(companyID, call.ID)
	if err == nil {
		return recording, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	url := overrideURL
	if url == "" {
		url = call.RecordingURL
	}
	if url == "" {
		return nil, ErrNoRecording
	}

	recording = &model.Recording{
		CompanyID: companyID,
		CallID:    call.ID,
		URL:       url,
		Status:    model.AnalysisStatusPending,
		Source:    "client",
	}
	if err := s.analysisRepo.CreateRecording(recording); err != nil {
		return nil, err
	}
	return recording, nil
}

// Get 分析详情
func (s *AnalysisService) Get(companyID, analysisID int64) (*dto.AnalysisDetail, error) {
	analysis, err := s.analysisRepo.GetByID(companyID, analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}

	detail := &dto.AnalysisDetail{
		ID:                 analysis.ID,
		CallID:             analysis.CallID,
		RecordingID:        analysis.RecordingID,
		Status:             analysis.Status,
		SentimentScore:     analysis.SentimentScore,
		EngagementScore:    analysis.EngagementScore,
		ConfidenceScore:    analysis.ConfidenceScore,
		ClosureProbability: analysis.ClosureProbability,
		Summary:            analysis.Summary,
		KeyPoints:          analysis.KeyPoints,
		Objections:         analysis.Objections,
		NextSteps:          analysis.NextSteps,
		ErrorMessage:       analysis.ErrorMessage,
		CreatedAt:          analysis.CreatedAt.Format(time.RFC3339),
	}
	if analysis.CompletedAt != nil {
		detail.CompletedAt = analysis.CompletedAt.Format(time.RFC3339)
	}
	return detail, nil
}

// Status 轮询用：只回状态和错误
func (s *AnalysisService) Status(companyID, analysisID int64) (*dto.AnalysisStatusResponse, error) {
	analysis, err := s.analysisRepo.GetByID(companyID, analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return &dto.AnalysisStatusResponse{
		AnalysisID:   analysis.ID,
		Status:       analysis.Status,
		ErrorMessage: analysis.ErrorMessage,
	}, nil
}

// ApplyResult 外部服务回调，写回分析结果
func (s *AnalysisService) ApplyResult(ctx context.Context, companyID int64, req *dto.AnalysisResultRequest) error {
	analysis, err := s.analysisRepo.GetByID(companyID, req.AnalysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnalysisNotFound
		}
		return err
	}

	fields := map[string]interface{}{
		"status":        req.Status,
		"error_message": req.ErrorMessage,
	}
	if req.Status == model.AnalysisStatusCompleted {
		now := time.Now()
		fields["sentiment_score"] = req.SentimentScore
		fields["engagement_score"] = req.EngagementScore
		fields["confidence_score"] = req.ConfidenceScore
		fields["closure_probability"] = req.ClosureProbability
		fields["summary"] = req.Summary
		fields["key_points"] = model.StringArray(req.KeyPoints)
		fields["objections"] = model.StringArray(req.Objections)
		fields["next_steps"] = req.NextSteps
		fields["completed_at"] = &now
	}
	if err := s.analysisRepo.UpdateFields(analysis.ID, fields); err != nil {
		return err
	}
	if err := s.analysisRepo.UpdateRecordingFields(analysis.RecordingID, map[string]interface{}{
		"status":        req.Status,
		"error_message": req.ErrorMessage,
	}); err != nil {
		return err
	}

	// 回调体里没有发起人，推送对象从分析行上取
	s.publishStatus(ctx, analysis.SubmittedBy, companyID, analysis.ID, analysis.CallID, req.Status, req.ErrorMessage)
	return nil
}

// HandleCallback 外部回调入口。回调体里没有租户信息，
// 按 analysis_id 反查公司后走 ApplyResult
func (s *AnalysisService) HandleCallback(ctx context.Context, req *dto.AnalysisResultRequest) error {
	analysis, err := s.analysisRepo.GetAnyByID(req.AnalysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnalysisNotFound
		}
		return err
	}
	return s.ApplyResult(ctx, analysis.CompanyID, req)
}

// Retry 重试失败的分析：状态拨回 processing，重新入队
func (s *AnalysisService) Retry(ctx context.Context, companyID, userID, analysisID int64) (*dto.SubmitAnalysisResponse, error) {
	analysis, err := s.analysisRepo.GetByID(companyID, analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	if analysis.Status != model.AnalysisStatusFailed {
		return nil, ErrAnalysisNotFailed
	}

	recording, err := s.analysisRepo.GetRecordingByID(companyID, analysis.RecordingID)
	if err != nil {
		return nil, err
	}

	if err := s.analysisRepo.UpdateFields(analysis.ID, map[string]interface{}{
		"status":        model.AnalysisStatusProcessing,
		"error_message": "",
		"submitted_by":  userID,
	}); err != nil {
		return nil, err
	}
	if err := s.analysisRepo.MarkRecordingDispatched(recording.ID); err != nil {
		return nil, err
	}

	leadName := ""
	if call, err := s.callRepo.GetByID(companyID, analysis.CallID); err == nil {
		if lead, err := s.leadRepo.GetByID(companyID, call.LeadID); err == nil {
			leadName = lead.Name
		}
	}

	msg := &queue.DispatchMessage{
		AnalysisID:   analysis.ID,
		RecordingID:  recording.ID,
		CallID:       analysis.CallID,
		CompanyID:    companyID,
		UserID:       userID,
		RecordingURL: recording.URL,
		LeadName:     leadName,
	}
	if err := s.dispatchQ.Push(ctx, msg); err != nil {
		s.markFailed(ctx, analysis.ID, companyID, userID, analysis.CallID, "任务入队失败")
		return nil, err
	}

	s.publishStatus(ctx, userID, companyID, analysis.ID, analysis.CallID, model.AnalysisStatusProcessing, "")

	return &dto.SubmitAnalysisResponse{
		AnalysisID:  analysis.ID,
		RecordingID: recording.ID,
		Status:      model.AnalysisStatusProcessing,
	}, nil
}

func (s *AnalysisService) markFailed(ctx context.Context, analysisID, companyID, userID, callID int64, reason string) {
	if err := s.analysisRepo.UpdateFields(analysisID, map[string]interface{}{
		"status":        model.AnalysisStatusFailed,
		"error_message": reason,
	}); err != nil {
		log.Printf("mark analysis %d failed error: %v", analysisID, err)
	}
	s.publishStatus(ctx, userID, companyID, analysisID, callID, model.AnalysisStatusFailed, reason)
}

func (s *AnalysisService) publishStatus(ctx context.Context, userID, companyID, analysisID, callID int64, status, errMsg string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishStatus(ctx, &pubsub.StatusMessage{
		UserID:     userID,
		CompanyID:  companyID,
		AnalysisID: analysisID,
		CallID:     callID,
		Status:     status,
		Error:      errMsg,
	})
	if err != nil {
		log.Printf("publish analysis status error: %v", err)
	}
}

func outcomeAnswered(outcome string) bool {
	normalized := model.NormalizeOutcome(outcome)
	for _, o := range model.AnsweredOutcomes {
		if normalized == o {
			return true
		}
	}
	return false
}
