package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/pubsub"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/queue"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
	"github.com/qs3c/leadcrm_go_server/internal/testutil"
)

type analysisFixture struct {
	svc     *AnalysisService
	db      *gorm.DB
	rdb     *redis.Client
	queue   *queue.Queue
	company *model.Company
	repo    *repository.AnalysisRepository
}

func setupAnalysisService(t *testing.T) *analysisFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	analysisRepo := repository.NewAnalysisRepository(db)
	q := queue.NewQueue(rdb, "test_dispatch")
	svc := NewAnalysisService(
		analysisRepo,
		repository.NewCallRepository(db),
		repository.NewLeadRepository(db),
		repository.NewCompanyRepository(db),
		q,
		pubsub.NewPublisher(rdb),
	)

	return &analysisFixture{
		svc:     svc,
		db:      db,
		rdb:     rdb,
		queue:   q,
		company: testutil.TestCompany(t, db),
		repo:    analysisRepo,
	}
}

func (f *analysisFixture) answeredCall(t *testing.T) (*model.Call, *model.Recording) {
	t.Helper()
	lead := testutil.TestLead(t, f.db, f.company.ID)
	call := testutil.TestCall(t, f.db, f.company.ID, lead.ID, 3001)
	recording := testutil.TestRecording(t, f.db, f.company.ID, call.ID)
	return call, recording
}

func TestSubmitAnalysis(t *testing.T) {
	f := setupAnalysisService(t)
	call, recording := f.answeredCall(t)

	resp, err := f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisStatusProcessing, resp.Status)
	assert.Equal(t, recording.ID, resp.RecordingID)

	analysis, err := f.repo.GetByID(f.company.ID, resp.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisStatusProcessing, analysis.Status)
	assert.Equal(t, int64(3001), analysis.SubmittedBy)

	got, err := f.repo.GetRecordingByID(f.company.ID, recording.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisStatusProcessing, got.Status)
	assert.NotNil(t, got.DispatchedAt)

	n, err := f.queue.Length(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSubmitAnalysisNotAnswered(t *testing.T) {
	f := setupAnalysisService(t)
	lead := testutil.TestLead(t, f.db, f.company.ID)
	// 老客户端写的变体值也要被拦住
	call := testutil.TestCall(t, f.db, f.company.ID, lead.ID, 3001, testutil.WithOutcome("No Answer"))

	_, err := f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	assert.ErrorIs(t, err, ErrCallNotAnswered)
}

func TestSubmitAnalysisDuplicate(t *testing.T) {
	f := setupAnalysisService(t)
	call, _ := f.answeredCall(t)

	_, err := f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	assert.ErrorIs(t, err, ErrAnalysisExists)
}

func TestSubmitAnalysisDisabled(t *testing.T) {
	f := setupAnalysisService(t)
	call, _ := f.answeredCall(t)

	companyRepo := repository.NewCompanyRepository(f.db)
	_, err := companyRepo.GetSettings(f.company.ID)
	require.NoError(t, err)
	require.NoError(t, companyRepo.UpdateSettings(f.company.ID, map[string]interface{}{
		"analysis_enabled": false,
	}))

	_, err = f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	assert.ErrorIs(t, err, ErrAnalysisDisabled)
}

func TestSubmitAnalysisNoRecording(t *testing.T) {
	f := setupAnalysisService(t)
	lead := testutil.TestLead(t, f.db, f.company.ID)
	call := testutil.TestCall(t, f.db, f.company.ID, lead.ID, 3001)

	_, err := f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	assert.ErrorIs(t, err, ErrNoRecording)
}

func TestSubmitAnalysisRecordingFallback(t *testing.T) {
	f := setupAnalysisService(t)
	lead := testutil.TestLead(t, f.db, f.company.ID)
	call := testutil.TestCall(t, f.db, f.company.ID, lead.ID, 3001)

	// 没有录音行但请求带了地址时兜底创建
	resp, err := f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID:       call.ID,
		RecordingURL: "https://recordings.example.com/manual.mp3",
	})
	require.NoError(t, err)

	recording, err := f.repo.GetRecordingByID(f.company.ID, resp.RecordingID)
	require.NoError(t, err)
	assert.Equal(t, "https://recordings.example.com/manual.mp3", recording.URL)
	assert.Equal(t, "client", recording.Source)
}

func TestApplyResultCompleted(t *testing.T) {
	f := setupAnalysisService(t)
	call, _ := f.answeredCall(t)

	resp, err := f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	require.NoError(t, err)

	err = f.svc.ApplyResult(context.Background(), f.company.ID, &dto.AnalysisResultRequest{
		AnalysisID:         resp.AnalysisID,
		Status:             model.AnalysisStatusCompleted,
		SentimentScore:     80,
		EngagementScore:    70,
		ConfidenceScore:    90,
		ClosureProbability: 60,
		Summary:            "客户有意向，下周跟进",
		KeyPoints:          []string{"预算已批", "决策人在场"},
		Objections:         []string{"价格偏高"},
		NextSteps:          "周三发正式报价",
	})
	require.NoError(t, err)

	analysis, err := f.repo.GetByID(f.company.ID, resp.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisStatusCompleted, analysis.Status)
	assert.Equal(t, 80, analysis.SentimentScore)
	assert.Equal(t, model.StringArray{"预算已批", "决策人在场"}, analysis.KeyPoints)
	require.NotNil(t, analysis.CompletedAt)
}

func TestApplyResultFailed(t *testing.T) {
	f := setupAnalysisService(t)
	call, _ := f.answeredCall(t)

	resp, err := f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	require.NoError(t, err)

	err = f.svc.ApplyResult(context.Background(), f.company.ID, &dto.AnalysisResultRequest{
		AnalysisID:   resp.AnalysisID,
		Status:       model.AnalysisStatusFailed,
		ErrorMessage: "转写失败",
	})
	require.NoError(t, err)

	status, err := f.svc.Status(f.company.ID, resp.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisStatusFailed, status.Status)
	assert.Equal(t, "转写失败", status.ErrorMessage)
}

func TestApplyResultPushesToSubmitter(t *testing.T) {
	f := setupAnalysisService(t)
	call, _ := f.answeredCall(t)

	resp, err := f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	received := make(chan *pubsub.StatusMessage, 4)
	go func() {
		_ = pubsub.NewSubscriber(f.rdb).Subscribe(ctx, func(msg *pubsub.StatusMessage) {
			received <- msg
		})
	}()
	require.Eventually(t, func() bool {
		counts, err := f.rdb.PubSubNumSub(ctx, pubsub.ChannelAnalysisStatus).Result()
		return err == nil && counts[pubsub.ChannelAnalysisStatus] == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, f.svc.ApplyResult(context.Background(), f.company.ID, &dto.AnalysisResultRequest{
		AnalysisID: resp.AnalysisID,
		Status:     model.AnalysisStatusCompleted,
	}))

	// 回调完成的终态消息必须带上发起人，否则 websocket 层无处投递
	select {
	case msg := <-received:
		assert.Equal(t, int64(3001), msg.UserID)
		assert.Equal(t, f.company.ID, msg.CompanyID)
		assert.Equal(t, resp.AnalysisID, msg.AnalysisID)
		assert.Equal(t, model.AnalysisStatusCompleted, msg.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("没有收到状态推送")
	}
}

func TestRetryAnalysis(t *testing.T) {
	f := setupAnalysisService(t)
	call, _ := f.answeredCall(t)

	resp, err := f.svc.Submit(context.Background(), f.company.ID, 3001, &dto.SubmitAnalysisRequest{
		CallID: call.ID,
	})
	require.NoError(t, err)

	// 非失败状态不能重试
	_, err = f.svc.Retry(context.Background(), f.company.ID, 3001, resp.AnalysisID)
	assert.ErrorIs(t, err, ErrAnalysisNotFailed)

	require.NoError(t, f.svc.ApplyResult(context.Background(), f.company.ID, &dto.AnalysisResultRequest{
		AnalysisID:   resp.AnalysisID,
		Status:       model.AnalysisStatusFailed,
		ErrorMessage: "转写失败",
	}))

	retried, err := f.svc.Retry(context.Background(), f.company.ID, 3001, resp.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisStatusProcessing, retried.Status)

	n, err := f.queue.Length(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
