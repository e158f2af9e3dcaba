package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
	"github.com/qs3c/leadcrm_go_server/internal/testutil"
)

func setupCallService(t *testing.T) (*CallService, *gorm.DB, *model.Company) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewCallService(
		repository.NewCallRepository(db),
		repository.NewLeadRepository(db),
		repository.NewTeamRepository(db),
		repository.NewAnalysisRepository(db),
		nil,
	)
	company := testutil.TestCompany(t, db)
	return svc, db, company
}

func TestListCallsFilterByOutcome(t *testing.T) {
	svc, db, company := setupCallService(t)

	employee := testutil.TestEmployee(t, db, company.ID)
	lead := testutil.TestLead(t, db, company.ID)
	testutil.TestCall(t, db, company.ID, lead.ID, employee.UserID)
	// 历史数据里的变体写法在筛选时归一
	testutil.TestCall(t, db, company.ID, lead.ID, employee.UserID, testutil.WithOutcome("No Answer"))
	testutil.TestCall(t, db, company.ID, lead.ID, employee.UserID, testutil.WithOutcome("no-answer"))

	resp, err := svc.ListCalls(company.ID, &dto.CallListQuery{Outcome: model.OutcomeNoAnswer})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	for _, c := range resp.Calls {
		assert.Equal(t, model.OutcomeNoAnswer, c.Outcome)
	}
}

func TestListCallsFilterByEmployee(t *testing.T) {
	svc, db, company := setupCallService(t)

	e1 := testutil.TestEmployee(t, db, company.ID)
	e2 := testutil.TestEmployee(t, db, company.ID)
	lead := testutil.TestLead(t, db, company.ID)
	testutil.TestCall(t, db, company.ID, lead.ID, e1.UserID)
	testutil.TestCall(t, db, company.ID, lead.ID, e2.UserID)

	resp, err := svc.ListCalls(company.ID, &dto.CallListQuery{EmployeeID: e1.UserID})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, e1.Name, resp.Calls[0].AgentName)
}

func TestListCallsFilterByManager(t *testing.T) {
	svc, db, company := setupCallService(t)

	manager := testutil.TestManager(t, db, company.ID)
	employee := testutil.TestEmployee(t, db, company.ID, testutil.WithManagerRef(manager.ID))
	outsider := testutil.TestEmployee(t, db, company.ID)
	lead := testutil.TestLead(t, db, company.ID)
	testutil.TestCall(t, db, company.ID, lead.ID, employee.UserID)
	testutil.TestCall(t, db, company.ID, lead.ID, outsider.UserID)

	resp, err := svc.ListCalls(company.ID, &dto.CallListQuery{ManagerID: manager.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestListCallsSortByDuration(t *testing.T) {
	svc, db, company := setupCallService(t)

	employee := testutil.TestEmployee(t, db, company.ID)
	lead := testutil.TestLead(t, db, company.ID)
	for _, secs := range []int{300, 60, 180} {
		call := testutil.TestCall(t, db, company.ID, lead.ID, employee.UserID)
		require.NoError(t, db.Model(call).Update("duration_seconds", secs).Error)
	}

	resp, err := svc.ListCalls(company.ID, &dto.CallListQuery{SortBy: "duration", Desc: true})
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, 300, resp.Calls[0].DurationSeconds)
	assert.Equal(t, 60, resp.Calls[2].DurationSeconds)
}

func TestListCallsDateRange(t *testing.T) {
	svc, db, company := setupCallService(t)

	employee := testutil.TestEmployee(t, db, company.ID)
	lead := testutil.TestLead(t, db, company.ID)
	testutil.TestCall(t, db, company.ID, lead.ID, employee.UserID,
		testutil.WithCallDate("2024-11-26T10:00:00"))
	testutil.TestCall(t, db, company.ID, lead.ID, employee.UserID,
		testutil.WithCallDate("2024-12-02T10:00:00"))

	resp, err := svc.ListCalls(company.ID, &dto.CallListQuery{
		DateFrom: "2024-11-25",
		DateTo:   "2024-11-30",
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "2024-11-26T10:00:00", resp.Calls[0].CallDate)
}

func TestCreateCallWithRecordingCreatesRecordingRow(t *testing.T) {
	svc, db, company := setupCallService(t)

	lead := testutil.TestLead(t, db, company.ID)
	call, err := svc.CreateCall(company.ID, 3001, &dto.CreateCallRequest{
		LeadID:       lead.ID,
		Outcome:      model.OutcomeCompleted,
		RecordingURL: "https://recordings.example.com/a.mp3",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, call.CallDate)

	recording, err := repository.NewAnalysisRepository(db).GetRecordingByCallID(company.ID, call.ID)
	require.NoError(t, err)
	assert.Equal(t, "client", recording.Source)
	assert.Equal(t, call.RecordingURL, recording.URL)
}

func TestCreateCallUnknownLead(t *testing.T) {
	svc, _, company := setupCallService(t)

	_, err := svc.CreateCall(company.ID, 3001, &dto.CreateCallRequest{
		LeadID:  424242,
		Outcome: model.OutcomeCompleted,
	})
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestListLeadCallsNewestFirst(t *testing.T) {
	svc, db, company := setupCallService(t)

	employee := testutil.TestEmployee(t, db, company.ID)
	lead := testutil.TestLead(t, db, company.ID)
	testutil.TestCall(t, db, company.ID, lead.ID, employee.UserID,
		testutil.WithCallDate("2024-11-01T09:00:00"))
	testutil.TestCall(t, db, company.ID, lead.ID, employee.UserID,
		testutil.WithCallDate("2024-11-03T09:00:00"))

	items, err := svc.ListLeadCalls(company.ID, lead.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2024-11-03T09:00:00", items[0].CallDate)
}

func TestUploadRecordingWithoutStorage(t *testing.T) {
	svc, db, company := setupCallService(t)

	lead := testutil.TestLead(t, db, company.ID)
	call := testutil.TestCall(t, db, company.ID, lead.ID, 3001)

	// 未配置 OSS 时直传不可用
	_, err := svc.UploadRecording(company.ID, call.ID, []byte("riff"), ".mp3")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestUploadRecordingUnknownCall(t *testing.T) {
	svc, _, company := setupCallService(t)

	_, err := svc.UploadRecording(company.ID, 424242, []byte("riff"), ".mp3")
	assert.ErrorIs(t, err, ErrCallNotFound)
}

func TestDeleteCall(t *testing.T) {
	svc, db, company := setupCallService(t)

	lead := testutil.TestLead(t, db, company.ID)
	call := testutil.TestCall(t, db, company.ID, lead.ID, 3001,
		testutil.WithRecordingURL("https://recordings.example.com/raw.mp3"))

	require.NoError(t, svc.DeleteCall(company.ID, call.ID))

	_, err := repository.NewCallRepository(db).GetByID(company.ID, call.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, svc.DeleteCall(company.ID, call.ID), ErrCallNotFound)
}

func TestRecordingPlaybackURLRaw(t *testing.T) {
	svc, db, company := setupCallService(t)

	lead := testutil.TestLead(t, db, company.ID)
	call := testutil.TestCall(t, db, company.ID, lead.ID, 3001,
		testutil.WithRecordingURL("https://recordings.example.com/raw.mp3"))

	// 未配置 OSS 时外部托管地址原样返回
	url, err := svc.RecordingPlaybackURL(company.ID, call.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://recordings.example.com/raw.mp3", url)
}

func TestRecordingPlaybackURLFromRecordingRow(t *testing.T) {
	svc, db, company := setupCallService(t)

	lead := testutil.TestLead(t, db, company.ID)
	call := testutil.TestCall(t, db, company.ID, lead.ID, 3001)
	recording := testutil.TestRecording(t, db, company.ID, call.ID)

	url, err := svc.RecordingPlaybackURL(company.ID, call.ID)
	require.NoError(t, err)
	assert.Equal(t, recording.URL, url)
}

func TestRecordingPlaybackURLNoRecording(t *testing.T) {
	svc, db, company := setupCallService(t)

	lead := testutil.TestLead(t, db, company.ID)
	call := testutil.TestCall(t, db, company.ID, lead.ID, 3001)

	_, err := svc.RecordingPlaybackURL(company.ID, call.ID)
	assert.ErrorIs(t, err, ErrNoRecording)
}
