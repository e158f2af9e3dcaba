package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/leadcrm_go_server/internal/model"
)

// seq 递增序号，保证同一进程里的夹具字段互不冲突
var seq int64

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// bcrypt hash placeholder
const testPasswordHash = "$2a$10$abcdefghijklmnopqrstuvwxyz123456"

// TestCompany 创建测试公司
func TestCompany(t *testing.T, db *gorm.DB, opts ...func(*model.Company)) *model.Company {
	t.Helper()

	n := nextSeq()
	company := &model.Company{
		Name:     fmt.Sprintf("Test Company %d", n),
		Industry: "general",
		Email:    fmt.Sprintf("company_%d@example.com", n),
	}

	for _, opt := range opts {
		opt(company)
	}

	if err := db.Create(company).Error; err != nil {
		t.Fatalf("Failed to create test company: %v", err)
	}

	return company
}

// WithIndustry 设置公司行业
func WithIndustry(industry string) func(*model.Company) {
	return func(c *model.Company) {
		c.Industry = industry
	}
}

// TestAdmin 创建测试管理员
func TestAdmin(t *testing.T, db *gorm.DB, companyID int64, opts ...func(*model.Admin)) *model.Admin {
	t.Helper()

	n := nextSeq()
	hash := testPasswordHash
	admin := &model.Admin{
		CompanyID:    companyID,
		UserID:       100000 + n,
		Name:         fmt.Sprintf("Admin %d", n),
		Email:        fmt.Sprintf("admin_%d@example.com", n),
		PasswordHash: &hash,
	}

	for _, opt := range opts {
		opt(admin)
	}

	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}

	return admin
}

// TestManager 创建测试经理
func TestManager(t *testing.T, db *gorm.DB, companyID int64, opts ...func(*model.Manager)) *model.Manager {
	t.Helper()

	n := nextSeq()
	hash := testPasswordHash
	manager := &model.Manager{
		CompanyID:    companyID,
		UserID:       200000 + n,
		Name:         fmt.Sprintf("Manager %d", n),
		Email:        fmt.Sprintf("manager_%d@example.com", n),
		PasswordHash: &hash,
		Status:       "active",
	}

	for _, opt := range opts {
		opt(manager)
	}

	if err := db.Create(manager).Error; err != nil {
		t.Fatalf("Failed to create test manager: %v", err)
	}

	return manager
}

// WithManagerEmail 设置经理邮箱
func WithManagerEmail(email string) func(*model.Manager) {
	return func(m *model.Manager) {
		m.Email = email
	}
}

// TestEmployee 创建测试员工
func TestEmployee(t *testing.T, db *gorm.DB, companyID int64, opts ...func(*model.Employee)) *model.Employee {
	t.Helper()

	n := nextSeq()
	hash := testPasswordHash
	employee := &model.Employee{
		CompanyID:    companyID,
		UserID:       300000 + n,
		Name:         fmt.Sprintf("Employee %d", n),
		Email:        fmt.Sprintf("employee_%d@example.com", n),
		PasswordHash: &hash,
		Status:       "active",
	}

	for _, opt := range opts {
		opt(employee)
	}

	if err := db.Create(employee).Error; err != nil {
		t.Fatalf("Failed to create test employee: %v", err)
	}

	return employee
}

// WithManagerRef 设置员工的 manager_id（行 ID 或 user_id 都可以）
func WithManagerRef(id int64) func(*model.Employee) {
	return func(e *model.Employee) {
		e.ManagerID = &id
	}
}

// WithEmployeeEmail 设置员工邮箱
func WithEmployeeEmail(email string) func(*model.Employee) {
	return func(e *model.Employee) {
		e.Email = email
	}
}

// TestLead 创建测试线索
func TestLead(t *testing.T, db *gorm.DB, companyID int64, opts ...func(*model.Lead)) *model.Lead {
	t.Helper()

	n := nextSeq()
	lead := &model.Lead{
		CompanyID: companyID,
		Name:      fmt.Sprintf("Lead %d", n),
		Email:     fmt.Sprintf("lead_%d@example.com", n),
		Phone:     fmt.Sprintf("1380000%04d", n%10000),
		Status:    model.LeadStatusUnassigned,
		Source:    "manual",
	}

	for _, opt := range opts {
		opt(lead)
	}

	if err := db.Create(lead).Error; err != nil {
		t.Fatalf("Failed to create test lead: %v", err)
	}

	return lead
}

// WithGroup 设置线索所属组
func WithGroup(groupID int64) func(*model.Lead) {
	return func(l *model.Lead) {
		l.GroupID = &groupID
	}
}

// WithAssignedTo 设置 assigned_to 列
func WithAssignedTo(id int64) func(*model.Lead) {
	return func(l *model.Lead) {
		l.AssignedTo = &id
		l.Status = model.LeadStatusAssigned
	}
}

// WithLeadUserID 设置 user_id 列
func WithLeadUserID(id int64) func(*model.Lead) {
	return func(l *model.Lead) {
		l.UserID = &id
	}
}

// WithLeadStatus 设置线索状态
func WithLeadStatus(status string) func(*model.Lead) {
	return func(l *model.Lead) {
		l.Status = status
	}
}

// TestGroup 创建测试线索组
func TestGroup(t *testing.T, db *gorm.DB, companyID int64, opts ...func(*model.LeadGroup)) *model.LeadGroup {
	t.Helper()

	group := &model.LeadGroup{
		CompanyID: companyID,
		Name:      fmt.Sprintf("Group %d", nextSeq()),
	}

	for _, opt := range opts {
		opt(group)
	}

	if err := db.Create(group).Error; err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}

	return group
}

// WithGroupManager 设置组的负责经理（行 ID）
func WithGroupManager(managerID int64) func(*model.LeadGroup) {
	return func(g *model.LeadGroup) {
		g.AssignedTo = &managerID
	}
}

// TestCall 创建测试通话
func TestCall(t *testing.T, db *gorm.DB, companyID, leadID, employeeUserID int64, opts ...func(*model.Call)) *model.Call {
	t.Helper()

	call := &model.Call{
		CompanyID:       companyID,
		LeadID:          leadID,
		EmployeeID:      employeeUserID,
		Outcome:         model.OutcomeCompleted,
		CallDate:        time.Now().UTC().Format("2006-01-02T15:04:05"),
		DurationSeconds: 120,
	}

	for _, opt := range opts {
		opt(call)
	}

	if err := db.Create(call).Error; err != nil {
		t.Fatalf("Failed to create test call: %v", err)
	}

	return call
}

// WithOutcome 设置通话结果
func WithOutcome(outcome string) func(*model.Call) {
	return func(c *model.Call) {
		c.Outcome = outcome
	}
}

// WithCallDate 设置通话时间串
func WithCallDate(date string) func(*model.Call) {
	return func(c *model.Call) {
		c.CallDate = date
	}
}

// WithRecordingURL 设置录音地址
func WithRecordingURL(url string) func(*model.Call) {
	return func(c *model.Call) {
		c.RecordingURL = url
	}
}

// TestRecording 创建测试录音
func TestRecording(t *testing.T, db *gorm.DB, companyID, callID int64, opts ...func(*model.Recording)) *model.Recording {
	t.Helper()

	recording := &model.Recording{
		CompanyID: companyID,
		CallID:    callID,
		URL:       fmt.Sprintf("https://recordings.example.com/%d.mp3", nextSeq()),
		Status:    model.AnalysisStatusPending,
		Source:    "trigger",
	}

	for _, opt := range opts {
		opt(recording)
	}

	if err := db.Create(recording).Error; err != nil {
		t.Fatalf("Failed to create test recording: %v", err)
	}

	return recording
}

// TestClient 创建测试客户
func TestClient(t *testing.T, db *gorm.DB, companyID int64, opts ...func(*model.Client)) *model.Client {
	t.Helper()

	n := nextSeq()
	client := &model.Client{
		CompanyID: companyID,
		Name:      fmt.Sprintf("Client %d", n),
		Email:     fmt.Sprintf("client_%d@example.com", n),
		Status:    "active",
	}

	for _, opt := range opts {
		opt(client)
	}

	if err := db.Create(client).Error; err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}

	return client
}

// TestJob 创建测试职位
func TestJob(t *testing.T, db *gorm.DB, companyID, clientID int64, opts ...func(*model.Job)) *model.Job {
	t.Helper()

	job := &model.Job{
		CompanyID: companyID,
		ClientID:  clientID,
		Title:     fmt.Sprintf("Job %d", nextSeq()),
		Status:    model.JobStatusOpen,
	}

	for _, opt := range opts {
		opt(job)
	}

	if err := db.Create(job).Error; err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}

	return job
}
