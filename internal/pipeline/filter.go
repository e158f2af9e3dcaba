package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/qs3c/leadcrm_go_server/internal/model"
)

// PageSize 列表页固定页大小
const PageSize = 50

// 排序键
const (
	SortByDate     = "date"
	SortByDuration = "duration"
	SortByAgent    = "agent"
)

// Filters 一次列表查询的筛选条件。零值字段表示不筛
type Filters struct {
	Search         string
	EmployeeID     int64  // 员工 user_id
	ManagerID      int64  // 经理行 ID
	Outcome        string
	Status         string // 线索状态
	AnalysisStatus string
	Date           DateRange
}

// FilterState 筛选 + 分页状态。任何筛选条件变化都把页码重置到 1，
// 单独翻页不动筛选条件。
type FilterState struct {
	Filters Filters
	Page    int
	SortKey string
	Desc    bool
}

// NewFilterState 初始状态：无筛选，第 1 页
func NewFilterState() FilterState {
	return FilterState{Page: 1}
}

func (s *FilterState) SetSearch(q string) {
	s.Filters.Search = q
	s.Page = 1
}

func (s *FilterState) SetEmployee(userID int64) {
	s.Filters.EmployeeID = userID
	s.Page = 1
}

func (s *FilterState) SetManager(managerID int64) {
	s.Filters.ManagerID = managerID
	s.Page = 1
}

func (s *FilterState) SetOutcome(outcome string) {
	s.Filters.Outcome = outcome
	s.Page = 1
}

func (s *FilterState) SetStatus(status string) {
	s.Filters.Status = status
	s.Page = 1
}

func (s *FilterState) SetAnalysisStatus(status string) {
	s.Filters.AnalysisStatus = status
	s.Page = 1
}

func (s *FilterState) SetDateRange(r DateRange) {
	s.Filters.Date = r
	s.Page = 1
}

func (s *FilterState) SetSort(key string, desc bool) {
	s.SortKey = key
	s.Desc = desc
	s.Page = 1
}

// SetPage 只翻页，不碰筛选条件
func (s *FilterState) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.Page = page
}

// CallRow 筛选管线使用的通话视图：通话 + 关联线索 + 解析后的归属 + 分析状态
type CallRow struct {
	Call           *model.Call
	Lead           *model.Lead
	Owner          Owner
	AnalysisStatus string // 无分析时为空串
}

// LeadRow 筛选管线使用的线索视图
type LeadRow struct {
	Lead  *model.Lead
	Owner Owner
	Group *model.LeadGroup
}

// FilterCalls 应用筛选条件，保持原有相对顺序。
// 任何条件组合都不报错，筛空是正常结果。
func FilterCalls(rows []CallRow, f Filters, roster *Roster) []CallRow {
	out := make([]CallRow, 0, len(rows))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	for _, row := range rows {
		if search != "" && !callMatchesSearch(row, search) {
			continue
		}
		if f.EmployeeID != 0 && !callMatchesEmployee(row, f.EmployeeID) {
			continue
		}
		if f.ManagerID != 0 && !ownerMatchesManager(row.Owner, f.ManagerID, roster) {
			continue
		}
		if f.Outcome != "" &&
			model.NormalizeOutcome(row.Call.Outcome) != model.NormalizeOutcome(f.Outcome) {
			continue
		}
		if f.AnalysisStatus != "" && row.AnalysisStatus != f.AnalysisStatus {
			continue
		}
		if !f.Date.IsZero() && !f.Date.Contains(row.Call.CallDate) {
			continue
		}
		out = append(out, row)
	}

	return out
}

// FilterLeads 应用筛选条件，保持原有相对顺序
func FilterLeads(rows []LeadRow, f Filters, roster *Roster) []LeadRow {
	out := make([]LeadRow, 0, len(rows))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	for _, row := range rows {
		if search != "" && !leadMatchesSearch(row, search) {
			continue
		}
		if f.Status != "" && row.Lead.Status != f.Status {
			continue
		}
		if f.EmployeeID != 0 &&
			(row.Owner.Employee == nil || row.Owner.Employee.UserID != f.EmployeeID) {
			continue
		}
		if f.ManagerID != 0 && !ownerMatchesManager(row.Owner, f.ManagerID, roster) {
			continue
		}
		if !f.Date.IsZero() &&
			!f.Date.Contains(row.Lead.CreatedAt.Format(time.RFC3339)) {
			continue
		}
		out = append(out, row)
	}

	return out
}

func callMatchesSearch(row CallRow, search string) bool {
	if row.Lead != nil {
		if strings.Contains(strings.ToLower(row.Lead.Name), search) ||
			strings.Contains(strings.ToLower(row.Lead.Email), search) ||
			strings.Contains(strings.ToLower(row.Lead.Phone), search) ||
			strings.Contains(strings.ToLower(row.Lead.Notes), search) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(row.Call.Notes), search)
}

func leadMatchesSearch(row LeadRow, search string) bool {
	l := row.Lead
	return strings.Contains(strings.ToLower(l.Name), search) ||
		strings.Contains(strings.ToLower(l.Email), search) ||
		strings.Contains(strings.ToLower(l.Phone), search) ||
		strings.Contains(strings.ToLower(l.Notes), search)
}

func callMatchesEmployee(row CallRow, employeeUserID int64) bool {
	if row.Call.EmployeeID == employeeUserID {
		return true
	}
	return row.Owner.Employee != nil && row.Owner.Employee.UserID == employeeUserID
}

// ownerMatchesManager 归属是该经理本人，或归属员工挂在该经理名下
func ownerMatchesManager(o Owner, managerID int64, roster *Roster) bool {
	if o.Manager != nil && o.Manager.ID == managerID {
		return true
	}
	if o.Employee != nil && roster != nil {
		if m := roster.ManagerOf(o.Employee); m != nil && m.ID == managerID {
			return true
		}
	}
	return false
}

// SortCalls 按单一排序键稳定排序，原地修改
func SortCalls(rows []CallRow, key string, desc bool) {
	var less func(a, b CallRow) bool

	switch key {
	case SortByDuration:
		less = func(a, b CallRow) bool {
			return a.Call.DurationSeconds < b.Call.DurationSeconds
		}
	case SortByAgent:
		less = func(a, b CallRow) bool {
			return a.Owner.Name() < b.Owner.Name()
		}
	case SortByDate:
		fallthrough
	default:
		// 日期串同样按字符串比较，ISO 格式下与时间序一致
		less = func(a, b CallRow) bool {
			return a.Call.CallDate < b.Call.CallDate
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

// Paginate 按固定页大小切页，页码从 1 开始，越界返回空页
func Paginate[T any](rows []T, page int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// TotalPages 总页数
func TotalPages(total int) int {
	if total == 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}
