package dto

// CreateCallRequest 记录通话
type CreateCallRequest struct {
	LeadID          int64  `json:"lead_id" binding:"required"`
	Outcome         string `json:"outcome" binding:"required,max=30"`
	CallDate        string `json:"call_date,omitempty" binding:"omitempty,max=32"` // ISO 串，缺省取当前时间
	DurationSeconds int    `json:"duration_seconds,omitempty" binding:"omitempty,min=0"`
	RecordingURL    string `json:"recording_url,omitempty" binding:"omitempty,url"`
	Notes           string `json:"notes,omitempty" binding:"omitempty,max=5000"`
}

// UpdateCallRequest 更新通话记录
type UpdateCallRequest struct {
	Outcome         *string `json:"outcome,omitempty" binding:"omitempty,max=30"`
	DurationSeconds *int    `json:"duration_seconds,omitempty" binding:"omitempty,min=0"`
	Notes           *string `json:"notes,omitempty" binding:"omitempty,max=5000"`
}

// CallListQuery 通话列表查询参数
type CallListQuery struct {
	Search         string `form:"search"`
	EmployeeID     int64  `form:"employee_id"`
	ManagerID      int64  `form:"manager_id"`
	Outcome        string `form:"outcome"`
	AnalysisStatus string `form:"analysis_status"`
	DatePreset     string `form:"date_preset"` // today / this_week / last_7_days / last_30_days
	DateFrom       string `form:"date_from"`   // YYYY-MM-DD，与 preset 互斥，preset 优先
	DateTo         string `form:"date_to"`
	SortBy         string `form:"sort_by"` // date / duration / agent
	Desc           bool   `form:"desc"`
	Page           int    `form:"page"`
}

// CallItem 通话列表项
type CallItem struct {
	ID              int64  `json:"id"`
	LeadID          int64  `json:"lead_id"`
	LeadName        string `json:"lead_name"`
	AgentName       string `json:"agent_name"`
	Outcome         string `json:"outcome"`
	CallDate        string `json:"call_date"`
	DurationSeconds int    `json:"duration_seconds"`
	RecordingURL    string `json:"recording_url,omitempty"`
	Notes           string `json:"notes,omitempty"`
	AnalysisStatus  string `json:"analysis_status,omitempty"`
	AnalysisID      int64  `json:"analysis_id,omitempty"`
}

// CallListResponse 通话列表响应
type CallListResponse struct {
	Calls      []CallItem `json:"calls"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}
