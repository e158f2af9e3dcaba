package dto

// DashboardQuery 仪表盘查询参数
type DashboardQuery struct {
	DatePreset string `form:"date_preset"` // today / this_week / last_7_days / last_30_days
	ManagerID  int64  `form:"manager_id"`
	EmployeeID int64  `form:"employee_id"`
}

// DashboardResponse 仪表盘汇总
type DashboardResponse struct {
	TotalLeads      int             `json:"total_leads"`
	ActiveLeads     int             `json:"active_leads"`
	ConvertedLeads  int             `json:"converted_leads"`
	UnassignedLeads int             `json:"unassigned_leads"`
	TotalCalls      int             `json:"total_calls"`
	AnsweredCalls   int             `json:"answered_calls"`
	ConversionRate  float64         `json:"conversion_rate"` // converted / total，0-1
	OutcomeCounts   map[string]int  `json:"outcome_counts"`  // 按归一后的结果统计
	AgentStats      []AgentStatItem `json:"agent_stats"`
	ScoreAverages   *ScoreAverages  `json:"score_averages,omitempty"` // 只统计已完成的分析
}

// ScoreAverages 已完成分析的平均分
type ScoreAverages struct {
	AnalyzedCalls      int     `json:"analyzed_calls"`
	Sentiment          float64 `json:"sentiment"`
	Engagement         float64 `json:"engagement"`
	Confidence         float64 `json:"confidence"`
	ClosureProbability float64 `json:"closure_probability"`
}

// AgentStatItem 按归属人统计
type AgentStatItem struct {
	Name          string `json:"name"` // 归属人名，未分配为 Unassigned
	Role          string `json:"role,omitempty"`
	LeadCount     int    `json:"lead_count"`
	CallCount     int    `json:"call_count"`
	AnsweredCalls int    `json:"answered_calls"`
	TotalTalkSecs int    `json:"total_talk_secs"`
}
