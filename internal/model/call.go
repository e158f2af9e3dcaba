package model

import (
	"time"
)

// 通话结果。历史数据里混有 no-answer / Failed / busy 等写法，
// 读取时按 NormalizeOutcome 归一，写入保留原样。
const (
	OutcomeInterested    = "interested"
	OutcomeNotInterested = "not_interested"
	OutcomeFollowUp      = "follow_up"
	OutcomeConverted     = "converted"
	OutcomeLost          = "lost"
	OutcomeCompleted     = "completed"
	OutcomeNoAnswer      = "no_answer"
	OutcomeFailed        = "failed"
	OutcomeBusy          = "busy"
)

// AnsweredOutcomes 视为已接通的结果，只有这些通话可以发起分析
var AnsweredOutcomes = []string{
	OutcomeInterested,
	OutcomeNotInterested,
	OutcomeFollowUp,
	OutcomeConverted,
	OutcomeLost,
	OutcomeCompleted,
}

type Call struct {
	ID         int64 `gorm:"primaryKey" json:"id"`
	CompanyID  int64 `gorm:"not null;index" json:"company_id"`
	LeadID     int64 `gorm:"not null;index" json:"lead_id"`
	EmployeeID int64 `gorm:"not null;index" json:"employee_id"` // 员工的 user_id，不是行 ID
	Outcome    string `gorm:"size:30" json:"outcome"`
	// 通话发生时间，保留来源系统的 ISO 字符串原样（前 10 位即 YYYY-MM-DD），
	// 日期筛选按字符串前缀比较，避免时区换算产生的偏差
	CallDate        string    `gorm:"size:32;index" json:"call_date"`
	DurationSeconds int       `gorm:"default:0" json:"duration_seconds"`
	RecordingURL    string    `gorm:"size:500" json:"recording_url,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Call) TableName() string {
	return "call_history"
}

// NormalizeOutcome 归一历史写法，仅用于筛选比较，不改写存量数据
func NormalizeOutcome(outcome string) string {
	switch outcome {
	case "no-answer", "No Answer":
		return OutcomeNoAnswer
	case "Failed":
		return OutcomeFailed
	case "Busy":
		return OutcomeBusy
	default:
		return outcome
	}
}
