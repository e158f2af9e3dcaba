package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringArray 用于 JSON 数组字段
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// 分析/录音状态
const (
	AnalysisStatusPending    = "pending"
	AnalysisStatusProcessing = "processing"
	AnalysisStatusCompleted  = "completed"
	AnalysisStatusFailed     = "failed"
)

// Recording 通话录音。通常由数据库触发器随通话写入，
// 客户端在触发器缺失时兜底创建。
type Recording struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	CompanyID    int64      `gorm:"not null;index" json:"company_id"`
	CallID       int64      `gorm:"not null;index" json:"call_id"`
	URL          string     `gorm:"size:500;not null" json:"url"` // 外部托管的音频地址
	Status       string     `gorm:"size:20;default:pending;index" json:"status"`
	Source       string     `gorm:"size:20;default:trigger" json:"source"` // trigger, client
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Recording) TableName() string {
	return "recordings"
}

// Analysis 外部服务回写的通话分析结果，与通话实际上一一对应
type Analysis struct {
	ID                 int64       `gorm:"primaryKey" json:"id"`
	CompanyID          int64       `gorm:"not null;index" json:"company_id"`
	CallID             int64       `gorm:"not null;index" json:"call_id"`
	RecordingID        int64       `gorm:"not null;index" json:"recording_id"`
	SubmittedBy        int64       `gorm:"index" json:"submitted_by"` // 发起人 user_id，状态推送找人用
	Status             string      `gorm:"size:20;default:pending;index" json:"status"`
	SentimentScore     int         `gorm:"default:0" json:"sentiment_score"`      // 0-100
	EngagementScore    int         `gorm:"default:0" json:"engagement_score"`     // 0-100
	ConfidenceScore    int         `gorm:"default:0" json:"confidence_score"`     // 0-100
	ClosureProbability int         `gorm:"default:0" json:"closure_probability"`  // 0-100，外部服务产出
	Summary            string      `gorm:"type:text" json:"summary,omitempty"`
	KeyPoints          StringArray `gorm:"type:json" json:"key_points,omitempty"`
	Objections         StringArray `gorm:"type:json" json:"objections,omitempty"`
	NextSteps          string      `gorm:"type:text" json:"next_steps,omitempty"`
	ErrorMessage       string      `gorm:"type:text" json:"error_message,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	CreatedAt          time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}
