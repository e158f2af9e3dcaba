package model

import (
	"time"
)

// 线索状态
const (
	LeadStatusUnassigned = "unassigned"
	LeadStatusAssigned   = "assigned"
	LeadStatusActive     = "active"
	LeadStatusConverted  = "converted"
)

type Lead struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	CompanyID int64  `gorm:"not null;index" json:"company_id"`
	Name      string `gorm:"size:200;not null" json:"name"`
	Email     string `gorm:"size:100" json:"email"`
	Phone     string `gorm:"size:50" json:"phone"`
	Notes     string `gorm:"type:text" json:"notes"`
	Status    string `gorm:"size:20;default:unassigned;index" json:"status"`
	Source    string `gorm:"size:50" json:"source"` // manual, csv, group
	GroupID   *int64 `gorm:"index" json:"group_id,omitempty"`
	// 历史遗留：可能是经理行 ID、员工 user_id 或员工行 ID
	AssignedTo *int64 `gorm:"index" json:"assigned_to,omitempty"`
	// 历史遗留：可能是经理 user_id 或员工 user_id
	UserID    *int64     `gorm:"index" json:"user_id,omitempty"`
	ClientID  *int64     `gorm:"index" json:"client_id,omitempty"` // HR 行业租户
	JobID     *int64     `gorm:"index" json:"job_id,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

type LeadGroup struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	CompanyID  int64     `gorm:"not null;index" json:"company_id"`
	Name       string    `gorm:"size:200;not null" json:"name"`
	AssignedTo *int64    `json:"assigned_to,omitempty"` // 经理行 ID
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (LeadGroup) TableName() string {
	return "lead_groups"
}
