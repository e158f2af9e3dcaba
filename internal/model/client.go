package model

import (
	"time"
)

// 职位状态
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Client HR 行业租户的客户企业
type Client struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	CompanyID     int64     `gorm:"not null;index" json:"company_id"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	ContactPerson string    `gorm:"size:100" json:"contact_person"`
	Email         string    `gorm:"size:100" json:"email"`
	Phone         string    `gorm:"size:50" json:"phone"`
	Notes         string    `gorm:"type:text" json:"notes"`
	Status        string    `gorm:"size:20;default:active" json:"status"` // active, inactive
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// Job 客户发布的职位
type Job struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	CompanyID   int64     `gorm:"not null;index" json:"company_id"`
	ClientID    int64     `gorm:"not null;index" json:"client_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:20;default:open" json:"status"` // open, closed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}
