package model

import (
	"time"
)

type Company struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Industry  string    `gorm:"size:50" json:"industry"` // general, hr
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Address   string    `gorm:"size:500" json:"address"`
	Website   string    `gorm:"size:500" json:"website"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}

type CompanySettings struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	CompanyID       int64     `gorm:"not null;uniqueIndex" json:"company_id"`
	Timezone        string    `gorm:"size:50;default:UTC" json:"timezone"`
	SessionTimeout  int       `gorm:"default:30" json:"session_timeout"` // 分钟
	AnalysisEnabled bool      `gorm:"default:true" json:"analysis_enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CompanySettings) TableName() string {
	return "company_settings"
}

// PhoneNumber 租户的外呼号码
type PhoneNumber struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CompanyID int64     `gorm:"not null;index" json:"company_id"`
	Number    string    `gorm:"size:50;not null" json:"number"`
	Label     string    `gorm:"size:100" json:"label"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (PhoneNumber) TableName() string {
	return "phone_numbers"
}
