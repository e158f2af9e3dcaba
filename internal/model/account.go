package model

import (
	"time"
)

// 角色常量
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type Admin struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	CompanyID    int64     `gorm:"not null;index" json:"company_id"`
	UserID       int64     `gorm:"not null;uniqueIndex" json:"user_id"` // 外部认证身份，区别于行 ID
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;not null;index" json:"email"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	Phone        string    `gorm:"size:50" json:"phone"`
	GithubID     *string   `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}

type Manager struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	CompanyID    int64     `gorm:"not null;index" json:"company_id"`
	UserID       int64     `gorm:"not null;index" json:"user_id"` // 外部认证身份
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;not null;index" json:"email"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	Phone        string    `gorm:"size:50" json:"phone"`
	Status       string    `gorm:"size:20;default:active" json:"status"` // active, inactive
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Manager) TableName() string {
	return "managers"
}

type Employee struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	CompanyID    int64   `gorm:"not null;index" json:"company_id"`
	UserID       int64   `gorm:"not null;index" json:"user_id"` // 外部认证身份
	// 历史数据中既可能存经理的行 ID，也可能存经理的 user_id，读取时需双重查找
	ManagerID    *int64    `json:"manager_id,omitempty"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;not null;index" json:"email"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	Phone        string    `gorm:"size:50" json:"phone"`
	Status       string    `gorm:"size:20;default:active" json:"status"` // active, inactive
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}
