package dto

// CreateClientRequest 创建客户（HR 行业租户）
type CreateClientRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	ContactPerson string `json:"contact_person,omitempty" binding:"omitempty,max=100"`
	Email         string `json:"email,omitempty" binding:"omitempty,email"`
	Phone         string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Notes         string `json:"notes,omitempty" binding:"omitempty,max=5000"`
}

// UpdateClientRequest 更新客户
type UpdateClientRequest struct {
	Name          *string `json:"name,omitempty" binding:"omitempty,max=200"`
	ContactPerson *string `json:"contact_person,omitempty" binding:"omitempty,max=100"`
	Email         *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone         *string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Notes         *string `json:"notes,omitempty" binding:"omitempty,max=5000"`
}

// ClientItem 客户列表项
type ClientItem struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	OpenJobs      int    `json:"open_jobs"`
	LeadCount     int    `json:"lead_count"`
	CreatedAt     string `json:"created_at"`
}

// CreateJobRequest 创建职位
type CreateJobRequest struct {
	ClientID    int64  `json:"client_id" binding:"required"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description,omitempty" binding:"omitempty,max=5000"`
}

// UpdateJobRequest 更新职位
type UpdateJobRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=5000"`
	Status      *string `json:"status,omitempty" binding:"omitempty,oneof=open closed"`
}

// JobItem 职位列表项
type JobItem struct {
	ID         int64  `json:"id"`
	ClientID   int64  `json:"client_id"`
	ClientName string `json:"client_name,omitempty"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	LeadCount  int    `json:"lead_count"`
	CreatedAt  string `json:"created_at"`
}
