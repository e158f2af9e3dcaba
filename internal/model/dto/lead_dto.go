package dto

// CreateLeadRequest 创建线索
type CreateLeadRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Email    string `json:"email,omitempty" binding:"omitempty,email"`
	Phone    string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Notes    string `json:"notes,omitempty" binding:"omitempty,max=5000"`
	GroupID  *int64 `json:"group_id,omitempty"`
	ClientID *int64 `json:"client_id,omitempty"`
	JobID    *int64 `json:"job_id,omitempty"`
}

// UpdateLeadRequest 更新线索
type UpdateLeadRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=200"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Notes    *string `json:"notes,omitempty" binding:"omitempty,max=5000"`
	Status   *string `json:"status,omitempty" binding:"omitempty,oneof=unassigned assigned active converted"`
	GroupID  *int64  `json:"group_id,omitempty"`
	ClientID *int64  `json:"client_id,omitempty"`
	JobID    *int64  `json:"job_id,omitempty"`
}

// AssignLeadRequest 分配/改派线索
type AssignLeadRequest struct {
	AssigneeID int64 `json:"assignee_id" binding:"required"` // 经理行 ID 或员工 user_id
}

// LeadItem 线索列表项
type LeadItem struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Status     string `json:"status"`
	Source     string `json:"source,omitempty"`
	OwnerName  string `json:"owner_name"`
	OwnerRole  string `json:"owner_role,omitempty"` // manager / employee，未分配为空
	GroupID    *int64 `json:"group_id,omitempty"`
	GroupName  string `json:"group_name,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	JobTitle   string `json:"job_title,omitempty"`
	CallCount  int    `json:"call_count"`
	CreatedAt  string `json:"created_at"`
}

// LeadListResponse 线索列表响应
type LeadListResponse struct {
	Leads      []LeadItem `json:"leads"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

// CreateGroupRequest 创建线索组
type CreateGroupRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	AssignedTo *int64 `json:"assigned_to,omitempty"` // 经理行 ID
}

// GroupItem 线索组列表项
type GroupItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ManagerName string `json:"manager_name,omitempty"`
	LeadCount   int    `json:"lead_count"`
	CreatedAt   string `json:"created_at"`
}

// DeleteGroupResponse 删除线索组响应，N 为级联删除的线索数
type DeleteGroupResponse struct {
	RemovedLeads int `json:"removed_leads"`
}

// ImportLeadsResponse CSV 导入结果
type ImportLeadsResponse struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError 单行导入错误
type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}
