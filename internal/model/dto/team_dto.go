package dto

// CreateManagerRequest 创建经理
type CreateManagerRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

// CreateEmployeeRequest 创建员工
type CreateEmployeeRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone,omitempty" binding:"omitempty,max=50"`
	Password  string `json:"password" binding:"required,min=8,max=32"`
	ManagerID *int64 `json:"manager_id,omitempty"`
}

// UpdateMemberRequest 更新成员资料（经理/员工通用）
type UpdateMemberRequest struct {
	Name      *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=50"`
	ManagerID *int64  `json:"manager_id,omitempty"`
}

// ManagerItem 经理列表项
type ManagerItem struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	EmployeeCount int    `json:"employee_count"`
	CreatedAt     string `json:"created_at"`
}

// EmployeeItem 员工列表项
type EmployeeItem struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	ManagerName string `json:"manager_name,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// TeamResponse 团队总览
type TeamResponse struct {
	Managers  []ManagerItem  `json:"managers"`
	Employees []EmployeeItem `json:"employees"`
}
