package dto

// RegisterCompanyRequest 注册公司（管理员自助开通租户）
type RegisterCompanyRequest struct {
	CompanyName string `json:"company_name" binding:"required,max=200"`
	Industry    string `json:"industry,omitempty" binding:"omitempty,max=50"`
	AdminName   string `json:"admin_name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=32"`
}

// RegisterCompanyResponse 注册响应
type RegisterCompanyResponse struct {
	CompanyID int64 `json:"company_id"`
	UserID    int64 `json:"user_id"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 登录者信息（返回给前端）
type UserInfo struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name,omitempty"`
}

// ForgotPasswordRequest 请求发送密码重置邮件
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest 用邮件令牌设置新密码
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=32"`
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=32"`
}
