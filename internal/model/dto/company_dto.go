package dto

// UpdateAdminProfileRequest 更新管理员资料
type UpdateAdminProfileRequest struct {
	Name  *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone *string `json:"phone,omitempty" binding:"omitempty,max=50"`
}

// UpdateCompanyInfoRequest 更新公司信息
type UpdateCompanyInfoRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=200"`
	Industry *string `json:"industry,omitempty" binding:"omitempty,max=50"`
	Address  *string `json:"address,omitempty" binding:"omitempty,max=500"`
	Website  *string `json:"website,omitempty" binding:"omitempty,url"`
}

// UpdateCompanySettingsRequest 更新公司配置
type UpdateCompanySettingsRequest struct {
	Timezone        *string `json:"timezone,omitempty" binding:"omitempty,max=64"`
	SessionTimeout  *int    `json:"session_timeout,omitempty" binding:"omitempty,min=5,max=1440"`
	AnalysisEnabled *bool   `json:"analysis_enabled,omitempty"`
}

// CompanyDetail 公司详情
type CompanyDetail struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Industry     string           `json:"industry,omitempty"`
	Address      string           `json:"address,omitempty"`
	Website      string           `json:"website,omitempty"`
	Settings     *CompanySettings `json:"settings,omitempty"`
	PhoneNumbers []PhoneNumber    `json:"phone_numbers,omitempty"`
	CreatedAt    string           `json:"created_at"`
}

// CompanySettings 公司配置
type CompanySettings struct {
	Timezone        string `json:"timezone"`
	SessionTimeout  int    `json:"session_timeout"`
	AnalysisEnabled bool   `json:"analysis_enabled"`
}

// PhoneNumber 公司外呼号码
type PhoneNumber struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
	Label  string `json:"label,omitempty"`
	Active bool   `json:"active"`
}

// AddPhoneNumberRequest 添加外呼号码
type AddPhoneNumberRequest struct {
	Number string `json:"number" binding:"required,max=50"`
	Label  string `json:"label,omitempty" binding:"omitempty,max=100"`
}
