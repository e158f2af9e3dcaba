package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/leadcrm_go_server/internal/api/middleware"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/response"
	"github.com/qs3c/leadcrm_go_server/internal/service"
)

type CompanyHandler struct {
	companyService *service.CompanyService
}

func NewCompanyHandler(companyService *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Get 公司详情（含配置和外呼号码）
// GET /api/v1/company
func (h *CompanyHandler) Get(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	detail, err := h.companyService.GetCompany(companyID)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}
	response.Success(c, detail)
}

// UpdateInfo 更新公司信息
// PUT /api/v1/company
func (h *CompanyHandler) UpdateInfo(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var req dto.UpdateCompanyInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.companyService.UpdateCompanyInfo(companyID, &req); err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// UpdateSettings 更新公司配置
// PUT /api/v1/company/settings
func (h *CompanyHandler) UpdateSettings(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var req dto.UpdateCompanySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.companyService.UpdateSettings(companyID, &req); err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// UpdateProfile 更新管理员资料
// PUT /api/v1/company/profile
func (h *CompanyHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.UpdateAdminProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.companyService.UpdateAdminProfile(userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrEmailExists):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// UpdatePassword 修改管理员密码
// PUT /api/v1/company/password
func (h *CompanyHandler) UpdatePassword(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.companyService.UpdateAdminPassword(userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrOldPasswordWrong):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "密码已修改", nil)
}

// AddPhoneNumber 添加外呼号码
// POST /api/v1/company/phone-numbers
func (h *CompanyHandler) AddPhoneNumber(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var req dto.AddPhoneNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	number, err := h.companyService.AddPhoneNumber(companyID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "添加成功", number)
}

// RemovePhoneNumber 删除外呼号码
// DELETE /api/v1/company/phone-numbers/:id
func (h *CompanyHandler) RemovePhoneNumber(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的号码 ID")
		return
	}

	if err := h.companyService.RemovePhoneNumber(companyID, id); err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
