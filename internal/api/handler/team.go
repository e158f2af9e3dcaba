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

type TeamHandler struct {
	teamService *service.TeamService
}

func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// Get 团队总览
// GET /api/v1/team
func (h *TeamHandler) Get(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	resp, err := h.teamService.GetTeam(companyID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, resp)
}

// CreateManager 创建经理
// POST /api/v1/team/managers
func (h *TeamHandler) CreateManager(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var req dto.CreateManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.teamService.CreateManager(companyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "创建成功", item)
}

// CreateEmployee 创建员工
// POST /api/v1/team/employees
func (h *TeamHandler) CreateEmployee(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.teamService.CreateEmployee(companyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrMemberNotFound):
			response.NotFoundError(c, "经理不存在")
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "创建成功", item)
}

// UpdateManager 更新经理资料
// PUT /api/v1/team/managers/:id
func (h *TeamHandler) UpdateManager(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的成员 ID")
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.teamService.UpdateManager(companyID, id, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
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

// UpdateEmployee 更新员工资料
// PUT /api/v1/team/employees/:id
func (h *TeamHandler) UpdateEmployee(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的成员 ID")
		return
	}

	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.teamService.UpdateEmployee(companyID, id, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
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

// DeleteManager 删除经理，名下还有员工时返回冲突
// DELETE /api/v1/team/managers/:id
func (h *TeamHandler) DeleteManager(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的成员 ID")
		return
	}

	if err := h.teamService.DeleteManager(companyID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrManagerHasEmployee):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// DeleteEmployee 删除员工
// DELETE /api/v1/team/employees/:id
func (h *TeamHandler) DeleteEmployee(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的成员 ID")
		return
	}

	if err := h.teamService.DeleteEmployee(companyID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
