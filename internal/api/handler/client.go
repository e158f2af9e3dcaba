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

type ClientHandler struct {
	clientService *service.ClientService
}

func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List 客户列表
// GET /api/v1/clients
func (h *ClientHandler) List(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	items, err := h.clientService.ListClients(companyID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, items)
}

// Create 创建客户
// POST /api/v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	client, err := h.clientService.CreateClient(companyID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessWithMessage(c, "创建成功", client)
}

// Update 更新客户
// PUT /api/v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的客户 ID")
		return
	}

	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.clientService.UpdateClient(companyID, id, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// Delete 删除客户，名下还有线索时返回冲突
// DELETE /api/v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的客户 ID")
		return
	}

	if err := h.clientService.DeleteClient(companyID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrClientHasLeads):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// ListJobs 职位列表
// GET /api/v1/jobs
func (h *ClientHandler) ListJobs(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	items, err := h.clientService.ListJobs(companyID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, items)
}

// CreateJob 创建职位
// POST /api/v1/jobs
func (h *ClientHandler) CreateJob(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	job, err := h.clientService.CreateJob(companyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "创建成功", job)
}

// UpdateJob 更新职位
// PUT /api/v1/jobs/:id
func (h *ClientHandler) UpdateJob(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的职位 ID")
		return
	}

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.clientService.UpdateJob(companyID, id, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// DeleteJob 删除职位，名下还有线索时返回冲突
// DELETE /api/v1/jobs/:id
func (h *ClientHandler) DeleteJob(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的职位 ID")
		return
	}

	if err := h.clientService.DeleteJob(companyID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrJobHasLeads):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}
