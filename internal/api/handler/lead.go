package handler

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/leadcrm_go_server/internal/api/middleware"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pipeline"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/response"
	"github.com/qs3c/leadcrm_go_server/internal/service"
)

// 导入文件大小上限
const maxImportFileSize = 10 << 20

type LeadHandler struct {
	leadService   *service.LeadService
	importService *service.ImportService
}

func NewLeadHandler(leadService *service.LeadService, importService *service.ImportService) *LeadHandler {
	return &LeadHandler{
		leadService:   leadService,
		importService: importService,
	}
}

// List 线索列表
// GET /api/v1/leads?search=&status=&employee_id=&manager_id=&page=
func (h *LeadHandler) List(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	filters := pipeline.Filters{
		Search: c.Query("search"),
		Status: c.Query("status"),
	}
	if v := c.Query("employee_id"); v != "" {
		filters.EmployeeID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("manager_id"); v != "" {
		filters.ManagerID, _ = strconv.ParseInt(v, 10, 64)
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	resp, err := h.leadService.ListLeads(companyID, filters, page)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, resp)
}

// Create 创建线索
// POST /api/v1/leads
func (h *LeadHandler) Create(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var req dto.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	lead, err := h.leadService.CreateLead(companyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrGroupUnassigned):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "创建成功", lead)
}

// Update 更新线索
// PUT /api/v1/leads/:id
func (h *LeadHandler) Update(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的线索 ID")
		return
	}

	var req dto.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.leadService.UpdateLead(companyID, id, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrLeadNotFound), errors.Is(err, service.ErrGroupNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrGroupUnassigned):
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// Delete 删除线索
// DELETE /api/v1/leads/:id
func (h *LeadHandler) Delete(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的线索 ID")
		return
	}

	if err := h.leadService.DeleteLead(companyID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrLeadNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Assign 分配/改派线索
// POST /api/v1/leads/:id/assign
func (h *LeadHandler) Assign(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的线索 ID")
		return
	}

	var req dto.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := h.leadService.AssignLead(companyID, id, req.AssigneeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLeadNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAssigneeUnknown):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "分配成功", item)
}

// Unassign 收回线索
// POST /api/v1/leads/:id/unassign
func (h *LeadHandler) Unassign(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的线索 ID")
		return
	}

	if err := h.leadService.UnassignLead(companyID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrLeadNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "已收回", nil)
}

// Import 从 CSV 导入线索
// POST /api/v1/leads/import  (multipart, file + 可选 group_id)
func (h *LeadHandler) Import(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传 CSV 文件")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxImportFileSize))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	var groupID *int64
	if v := c.PostForm("group_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.ParamError(c, "无效的组 ID")
			return
		}
		groupID = &id
	}

	resp, err := h.importService.ImportLeads(companyID, groupID, bytes.NewReader(raw), raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrGroupUnassigned):
			response.ConflictError(c, err.Error())
		case errors.Is(err, service.ErrImportEmpty),
			errors.Is(err, service.ErrImportNoHeader),
			errors.Is(err, service.ErrImportTooLarge):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "导入完成", resp)
}

// ListGroups 线索组列表
// GET /api/v1/lead-groups
func (h *LeadHandler) ListGroups(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	items, err := h.leadService.ListGroups(companyID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, items)
}

// CreateGroup 创建线索组
// POST /api/v1/lead-groups
func (h *LeadHandler) CreateGroup(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	group, err := h.leadService.CreateGroup(companyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssigneeUnknown):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "创建成功", group)
}

// AssignGroup 给组指派经理
// POST /api/v1/lead-groups/:id/assign
func (h *LeadHandler) AssignGroup(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的组 ID")
		return
	}

	var req struct {
		ManagerID int64 `json:"manager_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.leadService.AssignGroup(companyID, id, req.ManagerID); err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAssigneeUnknown):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "指派成功", nil)
}

// DeleteGroup 删除线索组，组内线索级联删除
// DELETE /api/v1/lead-groups/:id
func (h *LeadHandler) DeleteGroup(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的组 ID")
		return
	}

	resp, err := h.leadService.DeleteGroup(companyID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "删除成功", resp)
}
