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

type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Submit 对通话发起分析
// POST /api/v1/analyses
func (h *AnalysisHandler) Submit(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	userID, _ := middleware.GetUserID(c)

	var req dto.SubmitAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.analysisService.Submit(c.Request.Context(), companyID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCallNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAnalysisExists):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrAnalysisDisabled),
			errors.Is(err, service.ErrCallNotAnswered),
			errors.Is(err, service.ErrNoRecording):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "分析已发起", resp)
}

// Get 分析详情
// GET /api/v1/analyses/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的分析 ID")
		return
	}

	detail, err := h.analysisService.Get(companyID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnalysisNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.Success(c, detail)
}

// Status 轮询分析状态
// GET /api/v1/analyses/:id/status
func (h *AnalysisHandler) Status(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的分析 ID")
		return
	}

	status, err := h.analysisService.Status(companyID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnalysisNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.Success(c, status)
}

// Retry 重试失败的分析
// POST /api/v1/analyses/:id/retry
func (h *AnalysisHandler) Retry(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	userID, _ := middleware.GetUserID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的分析 ID")
		return
	}

	resp, err := h.analysisService.Retry(c.Request.Context(), companyID, userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnalysisNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAnalysisNotFailed):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "已重新发起", resp)
}

// Result 外部分析服务回调结果
// POST /api/v1/analyses/result
func (h *AnalysisHandler) Result(c *gin.Context) {
	var req dto.AnalysisResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.analysisService.HandleCallback(c.Request.Context(), &req); err != nil {
		switch {
		case errors.Is(err, service.ErrAnalysisNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.Success(c, nil)
}
