package handler

import (
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/leadcrm_go_server/internal/api/middleware"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/response"
	"github.com/qs3c/leadcrm_go_server/internal/service"
)

// 录音文件大小上限
const maxRecordingFileSize = 50 << 20

type CallHandler struct {
	callService *service.CallService
}

func NewCallHandler(callService *service.CallService) *CallHandler {
	return &CallHandler{callService: callService}
}

// List 通话列表
// GET /api/v1/calls
func (h *CallHandler) List(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var q dto.CallListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.callService.ListCalls(companyID, &q)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, resp)
}

// Create 记录通话
// POST /api/v1/calls
func (h *CallHandler) Create(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	userID, _ := middleware.GetUserID(c)

	var req dto.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	call, err := h.callService.CreateCall(companyID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLeadNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "记录成功", call)
}

// Update 更新通话记录
// PUT /api/v1/calls/:id
func (h *CallHandler) Update(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的通话 ID")
		return
	}

	var req dto.UpdateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.callService.UpdateCall(companyID, id, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrCallNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// Delete 删除通话记录
// DELETE /api/v1/calls/:id
func (h *CallHandler) Delete(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的通话 ID")
		return
	}

	if err := h.callService.DeleteCall(companyID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrCallNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// UploadRecording 上传通话录音
// POST /api/v1/calls/:id/recording  (multipart, file)
func (h *CallHandler) UploadRecording(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的通话 ID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传录音文件")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxRecordingFileSize))
	if err != nil {
		response.ServerError(c, "")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	url, err := h.callService.UploadRecording(companyID, id, raw, ext)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCallNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrStorageUnavailable):
			response.ServerError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "上传成功", gin.H{"url": url})
}

// RecordingURL 录音播放地址
// GET /api/v1/calls/:id/recording-url
func (h *CallHandler) RecordingURL(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的通话 ID")
		return
	}

	url, err := h.callService.RecordingPlaybackURL(companyID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCallNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNoRecording):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.Success(c, gin.H{"url": url})
}

// ListByLead 某条线索的通话历史
// GET /api/v1/leads/:id/calls
func (h *CallHandler) ListByLead(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	leadID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的线索 ID")
		return
	}

	items, err := h.callService.ListLeadCalls(companyID, leadID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLeadNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.Success(c, items)
}
