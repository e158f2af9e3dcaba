package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/leadcrm_go_server/internal/api/middleware"
	"github.com/qs3c/leadcrm_go_server/internal/model/dto"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/response"
	"github.com/qs3c/leadcrm_go_server/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary 仪表盘汇总
// GET /api/v1/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	var q dto.DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.dashboardService.Summary(companyID, &q)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, resp)
}
