package controller

import (
	"startup_academy_backend/internal/middleware"
	"startup_academy_backend/internal/service"
	"startup_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
	ProgressService  *service.ProgressService
}

func NewDashboardController(dashboardService *service.DashboardService, progressService *service.ProgressService) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
		ProgressService:  progressService,
	}
}

// @Summary 学习统计
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/me/stats [get]
func (c *DashboardController) GetStats(ctx *gin.Context) {
	stats, err := c.ProgressService.GetStats(middleware.GetSession(ctx).UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 获取仪表盘数据
// @Description 学习统计、已报名课程进度与最近成就
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/me/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.DashboardService.GetUserDashboard(ctx.Request.Context(), middleware.GetSession(ctx).UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}
