package controller

import (
	"startup_academy_backend/internal/middleware"
	"startup_academy_backend/internal/service"
	"startup_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary 成就目录
// @Description 所有可解锁的成就
// @Tags 成就系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/achievements/catalog [get]
func (c *AchievementController) GetCatalog(ctx *gin.Context) {
	util.Success(ctx, c.AchievementService.Catalog())
}

// @Summary 获取用户成就
// @Description 已解锁的成就，按获得时间倒序
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/me/achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	session := middleware.GetSession(ctx)
	achievements, err := c.AchievementService.GetUserAchievements(session.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}
