package controller

import (
	"net/http"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/llm"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
	AI    *llm.Holder
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, ai *llm.Holder) *HealthController {
	return &HealthController{DB: db, Redis: rdb, AI: ai}
}

// @Summary 健康检查
// @Description 检查服务状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{"database": "up"}

	if c.Redis == nil {
		components["redis"] = "disabled"
	} else if err := c.Redis.Ping(ctx.Request.Context()).Err(); err != nil {
		components["redis"] = "down"
	} else {
		components["redis"] = "up"
	}

	// AI 离线时各接口返回兜底数据，不影响整体状态
	if c.AI == nil || c.AI.Current() == nil {
		components["ai"] = "offline"
	} else {
		components["ai"] = c.AI.Current().ModelID()
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
