package middleware

import (
	"startup_academy_backend/internal/config"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 校验托管认证服务签发的 Bearer token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		cfg := c.MustGet("config").(*config.Config)
		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT parse failed", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// TryAuthMiddleware 可选认证：token 有效时写入用户，无效或缺失时按游客继续
func TryAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString != "" {
			cfg := c.MustGet("config").(*config.Config)
			if claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret); err == nil {
				c.Set(util.ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

// ConfigMiddleware 每个请求注入当前配置，热更新后立即生效
func ConfigMiddleware(current func() *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("config", current())
		c.Next()
	}
}

type UserActivityRepo interface {
	EnsureUser(id, email string) error
	UpdateLastSeen(userID string) error
}

// ActivityMiddleware 首次访问时建档，并异步刷新最近访问时间
func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			if err := repo.EnsureUser(claims.UserID(), claims.Email); err != nil {
				util.LogInternalError(c, err)
				c.Abort()
				return
			}
			// 异步更新，不阻塞主流程
			go func(id string) {
				if err := repo.UpdateLastSeen(id); err != nil {
					logger.Log.Warn("Failed to update last seen", zap.String("userID", id), zap.Error(err))
				}
			}(claims.UserID())
		}
		c.Next()
	}
}

// SessionMiddleware 组装进度操作所需的 Session，本地日期取自 X-Local-Date，缺省为服务器日期
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		today := c.GetHeader(util.LocalDateHeader)
		if today == "" {
			today = util.Today()
		} else if _, err := util.ParseLocalDate(today); err != nil {
			util.BadRequest(c, err.Error())
			c.Abort()
			return
		}

		c.Set(util.ContextSessionKey, model.Session{
			UserID: claims.UserID(),
			Email:  claims.Email,
			Today:  today,
		})
		c.Next()
	}
}

// GetSession SessionMiddleware 之后可用
func GetSession(c *gin.Context) model.Session {
	if v, ok := c.Get(util.ContextSessionKey); ok {
		if s, ok := v.(model.Session); ok {
			return s
		}
	}
	return model.Session{}
}
