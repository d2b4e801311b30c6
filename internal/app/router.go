package app

import (
	"startup_academy_backend/internal/middleware"
	"startup_academy_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	router.Use(middleware.ConfigMiddleware(a.CurrentConfig))

	router.GET("/health", c.health.HealthCheck)
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(
		middleware.AuthMiddleware(),
		middleware.ActivityMiddleware(repos.user),
		middleware.SessionMiddleware(),
	)
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerFunctionRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		// 课程目录，登录用户的课程详情附带进度
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:slug", middleware.TryAuthMiddleware(), c.course.GetCourse)

		public.GET("/achievements/catalog", c.achievement.GetCatalog)
	}
}

func (a *App) registerLearnerRoutes(group *gin.RouterGroup, c *controllers) {
	me := group.Group("/me")
	{
		me.GET("/stats", c.dashboard.GetStats)
		me.GET("/dashboard", c.dashboard.GetDashboard)
		me.GET("/achievements", c.achievement.GetUserAchievements)
	}

	courses := group.Group("/courses/:slug")
	{
		courses.POST("/enroll", c.course.Enroll)
		courses.GET("/progress", c.course.GetProgress)
		courses.GET("/lessons/:order", c.course.GetLesson)
		courses.POST("/lessons/:order/complete", c.course.CompleteLesson)
	}

	exercises := group.Group("/exercises/:instanceId")
	{
		exercises.GET("", c.exercise.GetExercise)
		exercises.PUT("/draft", c.exercise.SaveDraft)
		exercises.POST("/submit", c.exercise.Submit)
	}
}

// registerFunctionRoutes AI 接口
func (a *App) registerFunctionRoutes(group *gin.RouterGroup, c *controllers) {
	functions := group.Group("/functions")
	{
		functions.POST("/ai-coach-chat", c.function.CoachChat)
		functions.POST("/evaluate-exercise", c.function.EvaluateExercise)
		functions.POST("/social-listening", c.function.SocialListening)
	}
}
