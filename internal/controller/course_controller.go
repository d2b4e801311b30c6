package controller

import (
	"startup_academy_backend/internal/middleware"
	"startup_academy_backend/internal/service"
	"startup_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// @Summary 课程目录
// @Description 获取已发布课程，按创建时间倒序，可按创业阶段过滤
// @Tags 课程
// @Produce json
// @Param stage query string false "创业阶段" Enums(idea, pre-launch, 0-10k, 10k-100k, scaling)
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListCatalog(ctx.Request.Context(), ctx.Query("stage"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 课程详情
// @Description 课程信息及按顺序排列的课时
// @Tags 课程
// @Produce json
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	userID := ""
	if user := util.GetUserFromContext(ctx); user != nil {
		userID = user.UserID()
	}

	detail, err := c.CourseService.GetCourseDetail(ctx.Param("slug"), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 报名课程
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response
// @Router /api/courses/{slug}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	progress, err := c.CourseService.Enroll(ctx.Request.Context(), middleware.GetSession(ctx), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 课程进度
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/progress [get]
func (c *CourseController) GetProgress(ctx *gin.Context) {
	progress, err := c.CourseService.GetProgress(middleware.GetSession(ctx), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 课时内容
// @Description 课时、资料地址与练习，同时记录为当前课时
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param order path int true "课时序号"
// @Param X-Local-Date header string false "本地日期 YYYY-MM-DD"
// @Success 200 {object} util.Response
// @Router /api/courses/{slug}/lessons/{order} [get]
func (c *CourseController) GetLesson(ctx *gin.Context) {
	order := util.ParsePositiveInt(ctx.Param("order"))
	if order == 0 {
		util.BadRequest(ctx, "Invalid lesson order")
		return
	}

	view, err := c.CourseService.GetLessonView(ctx.Request.Context(), middleware.GetSession(ctx), ctx.Param("slug"), order)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 完成课时
// @Description 记录课时完成，更新完成百分比、积分、等级与连续学习天数
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param order path int true "课时序号"
// @Param X-Local-Date header string false "本地日期 YYYY-MM-DD"
// @Success 200 {object} util.Response
// @Router /api/courses/{slug}/lessons/{order}/complete [post]
func (c *CourseController) CompleteLesson(ctx *gin.Context) {
	order := util.ParsePositiveInt(ctx.Param("order"))
	if order == 0 {
		util.BadRequest(ctx, "Invalid lesson order")
		return
	}

	result, err := c.CourseService.CompleteLesson(middleware.GetSession(ctx), ctx.Param("slug"), order)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
