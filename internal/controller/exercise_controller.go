package controller

import (
	"startup_academy_backend/internal/middleware"
	"startup_academy_backend/internal/service"
	"startup_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExerciseController struct {
	ExerciseService *service.ExerciseService
}

func NewExerciseController(exerciseService *service.ExerciseService) *ExerciseController {
	return &ExerciseController{ExerciseService: exerciseService}
}

// @Summary 练习详情
// @Description 练习模板、渲染后的表单以及最近一次作答和评估
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param instanceId path string true "练习 ID"
// @Success 200 {object} util.Response
// @Router /api/exercises/{instanceId} [get]
func (c *ExerciseController) GetExercise(ctx *gin.Context) {
	session := middleware.GetSession(ctx)
	page, err := c.ExerciseService.GetExercise(session.UserID, ctx.Param("instanceId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// @Summary 保存草稿
// @Description responseData 整体替换草稿，ops 按顺序修改草稿中的字段
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param instanceId path string true "练习 ID"
// @Param request body service.DraftRequest true "草稿内容"
// @Success 200 {object} util.Response
// @Router /api/exercises/{instanceId}/draft [put]
func (c *ExerciseController) SaveDraft(ctx *gin.Context) {
	var req service.DraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	draft, err := c.ExerciseService.SaveDraft(middleware.GetSession(ctx), ctx.Param("instanceId"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, draft)
}

// @Summary 提交练习
// @Description 校验必填字段后提交，评估在后台进行
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param instanceId path string true "练习 ID"
// @Param request body service.SubmitRequest false "作答内容，缺省使用已保存草稿"
// @Success 202 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/exercises/{instanceId}/submit [post]
func (c *ExerciseController) Submit(ctx *gin.Context) {
	var req service.SubmitRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	submission, err := c.ExerciseService.Submit(middleware.GetSession(ctx), ctx.Param("instanceId"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Accepted(ctx, submission)
}
