package controller

import (
	"net/http"
	"startup_academy_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// FunctionController AI 接口，响应体沿用前端约定的格式而非统一响应结构
type FunctionController struct {
	CoachingService        *service.CoachingService
	EvaluationService      *service.EvaluationService
	SocialListeningService *service.SocialListeningService
}

func NewFunctionController(
	coachingService *service.CoachingService,
	evaluationService *service.EvaluationService,
	socialListeningService *service.SocialListeningService,
) *FunctionController {
	return &FunctionController{
		CoachingService:        coachingService,
		EvaluationService:      evaluationService,
		SocialListeningService: socialListeningService,
	}
}

type EvaluateRequest struct {
	SubmissionID string `json:"submissionId"`
}

// @Summary AI 教练对话
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CoachingRequest true "对话内容"
// @Success 200 {object} model.CoachingReply
// @Router /api/functions/ai-coach-chat [post]
func (c *FunctionController) CoachChat(ctx *gin.Context) {
	var req service.CoachingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	reply, err := c.CoachingService.Coach(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"success":        true,
		"message":        reply.Message,
		"probeQuestions": reply.ProbeQuestions,
		"encouragement":  reply.Encouragement,
	}
	if len(reply.Hints) > 0 {
		resp["hints"] = reply.Hints
	}
	ctx.JSON(http.StatusOK, resp)
}

// @Summary AI 评估练习
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EvaluateRequest true "提交 ID"
// @Success 200 {object} model.Evaluation
// @Router /api/functions/evaluate-exercise [post]
func (c *FunctionController) EvaluateExercise(ctx *gin.Context) {
	var req EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	evaluation, err := c.EvaluationService.Evaluate(ctx.Request.Context(), req.SubmissionID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "evaluation": evaluation})
}

// @Summary 社交聆听分析
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SocialListeningRequest true "主题与平台"
// @Success 200 {object} model.MarketAnalysis
// @Router /api/functions/social-listening [post]
func (c *FunctionController) SocialListening(ctx *gin.Context) {
	var req service.SocialListeningRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	analysis, err := c.SocialListeningService.Analyze(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "analysis": analysis})
}
