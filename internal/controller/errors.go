package controller

import (
	"errors"
	"startup_academy_backend/internal/service"
	"startup_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 将业务错误映射为统一响应
func respondError(ctx *gin.Context, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		util.ValidationFailed(ctx, "Please complete all required fields", validation.Fields)
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrExerciseNotFound),
		errors.Is(err, util.ErrSubmissionNotFound),
		errors.Is(err, util.ErrTemplateNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrNotEnrolled):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrValidation),
		errors.Is(err, util.ErrLessonNotInCourse),
		errors.Is(err, util.ErrInvalidLocalDate):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrAlreadySubmitted),
		errors.Is(err, util.ErrNotSubmitted):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
