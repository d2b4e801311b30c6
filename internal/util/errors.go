package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrExerciseNotFound    = errors.New("exercise instance not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrTemplateNotFound    = errors.New("exercise template not found")
	ErrNotEnrolled         = errors.New("not enrolled in course")
	ErrLessonNotInCourse   = errors.New("lesson does not belong to course")
	ErrAlreadySubmitted    = errors.New("exercise already submitted")
	ErrValidation          = errors.New("validation failed")
	ErrNotSubmitted        = errors.New("submission has not been submitted")
	ErrInvalidLocalDate    = errors.New("invalid local date, expected YYYY-MM-DD")
	ErrTopicRequired       = errors.New("Topic and platforms are required")
	ErrEvaluationQueueFull = errors.New("evaluation queue is full")
)
