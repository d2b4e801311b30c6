package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"startup_academy_backend/internal/exercise"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/repository"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EvaluationQueue 提交后的异步评估入口
type EvaluationQueue interface {
	Enqueue(job EvaluationJob) bool
}

type ExerciseService struct {
	ExerciseRepo   *repository.ExerciseRepository
	SubmissionRepo *repository.SubmissionRepository
	Queue          EvaluationQueue
}

func NewExerciseService(exerciseRepo *repository.ExerciseRepository, submissionRepo *repository.SubmissionRepository) *ExerciseService {
	return &ExerciseService{
		ExerciseRepo:   exerciseRepo,
		SubmissionRepo: submissionRepo,
	}
}

// ExercisePage 练习页：模板、渲染后的表单以及最近一次作答
type ExercisePage struct {
	Instance   *model.ExerciseInstance `json:"instance"`
	Form       exercise.View           `json:"form"`
	Submission *model.Submission       `json:"submission,omitempty"`
	Evaluation *model.Evaluation       `json:"evaluation,omitempty"`
}

// DraftRequest 草稿保存，responseData 整体替换，ops 在当前草稿上逐条应用
type DraftRequest struct {
	ResponseData json.RawMessage `json:"responseData"`
	Ops          []exercise.Op   `json:"ops"`
}

type SubmitRequest struct {
	ResponseData json.RawMessage `json:"responseData"`
}

// ValidationError 提交校验失败的字段列表
type ValidationError struct {
	Fields []exercise.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d field(s) incomplete", len(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return util.ErrValidation
}

func (s *ExerciseService) loadInstance(instanceID string) (*model.ExerciseInstance, exercise.Schema, error) {
	instance, err := s.ExerciseRepo.FindInstance(instanceID)
	if err != nil {
		return nil, nil, notFoundAs(err, util.ErrExerciseNotFound)
	}
	if instance.Template.ID == "" {
		return nil, nil, util.ErrTemplateNotFound
	}
	schema, err := exercise.ParseSchema(instance.Template.TemplateConfig)
	if err != nil {
		logger.Log.Error("Invalid exercise template config",
			zap.String("templateID", instance.Template.ID),
			zap.Error(err))
		return nil, nil, err
	}
	return instance, schema, nil
}

func answersOf(sub *model.Submission) (exercise.Answers, error) {
	if sub == nil {
		return nil, nil
	}
	return exercise.ParseAnswers(sub.ResponseData)
}

// GetExercise 最近一次记录已提交时表单只读
func (s *ExerciseService) GetExercise(userID, instanceID string) (*ExercisePage, error) {
	instance, schema, err := s.loadInstance(instanceID)
	if err != nil {
		return nil, err
	}

	latest, err := s.SubmissionRepo.Latest(userID, instanceID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		latest = nil
	}

	answers, err := answersOf(latest)
	if err != nil {
		return nil, err
	}
	readOnly := latest != nil && latest.SubmittedAt != nil

	page := &ExercisePage{
		Instance:   instance,
		Form:       exercise.Render(exercise.NewForm(schema, answers, readOnly)),
		Submission: latest,
	}
	if latest != nil {
		page.Evaluation = latest.Evaluation()
	}
	return page, nil
}

// SaveDraft 没有未提交草稿时新建一条，已提交的记录保持不变
func (s *ExerciseService) SaveDraft(session model.Session, instanceID string, req DraftRequest) (*model.Submission, error) {
	_, schema, err := s.loadInstance(instanceID)
	if err != nil {
		return nil, err
	}

	draft, err := s.SubmissionRepo.FindDraft(session.UserID, instanceID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		draft = &model.Submission{
			UserID:             session.UserID,
			ExerciseInstanceID: instanceID,
			Status:             model.SubmissionDraft,
		}
	}

	answers, err := answersOf(draft)
	if err != nil {
		return nil, err
	}
	if len(req.ResponseData) > 0 {
		answers, err = exercise.ParseAnswers(req.ResponseData)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", util.ErrValidation, err)
		}
	}

	form := exercise.NewForm(schema, answers, false)
	for _, op := range req.Ops {
		if err := form.Apply(op); err != nil {
			return nil, fmt.Errorf("%w: %v", util.ErrValidation, err)
		}
	}

	data, err := json.Marshal(form.Values())
	if err != nil {
		return nil, err
	}
	draft.ResponseData = datatypes.JSON(data)

	if draft.ID == "" {
		err = s.SubmissionRepo.Create(draft)
	} else {
		err = s.SubmissionRepo.Save(draft)
	}
	if err != nil {
		logger.Log.Error("Failed to save exercise draft",
			zap.String("userID", session.UserID),
			zap.String("instanceID", instanceID),
			zap.Error(err))
		return nil, err
	}
	return draft, nil
}

// Submit 校验通过后将草稿置为已提交并进入评估队列
func (s *ExerciseService) Submit(session model.Session, instanceID string, req SubmitRequest) (*model.Submission, error) {
	_, schema, err := s.loadInstance(instanceID)
	if err != nil {
		return nil, err
	}

	draft, err := s.SubmissionRepo.FindDraft(session.UserID, instanceID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, subErr := s.SubmissionRepo.FindSubmitted(session.UserID, instanceID); subErr == nil {
			return nil, util.ErrAlreadySubmitted
		} else if !errors.Is(subErr, gorm.ErrRecordNotFound) {
			return nil, subErr
		}
		draft = &model.Submission{
			UserID:             session.UserID,
			ExerciseInstanceID: instanceID,
			Status:             model.SubmissionDraft,
		}
	}

	answers, err := answersOf(draft)
	if err != nil {
		return nil, err
	}
	if len(req.ResponseData) > 0 {
		answers, err = exercise.ParseAnswers(req.ResponseData)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", util.ErrValidation, err)
		}
	}

	if fieldErrs := exercise.Validate(schema, answers); len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	data, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	draft.ResponseData = datatypes.JSON(data)
	draft.Status = model.SubmissionSubmitted
	draft.SubmittedAt = &now

	if draft.ID == "" {
		err = s.SubmissionRepo.Create(draft)
	} else {
		err = s.SubmissionRepo.Save(draft)
	}
	if err != nil {
		logger.Log.Error("Failed to submit exercise",
			zap.String("userID", session.UserID),
			zap.String("instanceID", instanceID),
			zap.Error(err))
		return nil, err
	}

	if s.Queue != nil {
		s.Queue.Enqueue(EvaluationJob{SubmissionID: draft.ID, Session: session})
	}
	return draft, nil
}
