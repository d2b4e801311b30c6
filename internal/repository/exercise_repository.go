package repository

import (
	"startup_academy_backend/internal/model"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExerciseRepository struct {
	DB *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{DB: db}
}

// FindInstance 连同模板一起加载
func (r *ExerciseRepository) FindInstance(id string) (*model.ExerciseInstance, error) {
	var instance model.ExerciseInstance
	err := r.DB.Preload("Template").Where("id = ?", id).First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *ExerciseRepository) FindInstanceByLesson(lessonID string) (*model.ExerciseInstance, error) {
	var instance model.ExerciseInstance
	err := r.DB.Preload("Template").Where("lesson_id = ?", lessonID).First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *ExerciseRepository) CreateTemplate(t *model.ExerciseTemplate) error {
	return r.DB.Create(t).Error
}

func (r *ExerciseRepository) CreateInstance(i *model.ExerciseInstance) error {
	return r.DB.Omit("Template").Create(i).Error
}

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) FindByID(id string) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Latest 用户在该练习上最新的一条记录
func (r *SubmissionRepository) Latest(userID, instanceID string) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Where("user_id = ? AND exercise_instance_id = ?", userID, instanceID).
		Order("created_at desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindDraft submitted_at 为空的记录即草稿
func (r *SubmissionRepository) FindDraft(userID, instanceID string) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Where("user_id = ? AND exercise_instance_id = ? AND submitted_at IS NULL", userID, instanceID).
		Order("created_at desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) FindSubmitted(userID, instanceID string) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.Where("user_id = ? AND exercise_instance_id = ? AND submitted_at IS NOT NULL", userID, instanceID).
		Order("submitted_at desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) Create(s *model.Submission) error {
	return r.DB.Create(s).Error
}

func (r *SubmissionRepository) Save(s *model.Submission) error {
	return r.DB.Save(s).Error
}

// SaveEvaluation 写回评估结果。submitted → evaluated 是条件更新，first 为 true 表示本次完成了状态迁移；
// 已评估的记录只覆盖结果
func (r *SubmissionRepository) SaveEvaluation(id string, feedback datatypes.JSON, score int, at time.Time) (first bool, err error) {
	fields := map[string]interface{}{
		"ai_feedback":  feedback,
		"score":        score,
		"status":       model.SubmissionEvaluated,
		"evaluated_at": at,
	}
	result := r.DB.Model(&model.Submission{}).
		Where("id = ? AND status = ?", id, model.SubmissionSubmitted).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	return false, r.DB.Model(&model.Submission{}).
		Where("id = ? AND status = ?", id, model.SubmissionEvaluated).
		Updates(fields).Error
}

// ListStaleSubmitted 提交后超过 olderThan 仍未评估的记录
func (r *SubmissionRepository) ListStaleSubmitted(olderThan time.Time, limit int) ([]model.Submission, error) {
	var list []model.Submission
	err := r.DB.Where("status = ? AND submitted_at < ?", model.SubmissionSubmitted, olderThan).
		Order("submitted_at asc").
		Limit(limit).
		Find(&list).Error
	return list, err
}
