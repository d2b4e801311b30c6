package repository

import (
	"startup_academy_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Find(userID, courseID string) (*model.CourseProgress, error) {
	var progress model.CourseProgress
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// CreateIfAbsent 插入进度行，(user_id, course_id) 冲突时忽略；created 表示本次是否新建
func (r *ProgressRepository) CreateIfAbsent(userID, courseID string) (bool, error) {
	now := time.Now()
	progress := &model.CourseProgress{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []string{},
		StartedAt:        now,
		LastAccessedAt:   now,
	}
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(progress)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindOrCreate 先确保行存在再读取
func (r *ProgressRepository) FindOrCreate(userID, courseID string) (*model.CourseProgress, error) {
	if _, err := r.CreateIfAbsent(userID, courseID); err != nil {
		return nil, err
	}
	return r.Find(userID, courseID)
}

func (r *ProgressRepository) Save(progress *model.CourseProgress) error {
	return r.DB.Save(progress).Error
}

func (r *ProgressRepository) ListByUser(userID string) ([]model.CourseProgress, error) {
	var list []model.CourseProgress
	err := r.DB.Where("user_id = ?", userID).Order("last_accessed_at desc").Find(&list).Error
	return list, err
}
