package repository

import (
	"startup_academy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

// CreateIfAbsent 依赖 (user_id, achievement_id) 唯一索引，重复插入返回 false
func (r *AchievementRepository) CreateIfAbsent(a *model.UserAchievement) (bool, error) {
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(a)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// 获取指定用户的所有成就
func (r *AchievementRepository) FindByUserID(userID string) ([]model.UserAchievement, error) {
	var list []model.UserAchievement
	err := r.DB.Where("user_id = ?", userID).Order("earned_at desc").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AchievementRepository) Recent(userID string, limit int) ([]model.UserAchievement, error) {
	var list []model.UserAchievement
	err := r.DB.Where("user_id = ?", userID).Order("earned_at desc").Limit(limit).Find(&list).Error
	return list, err
}

func (r *AchievementRepository) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserAchievement{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
