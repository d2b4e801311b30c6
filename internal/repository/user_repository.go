package repository

import (
	"startup_academy_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureUser 首次访问时按认证服务的 subject 建档，已存在则不动
func (r *UserRepository) EnsureUser(id, email string) error {
	user := &model.User{
		UUIDBase:         model.UUIDBase{ID: id},
		Email:            email,
		SubscriptionTier: model.TierFree,
		CurrentLevel:     1,
	}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(user).Error
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// UpdateFields 只更新给定列，避免覆盖并发写入的其他统计字段
func (r *UserRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// AddPoints 原子累加积分并返回累加后的总分
func (r *UserRepository) AddPoints(id string, amount int) (int, error) {
	if err := r.DB.Model(&model.User{}).
		Where("id = ?", id).
		Update("total_points", gorm.Expr("total_points + ?", amount)).
		Error; err != nil {
		return 0, err
	}

	var total int
	err := r.DB.Model(&model.User{}).Where("id = ?", id).Select("total_points").Scan(&total).Error
	return total, err
}

func (r *UserRepository) Increment(id, column string, delta int) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + ?", delta)).
		Error
}

func (r *UserRepository) UpdateLastSeen(id string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Update("last_seen_at", time.Now()).Error
}
