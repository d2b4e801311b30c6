package model

import (
	"time"

	"gorm.io/datatypes"
)

type AchievementType string

const (
	AchievementStreak     AchievementType = "streak"
	AchievementCompetency AchievementType = "competency"
	AchievementMilestone  AchievementType = "milestone"
)

// UserAchievement (user_id, achievement_id) 唯一，重复插入由数据库忽略
type UserAchievement struct {
	UUIDBase
	UserID          string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_achievement" json:"userId"`
	AchievementID   string            `gorm:"size:100;not null;uniqueIndex:idx_user_achievement" json:"achievementId"`
	AchievementType AchievementType   `gorm:"size:20" json:"achievementType"`
	Title           string            `gorm:"size:255" json:"title"`
	Description     string            `gorm:"size:512" json:"description"`
	Metadata        datatypes.JSONMap `json:"metadata"`
	EarnedAt        time.Time         `json:"earnedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

// AchievementDefinition 成就目录项
type AchievementDefinition struct {
	ID          string          `json:"id"`
	Type        AchievementType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
}
