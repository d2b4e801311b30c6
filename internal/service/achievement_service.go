package service

import (
	"fmt"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/repository"
	"startup_academy_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
)

// 成就目录，前端成就墙按此顺序展示
var AchievementCatalog = []model.AchievementDefinition{
	{ID: "first-lesson", Type: model.AchievementMilestone, Title: "First Steps", Description: "Complete your first lesson"},
	{ID: "first-exercise", Type: model.AchievementMilestone, Title: "Getting Started", Description: "Submit your first exercise"},
	{ID: "first-course", Type: model.AchievementMilestone, Title: "Course Complete", Description: "Finish your first course"},
	{ID: "7-day-streak", Type: model.AchievementStreak, Title: "7-Day Streak", Description: "Learn something every day for a week"},
	{ID: "30-day-streak", Type: model.AchievementStreak, Title: "30-Day Streak", Description: "Learn something every day for a month"},
	{ID: "SC1-master", Type: model.AchievementCompetency, Title: "Market Validation Master", Description: "Achieved 90+ score in SC1 (Market Validation)"},
	{ID: "SC2-master", Type: model.AchievementCompetency, Title: "Product Strategy Master", Description: "Achieved 90+ score in SC2 (Product Strategy)"},
	{ID: "SC3-master", Type: model.AchievementCompetency, Title: "Customer Development Master", Description: "Achieved 90+ score in SC3 (Customer Development)"},
	{ID: "100-points", Type: model.AchievementMilestone, Title: "Level Up", Description: "Reach 100 total points"},
	{ID: "500-points", Type: model.AchievementMilestone, Title: "Rising Star", Description: "Reach 500 total points"},
	{ID: "1000-points", Type: model.AchievementMilestone, Title: "Power User", Description: "Reach 1000 total points"},
}

// 积分里程碑
var pointMilestones = []int{100, 500, 1000}

// 连续学习天数里程碑
var streakMilestones = []int{7, 30}

const masteryThreshold = 90

func StreakAchievementID(days int) string {
	return fmt.Sprintf("%d-day-streak", days)
}

func CompetencyAchievementID(competency string) string {
	return competency + "-master"
}

func PointsAchievementID(points int) string {
	return fmt.Sprintf("%d-points", points)
}

// streakDefinition 授予时写入的标题与描述
func streakDefinition(days int) model.AchievementDefinition {
	return model.AchievementDefinition{
		ID:          StreakAchievementID(days),
		Type:        model.AchievementStreak,
		Title:       fmt.Sprintf("%d-Day Streak", days),
		Description: fmt.Sprintf("Learned something every day for %d days", days),
	}
}

func competencyDefinition(competency string) model.AchievementDefinition {
	return model.AchievementDefinition{
		ID:          CompetencyAchievementID(competency),
		Type:        model.AchievementCompetency,
		Title:       competency + " Master",
		Description: fmt.Sprintf("Achieved 90+ score in %s", competency),
	}
}

// LookupAchievement 目录中的定义；目录外的 "-master" 按能力成就生成
func LookupAchievement(id string) (model.AchievementDefinition, bool) {
	for _, def := range AchievementCatalog {
		if def.ID == id {
			return def, true
		}
	}
	if comp, ok := strings.CutSuffix(id, "-master"); ok && comp != "" {
		return competencyDefinition(comp), true
	}
	return model.AchievementDefinition{}, false
}

type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
}

func NewAchievementService(achievementRepo *repository.AchievementRepository) *AchievementService {
	return &AchievementService{AchievementRepo: achievementRepo}
}

// Award 幂等授予。created 为 false 表示用户已拥有该成就
func (s *AchievementService) Award(userID string, def model.AchievementDefinition, metadata map[string]interface{}) (bool, error) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	achievement := &model.UserAchievement{
		UserID:          userID,
		AchievementID:   def.ID,
		AchievementType: def.Type,
		Title:           def.Title,
		Description:     def.Description,
		Metadata:        metadata,
		EarnedAt:        time.Now(),
	}

	created, err := s.AchievementRepo.CreateIfAbsent(achievement)
	if err != nil {
		logger.Log.Error("Failed to award achievement",
			zap.String("userID", userID),
			zap.String("achievementID", def.ID),
			zap.Error(err))
		return false, err
	}
	if created {
		logger.Log.Info("Achievement unlocked",
			zap.String("userID", userID),
			zap.String("achievementID", def.ID))
	}
	return created, nil
}

func (s *AchievementService) GetUserAchievements(userID string) ([]model.UserAchievement, error) {
	return s.AchievementRepo.FindByUserID(userID)
}

func (s *AchievementService) Catalog() []model.AchievementDefinition {
	return AchievementCatalog
}
