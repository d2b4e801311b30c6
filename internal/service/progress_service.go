package service

import (
	"errors"
	"math"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/repository"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LessonPoints   = 5
	CoursePoints   = 50
	PointsPerLevel = 100
)

type ProgressService struct {
	DB                 *gorm.DB
	UserRepo           *repository.UserRepository
	CourseRepo         *repository.CourseRepository
	LessonRepo         *repository.LessonRepository
	ProgressRepo       *repository.ProgressRepository
	AchievementService *AchievementService
}

func NewProgressService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	progressRepo *repository.ProgressRepository,
	achievementService *AchievementService,
) *ProgressService {
	return &ProgressService{
		DB:                 db,
		UserRepo:           userRepo,
		CourseRepo:         courseRepo,
		LessonRepo:         lessonRepo,
		ProgressRepo:       progressRepo,
		AchievementService: achievementService,
	}
}

// PointsResult 加分后的积分、等级以及新解锁的积分成就
type PointsResult struct {
	TotalPoints     int
	CurrentLevel    int
	NewAchievements []string
}

func LevelForPoints(total int) int {
	return total/PointsPerLevel + 1
}

func CompletionPercentage(completed, total int64) int {
	if total < 1 {
		total = 1
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

func today(session model.Session) string {
	if session.Today == "" {
		return util.Today()
	}
	return session.Today
}

func (s *ProgressService) findUser(userID string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrUserNotFound)
	}
	return user, nil
}

// StartCourse 报名课程：写入用户的已报名列表并创建进度行
func (s *ProgressService) StartCourse(session model.Session, courseID string) (*model.CourseProgress, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		return nil, notFoundAs(err, util.ErrCourseNotFound)
	}

	user, err := s.findUser(session.UserID)
	if err != nil {
		return nil, err
	}

	if !user.IsEnrolled(courseID) {
		enrolled := append(user.EnrolledCourses, courseID)
		if err := s.UserRepo.UpdateFields(user.ID, map[string]interface{}{
			"enrolled_courses": datatypes.JSONSlice[string](enrolled),
		}); err != nil {
			logger.Log.Error("Failed to enroll user",
				zap.String("userID", user.ID),
				zap.String("courseID", courseID),
				zap.Error(err))
			return nil, err
		}
	}

	created, err := s.ProgressRepo.CreateIfAbsent(session.UserID, courseID)
	if err != nil {
		logger.Log.Error("Failed to create course progress",
			zap.String("userID", session.UserID),
			zap.String("courseID", courseID),
			zap.Error(err))
		return nil, err
	}
	if created {
		if err := s.CourseRepo.IncrementEnrolled(courseID); err != nil {
			logger.Log.Warn("Failed to increment enrolled students", zap.String("courseID", courseID), zap.Error(err))
		}
	}

	return s.ProgressRepo.Find(session.UserID, courseID)
}

// ensureProgress 进度行不存在时按报名流程创建
func (s *ProgressService) ensureProgress(session model.Session, courseID string) (*model.CourseProgress, error) {
	progress, err := s.ProgressRepo.Find(session.UserID, courseID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.StartCourse(session, courseID)
}

func (s *ProgressService) GetCourseProgress(userID, courseID string) (*model.CourseProgress, error) {
	progress, err := s.ProgressRepo.Find(userID, courseID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrNotEnrolled)
	}
	return progress, nil
}

// MarkLessonComplete 完成课时。重复完成不加分、不改百分比
func (s *ProgressService) MarkLessonComplete(session model.Session, courseID, lessonID string) (*model.CompletionResult, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLessonNotFound)
	}
	if lesson.CourseID != courseID {
		return nil, util.ErrLessonNotInCourse
	}

	progress, err := s.ensureProgress(session, courseID)
	if err != nil {
		return nil, err
	}

	if progress.HasLesson(lessonID) {
		user, err := s.findUser(session.UserID)
		if err != nil {
			return nil, err
		}
		return &model.CompletionResult{
			AlreadyCompleted:     true,
			CompletionPercentage: progress.CompletionPercentage,
			CourseCompleted:      progress.CompletedAt != nil,
			TotalPoints:          user.TotalPoints,
			CurrentLevel:         user.CurrentLevel,
		}, nil
	}

	lessonCount, err := s.LessonRepo.CountByCourse(courseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	progress.CompletedLessons = append(progress.CompletedLessons, lessonID)
	progress.CompletionPercentage = CompletionPercentage(int64(len(progress.CompletedLessons)), lessonCount)
	progress.LastAccessedAt = now
	progress.TimeSpentMinutes += lesson.EstimatedMinutes

	courseCompleted := progress.CompletionPercentage >= 100 && progress.CompletedAt == nil
	if courseCompleted {
		progress.CompletedAt = &now
	}

	pointsAwarded := LessonPoints
	if courseCompleted {
		pointsAwarded += CoursePoints
	}

	// 进度、已完成课时、积分与等级同一事务写入
	var firstLesson bool
	var total int
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewProgressRepository(tx).Save(progress); err != nil {
			return err
		}

		users := repository.NewUserRepository(tx)
		user, err := users.FindByID(session.UserID)
		if err != nil {
			return notFoundAs(err, util.ErrUserNotFound)
		}
		firstLesson = len(user.CompletedLessons) == 0
		if !user.HasCompletedLesson(lessonID) {
			completed := append(user.CompletedLessons, lessonID)
			if err := users.UpdateFields(user.ID, map[string]interface{}{
				"completed_lessons": datatypes.JSONSlice[string](completed),
			}); err != nil {
				return err
			}
		}

		total, err = users.AddPoints(user.ID, pointsAwarded)
		if err != nil {
			return err
		}
		if courseCompleted {
			if err := users.Increment(user.ID, "courses_completed", 1); err != nil {
				return err
			}
		}
		return users.UpdateFields(user.ID, map[string]interface{}{
			"current_level": LevelForPoints(total),
		})
	})
	if err != nil {
		logger.Log.Error("Failed to record lesson completion",
			zap.String("userID", session.UserID),
			zap.String("courseID", courseID),
			zap.String("lessonID", lessonID),
			zap.Error(err))
		return nil, err
	}

	result := &model.CompletionResult{
		CompletionPercentage: progress.CompletionPercentage,
		CourseCompleted:      courseCompleted,
		PointsAwarded:        pointsAwarded,
		TotalPoints:          total,
		CurrentLevel:         LevelForPoints(total),
	}
	result.NewAchievements = append(result.NewAchievements, s.pointMilestones(session.UserID, total-pointsAwarded, total)...)
	if firstLesson {
		result.NewAchievements = append(result.NewAchievements, s.awardFromCatalog(session.UserID, "first-lesson", nil)...)
	}
	if courseCompleted {
		result.NewAchievements = append(result.NewAchievements, s.awardFromCatalog(session.UserID, "first-course", map[string]interface{}{
			"courseId": courseID,
		})...)
	}

	if _, err := s.UpdateStreak(session); err != nil {
		logger.Log.Warn("Failed to update streak after lesson completion", zap.String("userID", session.UserID), zap.Error(err))
	}

	return result, nil
}

// UpdateCurrentLesson 记录当前所在课时，同时计入当天的学习活动
func (s *ProgressService) UpdateCurrentLesson(session model.Session, courseID, lessonID string) (*model.CourseProgress, error) {
	progress, err := s.ensureProgress(session, courseID)
	if err != nil {
		return nil, err
	}

	progress.CurrentLessonID = &lessonID
	progress.LastAccessedAt = time.Now()
	if err := s.ProgressRepo.Save(progress); err != nil {
		logger.Log.Error("Failed to update current lesson",
			zap.String("userID", session.UserID),
			zap.String("lessonID", lessonID),
			zap.Error(err))
		return nil, err
	}

	if _, err := s.UpdateStreak(session); err != nil {
		logger.Log.Warn("Failed to update streak", zap.String("userID", session.UserID), zap.Error(err))
	}
	return progress, nil
}

// UpdateStreak 按本地日历日计算连续学习天数，返回更新后的天数
func (s *ProgressService) UpdateStreak(session model.Session) (int, error) {
	user, err := s.findUser(session.UserID)
	if err != nil {
		return 0, err
	}

	day := today(session)
	gap, ok := util.DaysBetween(user.LastActivityDate, day)
	if ok && gap == 0 {
		return user.CurrentStreak, nil
	}

	streak := 1
	if ok && gap == 1 {
		streak = user.CurrentStreak + 1
	}
	longest := user.LongestStreak
	if streak > longest {
		longest = streak
	}

	if err := s.UserRepo.UpdateFields(user.ID, map[string]interface{}{
		"current_streak":     streak,
		"longest_streak":     longest,
		"last_activity_date": day,
	}); err != nil {
		logger.Log.Error("Failed to update streak", zap.String("userID", user.ID), zap.Error(err))
		return 0, err
	}

	for _, milestone := range streakMilestones {
		if streak == milestone {
			s.award(session.UserID, streakDefinition(milestone), map[string]interface{}{"streak": streak})
		}
	}
	return streak, nil
}

// AwardPoints 原子加分并重新计算等级
func (s *ProgressService) AwardPoints(session model.Session, amount int) (*PointsResult, error) {
	var total int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		users := repository.NewUserRepository(tx)
		var err error
		total, err = users.AddPoints(session.UserID, amount)
		if err != nil {
			return err
		}
		return users.UpdateFields(session.UserID, map[string]interface{}{
			"current_level": LevelForPoints(total),
		})
	})
	if err != nil {
		logger.Log.Error("Failed to award points",
			zap.String("userID", session.UserID),
			zap.Int("amount", amount),
			zap.Error(err))
		return nil, err
	}

	return &PointsResult{
		TotalPoints:     total,
		CurrentLevel:    LevelForPoints(total),
		NewAchievements: s.pointMilestones(session.UserID, total-amount, total),
	}, nil
}

// pointMilestones 授予 previous 到 total 之间跨过的积分成就
func (s *ProgressService) pointMilestones(userID string, previous, total int) []string {
	var unlocked []string
	for _, milestone := range pointMilestones {
		if previous < milestone && total >= milestone {
			unlocked = append(unlocked,
				s.awardFromCatalog(userID, PointsAchievementID(milestone), map[string]interface{}{"points": total})...)
		}
	}
	return unlocked
}

// UpdateCompetencyScore 与已有分数取平均，没有记录时按 0 计；达到 90 解锁能力成就
func (s *ProgressService) UpdateCompetencyScore(session model.Session, competency string, score int) (int, error) {
	user, err := s.findUser(session.UserID)
	if err != nil {
		return 0, err
	}

	scores := user.Competencies()
	updated := int(math.Round(float64(scores[competency]+score) / 2))
	scores[competency] = updated

	if err := s.UserRepo.UpdateFields(user.ID, map[string]interface{}{
		"competency_scores": datatypes.NewJSONType(scores),
	}); err != nil {
		logger.Log.Error("Failed to update competency score",
			zap.String("userID", user.ID),
			zap.String("competency", competency),
			zap.Error(err))
		return 0, err
	}

	if updated >= masteryThreshold {
		s.award(session.UserID, competencyDefinition(competency), map[string]interface{}{"score": updated})
	}
	return updated, nil
}

// AwardAchievement 按成就 ID 授予，未知 ID 返回校验错误
func (s *ProgressService) AwardAchievement(session model.Session, achievementID string, details map[string]interface{}) (bool, error) {
	def, ok := LookupAchievement(achievementID)
	if !ok {
		return false, errors.Join(util.ErrValidation, errors.New("unknown achievement "+achievementID))
	}
	return s.AchievementService.Award(session.UserID, def, details)
}

// award 次要效果，失败只记录日志
func (s *ProgressService) award(userID string, def model.AchievementDefinition, metadata map[string]interface{}) bool {
	created, err := s.AchievementService.Award(userID, def, metadata)
	if err != nil {
		return false
	}
	return created
}

func (s *ProgressService) awardFromCatalog(userID, achievementID string, metadata map[string]interface{}) []string {
	def, ok := LookupAchievement(achievementID)
	if !ok {
		return nil
	}
	if s.award(userID, def, metadata) {
		return []string{achievementID}
	}
	return nil
}

// RecordExerciseEvaluated 评估完成后的统计：能力分、完成练习数、首个练习成就
func (s *ProgressService) RecordExerciseEvaluated(session model.Session, competencies []string, score int) error {
	for _, competency := range competencies {
		if _, err := s.UpdateCompetencyScore(session, competency, score); err != nil {
			return err
		}
	}

	if err := s.UserRepo.Increment(session.UserID, "exercises_completed", 1); err != nil {
		logger.Log.Error("Failed to increment completed exercises", zap.String("userID", session.UserID), zap.Error(err))
		return err
	}
	s.awardFromCatalog(session.UserID, "first-exercise", nil)
	return nil
}

// GetStats 学习统计概览
func (s *ProgressService) GetStats(userID string) (*model.UserStats, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	count, err := s.AchievementService.AchievementRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}

	level := LevelForPoints(user.TotalPoints)
	return &model.UserStats{
		TotalPoints:        user.TotalPoints,
		CurrentLevel:       level,
		PointsToNextLevel:  level*PointsPerLevel - user.TotalPoints,
		CurrentStreak:      user.CurrentStreak,
		LongestStreak:      user.LongestStreak,
		LastActivityDate:   user.LastActivityDate,
		CoursesEnrolled:    len(user.EnrolledCourses),
		CoursesCompleted:   user.CoursesCompleted,
		LessonsCompleted:   len(user.CompletedLessons),
		ExercisesCompleted: user.ExercisesCompleted,
		CompetencyScores:   user.Competencies(),
		AchievementCount:   count,
	}, nil
}
