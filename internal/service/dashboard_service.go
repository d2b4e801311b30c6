package service

import (
	"context"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/repository"
	"time"

	"golang.org/x/sync/errgroup"
)

const recentAchievementLimit = 5

type DashboardService struct {
	ProgressService *ProgressService
	ProgressRepo    *repository.ProgressRepository
	CourseRepo      *repository.CourseRepository
	AchievementRepo *repository.AchievementRepository
}

func NewDashboardService(
	progressService *ProgressService,
	progressRepo *repository.ProgressRepository,
	courseRepo *repository.CourseRepository,
	achievementRepo *repository.AchievementRepository,
) *DashboardService {
	return &DashboardService{
		ProgressService: progressService,
		ProgressRepo:    progressRepo,
		CourseRepo:      courseRepo,
		AchievementRepo: achievementRepo,
	}
}

// GetUserDashboard 统计、已报名课程进度、最近成就三部分并发查询
func (s *DashboardService) GetUserDashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	var (
		stats   *model.UserStats
		courses []model.EnrolledCourse
		recent  []model.UserAchievement
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats, err = s.ProgressService.GetStats(userID)
		return err
	})

	g.Go(func() error {
		var err error
		courses, err = s.enrolledCourses(userID)
		return err
	})

	g.Go(func() error {
		var err error
		recent, err = s.AchievementRepo.Recent(userID, recentAchievementLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if courses == nil {
		courses = []model.EnrolledCourse{}
	}
	if recent == nil {
		recent = []model.UserAchievement{}
	}
	return &model.Dashboard{
		Stats:              *stats,
		Courses:            courses,
		RecentAchievements: recent,
		GeneratedAt:        time.Now(),
	}, nil
}

// enrolledCourses 按最近学习时间排序
func (s *DashboardService) enrolledCourses(userID string) ([]model.EnrolledCourse, error) {
	progressList, err := s.ProgressRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(progressList))
	for _, p := range progressList {
		ids = append(ids, p.CourseID)
	}
	courses, err := s.CourseRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	result := make([]model.EnrolledCourse, 0, len(progressList))
	for i := range progressList {
		course, ok := byID[progressList[i].CourseID]
		if !ok {
			continue
		}
		result = append(result, model.EnrolledCourse{Course: course, Progress: &progressList[i]})
	}
	return result, nil
}
