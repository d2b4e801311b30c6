package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/repository"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogCachePrefix = "courses:catalog:"
	catalogCacheTTL    = 5 * time.Minute
)

type CourseService struct {
	CourseRepo      *repository.CourseRepository
	LessonRepo      *repository.LessonRepository
	ExerciseRepo    *repository.ExerciseRepository
	ProgressService *ProgressService
	StorageService  *StorageService
	Redis           *redis.Client
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	exerciseRepo *repository.ExerciseRepository,
	progressService *ProgressService,
	storageService *StorageService,
	rdb *redis.Client,
) *CourseService {
	return &CourseService{
		CourseRepo:      courseRepo,
		LessonRepo:      lessonRepo,
		ExerciseRepo:    exerciseRepo,
		ProgressService: progressService,
		StorageService:  storageService,
		Redis:           rdb,
	}
}

func catalogCacheKey(stage string) string {
	if stage == "" {
		return catalogCachePrefix + "all"
	}
	return catalogCachePrefix + stage
}

// ListCatalog 已发布课程目录，Redis 可用时缓存 5 分钟
func (s *CourseService) ListCatalog(ctx context.Context, stage string) ([]model.Course, error) {
	if stage != "" && !slices.Contains(model.ValidStages, stage) {
		return nil, fmt.Errorf("%w: unknown stage %q", util.ErrValidation, stage)
	}

	key := catalogCacheKey(stage)
	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, key).Result()
		if err == nil {
			var courses []model.Course
			if jsonErr := json.Unmarshal([]byte(val), &courses); jsonErr == nil {
				return courses, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("Course catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	courses, err := s.CourseRepo.ListPublished(stage)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(courses); err == nil {
			if err := s.Redis.Set(ctx, key, data, catalogCacheTTL).Err(); err != nil {
				logger.Log.Warn("Course catalog cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return courses, nil
}

// InvalidateCatalog 课程变更后清理所有阶段的目录缓存
func (s *CourseService) InvalidateCatalog(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	keys := []string{catalogCacheKey("")}
	for _, stage := range model.ValidStages {
		keys = append(keys, catalogCacheKey(stage))
	}
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate course catalog cache", zap.Error(err))
	}
}

func (s *CourseService) GetBySlug(slug string) (*model.Course, error) {
	course, err := s.CourseRepo.FindPublishedBySlug(slug)
	if err != nil {
		return nil, notFoundAs(err, util.ErrCourseNotFound)
	}
	return course, nil
}

// GetCourseDetail 课程详情与有序课时；userID 非空时附带该用户的进度
func (s *CourseService) GetCourseDetail(slug, userID string) (*model.CourseDetail, error) {
	course, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}

	lessons, err := s.LessonRepo.ListByCourse(course.ID)
	if err != nil {
		return nil, err
	}

	detail := &model.CourseDetail{Course: *course, Lessons: lessons}
	if userID != "" {
		progress, err := s.ProgressService.GetCourseProgress(userID, course.ID)
		if err == nil {
			detail.Progress = progress
		} else if !errors.Is(err, util.ErrNotEnrolled) {
			return nil, err
		}
	}
	return detail, nil
}

// Enroll 按 slug 报名，报名人数变化后清理目录缓存
func (s *CourseService) Enroll(ctx context.Context, session model.Session, slug string) (*model.CourseProgress, error) {
	course, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	progress, err := s.ProgressService.StartCourse(session, course.ID)
	if err != nil {
		return nil, err
	}
	s.InvalidateCatalog(ctx)
	return progress, nil
}

func (s *CourseService) GetProgress(session model.Session, slug string) (*model.CourseProgress, error) {
	course, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.ProgressService.GetCourseProgress(session.UserID, course.ID)
}

func (s *CourseService) findLesson(slug string, order int) (*model.Course, *model.Lesson, error) {
	course, err := s.GetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	lesson, err := s.LessonRepo.FindByOrder(course.ID, order)
	if err != nil {
		return nil, nil, notFoundAs(err, util.ErrLessonNotFound)
	}
	return course, lesson, nil
}

// GetLessonView 课时播放页：课时内容、资料地址、练习，并记录当前课时
func (s *CourseService) GetLessonView(ctx context.Context, session model.Session, slug string, order int) (*model.LessonView, error) {
	course, lesson, err := s.findLesson(slug, order)
	if err != nil {
		return nil, err
	}

	total, err := s.LessonRepo.CountByCourse(course.ID)
	if err != nil {
		return nil, err
	}

	progress, err := s.ProgressService.UpdateCurrentLesson(session, course.ID, lesson.ID)
	if err != nil {
		return nil, err
	}

	lesson.Resources = s.StorageService.ResolveResources(ctx, lesson.Resources)

	view := &model.LessonView{
		Course:       *course,
		Lesson:       *lesson,
		TotalLessons: total,
		Completed:    progress.HasLesson(lesson.ID),
		Progress:     progress,
	}

	instance, err := s.ExerciseRepo.FindInstanceByLesson(lesson.ID)
	if err == nil {
		view.Exercise = instance
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return view, nil
}

func (s *CourseService) CompleteLesson(session model.Session, slug string, order int) (*model.CompletionResult, error) {
	course, lesson, err := s.findLesson(slug, order)
	if err != nil {
		return nil, err
	}
	return s.ProgressService.MarkLessonComplete(session, course.ID, lesson.ID)
}
