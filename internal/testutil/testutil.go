// Package testutil 测试用的内存数据库与数据构造
package testutil

import (
	"testing"
	"time"

	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "test-secret-with-at-least-32-characters"

// NewDB 每个测试独立的 sqlite 内存库。并发查询共用同一连接
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models...))
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:            email,
		SubscriptionTier: model.TierFree,
		CurrentLevel:     1,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateCourse 已发布课程及 lessons 个课时，课时顺序从 1 开始
func CreateCourse(t *testing.T, db *gorm.DB, slug string, lessons int, competencies ...string) (*model.Course, []model.Lesson) {
	t.Helper()
	course := &model.Course{
		Slug:           slug,
		Title:          "Course " + slug,
		Tier:           model.TierFoundation,
		TargetStage:    model.StageIdea,
		Competencies:   datatypes.JSONSlice[string](competencies),
		EstimatedHours: 2,
		Status:         model.CoursePublished,
	}
	require.NoError(t, db.Create(course).Error)

	created := make([]model.Lesson, 0, lessons)
	for i := 1; i <= lessons; i++ {
		lesson := model.Lesson{
			CourseID:         course.ID,
			LessonOrder:      i,
			Title:            "Lesson",
			ContentType:      model.ContentArticle,
			EstimatedMinutes: 10,
		}
		require.NoError(t, db.Create(&lesson).Error)
		created = append(created, lesson)
	}
	return course, created
}

const SectionsConfig = `{
  "sections": [
    {"id": "customer", "label": "Customer", "description": "Who is it for", "inputType": "text"},
    {"id": "pains", "label": "Pains", "description": "What hurts", "inputType": "multiline"}
  ]
}`

// CreateExercise 挂在 lesson 上的练习，评分表 clarity 0.5 / evidence 0.3 / insight 0.2
func CreateExercise(t *testing.T, db *gorm.DB, lessonID string) *model.ExerciseInstance {
	t.Helper()
	template := &model.ExerciseTemplate{
		Name:                     "Customer Discovery Canvas",
		FrameworkType:            "canvas",
		TemplateConfig:           datatypes.JSON(SectionsConfig),
		AICoachingPromptTemplate: "You are a startup coach helping a founder describe their customer.",
		EvaluationRubric: datatypes.NewJSONType(model.Rubric{
			Criteria: []model.RubricCriterion{
				{Name: "clarity", Description: "Clear customer definition", Weight: 0.5},
				{Name: "evidence", Description: "Backed by evidence", Weight: 0.3},
				{Name: "insight", Description: "Non-obvious insight", Weight: 0.2},
			},
			PassingScore: 70,
		}),
	}
	require.NoError(t, db.Create(template).Error)

	instance := &model.ExerciseInstance{
		TemplateID:       template.ID,
		LessonID:         lessonID,
		InstancePrompt:   "Describe your first customer",
		EstimatedMinutes: 15,
	}
	require.NoError(t, db.Omit("Template").Create(instance).Error)
	instance.Template = *template
	return instance
}

func Token(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := util.GenerateJWT(user.ID, user.Email, JWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}
