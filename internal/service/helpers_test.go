package service

import (
	"testing"
	"time"

	"startup_academy_backend/internal/config"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/repository"
	"startup_academy_backend/internal/testutil"
	"startup_academy_backend/pkg/llm"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServices struct {
	db           *gorm.DB
	users        *repository.UserRepository
	achievements *repository.AchievementRepository
	submissions  *repository.SubmissionRepository

	progress   *ProgressService
	course     *CourseService
	exercise   *ExerciseService
	ai         *AIService
	evaluation *EvaluationService
	coaching   *CoachingService
	social     *SocialListeningService
	dashboard  *DashboardService
}

// newTestServices 与 app.initServices 相同的装配，Redis 关闭，AI 使用 provider
func newTestServices(t *testing.T, provider llm.Provider) *testServices {
	t.Helper()
	db := testutil.NewDB(t)

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	lessons := repository.NewLessonRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	exercises := repository.NewExerciseRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	achievementService := NewAchievementService(achievementRepo)
	progress := NewProgressService(db, users, courses, lessons, progressRepo, achievementService)
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: "local", PublicURL: "http://localhost:8080"}})

	ai := NewAIService(llm.NewHolder(provider), 5*time.Second)
	// 兜底随机数固定为 0
	ai.intn = func(int) int { return 0 }

	return &testServices{
		db:           db,
		users:        users,
		achievements: achievementRepo,
		submissions:  submissions,
		progress:     progress,
		course:       NewCourseService(courses, lessons, exercises, progress, storage, nil),
		exercise:     NewExerciseService(exercises, submissions),
		ai:           ai,
		evaluation:   NewEvaluationService(ai, submissions, exercises, lessons, courses, progress),
		coaching:     NewCoachingService(ai, exercises),
		social:       NewSocialListeningService(ai),
		dashboard:    NewDashboardService(progress, progressRepo, courses, achievementRepo),
	}
}

func (s *testServices) newUser(t *testing.T) (*model.User, model.Session) {
	t.Helper()
	user := testutil.CreateUser(t, s.db, "founder@example.com")
	return user, model.Session{UserID: user.ID, Email: user.Email, Today: "2026-03-10"}
}

func (s *testServices) reloadUser(t *testing.T, id string) *model.User {
	t.Helper()
	user, err := s.users.FindByID(id)
	require.NoError(t, err)
	return user
}

func (s *testServices) achievementIDs(t *testing.T, userID string) []string {
	t.Helper()
	list, err := s.achievements.FindByUserID(userID)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.AchievementID)
	}
	return ids
}
