package repository

import (
	"testing"
	"time"

	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_EnsureUserAndPoints(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepository(db)

	require.NoError(t, users.EnsureUser("auth-sub-1", "a@example.com"))
	// 已存在时不覆盖
	require.NoError(t, users.EnsureUser("auth-sub-1", "changed@example.com"))

	user, err := users.FindByID("auth-sub-1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, model.TierFree, user.SubscriptionTier)
	assert.Equal(t, 1, user.CurrentLevel)

	total, err := users.AddPoints(user.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	total, err = users.AddPoints(user.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 55, total)

	require.NoError(t, users.Increment(user.ID, "exercises_completed", 1))
	require.NoError(t, users.UpdateLastSeen(user.ID))
	user, err = users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.ExercisesCompleted)
	assert.NotNil(t, user.LastSeenAt)
}

func TestProgressRepository_CreateIfAbsent(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "a@example.com")
	course, _ := testutil.CreateCourse(t, db, "repo", 1)
	progress := NewProgressRepository(db)

	created, err := progress.CreateIfAbsent(user.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = progress.CreateIfAbsent(user.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, created)

	list, err := progress.ListByUser(user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAchievementRepository_UniquePerUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAchievementRepository(db)

	award := func(userID string) bool {
		created, err := repo.CreateIfAbsent(&model.UserAchievement{
			UserID:        userID,
			AchievementID: "first-lesson",
			EarnedAt:      time.Now(),
		})
		require.NoError(t, err)
		return created
	}

	assert.True(t, award("u1"))
	assert.False(t, award("u1"))
	assert.True(t, award("u2"))

	count, err := repo.CountByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSubmissionRepository_DraftsAndStale(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSubmissionRepository(db)

	draft := &model.Submission{UserID: "u1", ExerciseInstanceID: "ex1", Status: model.SubmissionDraft}
	require.NoError(t, repo.Create(draft))

	found, err := repo.FindDraft("u1", "ex1")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, found.ID)

	old := time.Now().Add(-time.Hour)
	found.Status = model.SubmissionSubmitted
	found.SubmittedAt = &old
	require.NoError(t, repo.Save(found))

	_, err = repo.FindDraft("u1", "ex1")
	assert.Error(t, err)

	stale, err := repo.ListStaleSubmitted(time.Now().Add(-10*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, draft.ID, stale[0].ID)

	fresh, err := repo.ListStaleSubmitted(time.Now().Add(-2*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestSubmissionRepository_SaveEvaluationTransitionsOnce(t *testing.T) {
	db := testutil.NewDB(t)
	submissions := NewSubmissionRepository(db)

	now := time.Now()
	draft := &model.Submission{UserID: "u1", ExerciseInstanceID: "ex1", Status: model.SubmissionDraft}
	submitted := &model.Submission{UserID: "u1", ExerciseInstanceID: "ex1", Status: model.SubmissionSubmitted, SubmittedAt: &now}
	require.NoError(t, submissions.Create(draft))
	require.NoError(t, submissions.Create(submitted))

	first, err := submissions.SaveEvaluation(submitted.ID, []byte(`{"overallScore":80}`), 80, now)
	require.NoError(t, err)
	assert.True(t, first)

	// 重新评估只覆盖结果
	first, err = submissions.SaveEvaluation(submitted.ID, []byte(`{"overallScore":75}`), 75, now)
	require.NoError(t, err)
	assert.False(t, first)

	stored, err := submissions.FindByID(submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionEvaluated, stored.Status)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 75, *stored.Score)

	// 草稿不会被写成已评估
	first, err = submissions.SaveEvaluation(draft.ID, []byte(`{}`), 70, now)
	require.NoError(t, err)
	assert.False(t, first)
	stored, err = submissions.FindByID(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionDraft, stored.Status)
	assert.Nil(t, stored.Score)
}
