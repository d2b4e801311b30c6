package service

import (
	"context"
	"errors"
	"testing"

	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/testutil"
	"startup_academy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestListCatalog(t *testing.T) {
	s := newTestServices(t, nil)
	testutil.CreateCourse(t, s.db, "published", 1)
	require.NoError(t, s.db.Create(&model.Course{Slug: "hidden", Title: "Hidden", Status: model.CourseDraft, TargetStage: model.StageIdea}).Error)

	courses, err := s.course.ListCatalog(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "published", courses[0].Slug)

	courses, err = s.course.ListCatalog(context.Background(), model.StageScaling)
	require.NoError(t, err)
	assert.Empty(t, courses)

	_, err = s.course.ListCatalog(context.Background(), "unicorn")
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestGetCourseDetail(t *testing.T) {
	s := newTestServices(t, nil)
	user, session := s.newUser(t)
	testutil.CreateCourse(t, s.db, "detail", 3)

	detail, err := s.course.GetCourseDetail("detail", "")
	require.NoError(t, err)
	require.Len(t, detail.Lessons, 3)
	for i, lesson := range detail.Lessons {
		assert.Equal(t, i+1, lesson.LessonOrder)
	}
	assert.Nil(t, detail.Progress)

	detail, err = s.course.GetCourseDetail("detail", user.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Progress)

	_, err = s.course.Enroll(context.Background(), session, "detail")
	require.NoError(t, err)

	detail, err = s.course.GetCourseDetail("detail", user.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Progress)
	assert.Equal(t, 0, detail.Progress.CompletionPercentage)

	_, err = s.course.GetCourseDetail("missing", "")
	assert.True(t, errors.Is(err, util.ErrCourseNotFound))
}

func TestGetLessonView(t *testing.T) {
	s := newTestServices(t, nil)
	_, session := s.newUser(t)
	_, lessons := testutil.CreateCourse(t, s.db, "viewer", 2)
	instance := testutil.CreateExercise(t, s.db, lessons[1].ID)
	require.NoError(t, s.db.Model(&lessons[1]).Update("resources", datatypes.JSONSlice[model.LessonResource]{
		{Title: "Worksheet", Type: "pdf", ObjectKey: "lessons/worksheet.pdf"},
		{Title: "Talk", Type: "link", URL: "https://example.com/talk"},
	}).Error)

	view, err := s.course.GetLessonView(context.Background(), session, "viewer", 2)
	require.NoError(t, err)
	assert.Equal(t, lessons[1].ID, view.Lesson.ID)
	assert.Equal(t, int64(2), view.TotalLessons)
	assert.False(t, view.Completed)
	require.NotNil(t, view.Exercise)
	assert.Equal(t, instance.ID, view.Exercise.ID)
	assert.Equal(t, "Customer Discovery Canvas", view.Exercise.Template.Name)

	require.Len(t, view.Lesson.Resources, 2)
	assert.Equal(t, "http://localhost:8080/uploads/lessons/worksheet.pdf", view.Lesson.Resources[0].URL)
	assert.Equal(t, "https://example.com/talk", view.Lesson.Resources[1].URL)

	// 打开课时即自动报名并记录当前课时
	progress, err := s.course.GetProgress(session, "viewer")
	require.NoError(t, err)
	require.NotNil(t, progress.CurrentLessonID)
	assert.Equal(t, lessons[1].ID, *progress.CurrentLessonID)

	_, err = s.course.GetLessonView(context.Background(), session, "viewer", 9)
	assert.True(t, errors.Is(err, util.ErrLessonNotFound))
}

func TestCompleteLesson_BySlugAndOrder(t *testing.T) {
	s := newTestServices(t, nil)
	_, session := s.newUser(t)
	testutil.CreateCourse(t, s.db, "complete", 1)

	result, err := s.course.CompleteLesson(session, "complete", 1)
	require.NoError(t, err)
	assert.True(t, result.CourseCompleted)
	assert.Equal(t, 100, result.CompletionPercentage)
	assert.Equal(t, LessonPoints+CoursePoints, result.PointsAwarded)
}
