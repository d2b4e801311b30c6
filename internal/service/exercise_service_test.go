package service

import (
	"encoding/json"
	"errors"
	"testing"

	"startup_academy_backend/internal/exercise"
	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/testutil"
	"startup_academy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	jobs []EvaluationJob
}

func (q *recordingQueue) Enqueue(job EvaluationJob) bool {
	q.jobs = append(q.jobs, job)
	return true
}

func setupExercise(t *testing.T) (*testServices, model.Session, *model.ExerciseInstance, *recordingQueue) {
	t.Helper()
	s := newTestServices(t, nil)
	_, session := s.newUser(t)
	_, lessons := testutil.CreateCourse(t, s.db, "exercises", 1)
	instance := testutil.CreateExercise(t, s.db, lessons[0].ID)
	queue := &recordingQueue{}
	s.exercise.Queue = queue
	return s, session, instance, queue
}

func TestSaveDraft_AppliesOps(t *testing.T) {
	s, session, instance, _ := setupExercise(t)

	draft, err := s.exercise.SaveDraft(session, instance.ID, DraftRequest{Ops: []exercise.Op{
		{Type: "set", Field: "customer", Value: "agencies"},
		{Type: "update", Field: "pains", Index: 0, Value: "slow onboarding"},
		{Type: "append", Field: "pains"},
	}})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionDraft, draft.Status)
	assert.Nil(t, draft.SubmittedAt)

	// 第二次保存更新同一条草稿
	again, err := s.exercise.SaveDraft(session, instance.ID, DraftRequest{Ops: []exercise.Op{
		{Type: "update", Field: "pains", Index: 1, Value: "hidden fees"},
	}})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, again.ID)

	page, err := s.exercise.GetExercise(session.UserID, instance.ID)
	require.NoError(t, err)
	assert.False(t, page.Form.ReadOnly)
	require.NotNil(t, page.Submission)
	assert.Equal(t, draft.ID, page.Submission.ID)
	assert.Nil(t, page.Evaluation)
	assert.Equal(t, "agencies", page.Form.Fields[0].Value.Text)
	assert.Equal(t, []string{"slow onboarding", "hidden fees"}, page.Form.Fields[1].Value.Items)
}

func TestSaveDraft_InvalidOp(t *testing.T) {
	s, session, instance, _ := setupExercise(t)

	_, err := s.exercise.SaveDraft(session, instance.ID, DraftRequest{Ops: []exercise.Op{
		{Type: "append", Field: "customer"},
	}})
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestSubmit_ValidationFailure(t *testing.T) {
	s, session, instance, queue := setupExercise(t)

	_, err := s.exercise.Submit(session, instance.ID, SubmitRequest{ResponseData: json.RawMessage(`{"customer":"  ","pains":[""]}`)})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.True(t, errors.Is(err, util.ErrValidation))

	var fields []string
	for _, f := range validationErr.Fields {
		fields = append(fields, f.FieldID)
	}
	assert.Equal(t, []string{"customer", "pains"}, fields)
	assert.Empty(t, queue.jobs)
}

func TestSubmit_Lifecycle(t *testing.T) {
	s, session, instance, queue := setupExercise(t)

	draft, err := s.exercise.SaveDraft(session, instance.ID, DraftRequest{ResponseData: json.RawMessage(validResponse)})
	require.NoError(t, err)

	// 不带作答时提交当前草稿
	submitted, err := s.exercise.Submit(session, instance.ID, SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, submitted.ID)
	assert.Equal(t, model.SubmissionSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, submitted.ID, queue.jobs[0].SubmissionID)
	assert.Equal(t, session.UserID, queue.jobs[0].Session.UserID)

	page, err := s.exercise.GetExercise(session.UserID, instance.ID)
	require.NoError(t, err)
	assert.True(t, page.Form.ReadOnly)

	_, err = s.exercise.Submit(session, instance.ID, SubmitRequest{ResponseData: json.RawMessage(validResponse)})
	assert.True(t, errors.Is(err, util.ErrAlreadySubmitted))

	// 修改时新建草稿，已提交记录不变
	revision, err := s.exercise.SaveDraft(session, instance.ID, DraftRequest{ResponseData: json.RawMessage(validResponse)})
	require.NoError(t, err)
	assert.NotEqual(t, submitted.ID, revision.ID)

	stored, err := s.submissions.FindByID(submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionSubmitted, stored.Status)
}

func TestGetExercise_NotFound(t *testing.T) {
	s, session, _, _ := setupExercise(t)

	_, err := s.exercise.GetExercise(session.UserID, "missing")
	assert.True(t, errors.Is(err, util.ErrExerciseNotFound))
}
