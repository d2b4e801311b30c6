package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"startup_academy_backend/internal/model"
	"startup_academy_backend/internal/testutil"
	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCoachingPrompt(t *testing.T) {
	instance := &model.ExerciseInstance{
		InstancePrompt: "Who is your first customer?",
		Template: model.ExerciseTemplate{
			Name:                     "Customer Discovery Canvas",
			TemplateConfig:           []byte(`{"sections": []}`),
			AICoachingPromptTemplate: "You are a startup coach.",
		},
	}
	prompt := BuildCoachingPrompt(instance, CoachingRequest{
		UserMessage:     "Is this specific enough?",
		CurrentResponse: json.RawMessage(`{"customer":"developers"}`),
		ConversationHistory: []model.ChatTurn{
			{Role: "user", Content: "Hi"},
			{Role: "assistant", Content: "Hello"},
		},
	})

	assert.Contains(t, prompt, "You are a startup coach.\n\nEXERCISE: Customer Discovery Canvas")
	assert.Contains(t, prompt, "EXERCISE PROMPT: Who is your first customer?")
	assert.Contains(t, prompt, `TEMPLATE STRUCTURE: {"sections":[]}`)
	assert.Contains(t, prompt, "\"customer\": \"developers\"")
	assert.Contains(t, prompt, "user: Hi\nassistant: Hello")
	assert.Contains(t, prompt, "User: Is this specific enough?")
	assert.Contains(t, prompt, "NEVER give direct answers")
}

func TestCoach_ModelReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Text: `{"message": "What did customers say?", "probeQuestions": ["Who did you interview?"], "encouragement": "Nice"}`,
	})
	s := newTestServices(t, mock)
	_, lessons := testutil.CreateCourse(t, s.db, "coaching", 1)
	instance := testutil.CreateExercise(t, s.db, lessons[0].ID)

	reply, err := s.coaching.Coach(context.Background(), CoachingRequest{
		ExerciseInstanceID: instance.ID,
		UserMessage:        "Help",
	})
	require.NoError(t, err)
	assert.Equal(t, "What did customers say?", reply.Message)
	assert.Equal(t, []string{"Who did you interview?"}, reply.ProbeQuestions)

	call, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, 1000, call.MaxTokens)
	assert.InDelta(t, 0.7, call.Temperature, 1e-9)
}

func TestCoach_FallbackWhenOffline(t *testing.T) {
	s := newTestServices(t, nil)
	_, lessons := testutil.CreateCourse(t, s.db, "coaching", 1)
	instance := testutil.CreateExercise(t, s.db, lessons[0].ID)

	reply, err := s.coaching.Coach(context.Background(), CoachingRequest{ExerciseInstanceID: instance.ID})
	require.NoError(t, err)
	assert.Equal(t, fallbackCoachingReplies[0].Message, reply.Message)
	assert.Len(t, reply.ProbeQuestions, 3)
	assert.NotEmpty(t, reply.Encouragement)
}

func TestCoach_UnknownExercise(t *testing.T) {
	s := newTestServices(t, nil)

	_, err := s.coaching.Coach(context.Background(), CoachingRequest{ExerciseInstanceID: "missing"})
	assert.True(t, errors.Is(err, util.ErrExerciseNotFound))

	_, err = s.coaching.Coach(context.Background(), CoachingRequest{})
	assert.True(t, errors.Is(err, util.ErrExerciseNotFound))
}
