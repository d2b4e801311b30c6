package service

import (
	"context"
	"errors"
	"testing"

	"startup_academy_backend/internal/util"
	"startup_academy_backend/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_RequiresTopicAndPlatforms(t *testing.T) {
	s := newTestServices(t, nil)

	_, err := s.social.Analyze(context.Background(), SocialListeningRequest{Topic: "  ", Platforms: []string{"reddit"}})
	assert.True(t, errors.Is(err, util.ErrTopicRequired))

	_, err = s.social.Analyze(context.Background(), SocialListeningRequest{Topic: "invoicing"})
	assert.True(t, errors.Is(err, util.ErrTopicRequired))
}

func TestAnalyze_SampleWhenOffline(t *testing.T) {
	s := newTestServices(t, nil)

	analysis, err := s.social.Analyze(context.Background(), SocialListeningRequest{
		Topic:     "invoicing",
		Platforms: []string{"reddit", "twitter"},
	})
	require.NoError(t, err)
	require.Len(t, analysis.TopPainPoints, 3)
	assert.Contains(t, analysis.TopPainPoints[0].Examples[0], "invoicing")
	assert.NotEmpty(t, analysis.IdealCustomerProfile.Demographics)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestAnalyze_ModelReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: `{
		"topPainPoints": [{"theme": "Chasing late payments", "frequency": 60, "urgency": "high", "examples": ["ugh"], "sources": ["r/freelance"]}],
		"idealCustomerProfile": {"demographics": ["freelancers"], "behaviors": [], "motivations": []},
		"competitorGaps": ["no reminders"],
		"opportunityScore": 72,
		"recommendations": ["build reminders"],
		"rawInsights": "Freelancers hate chasing invoices."
	}`})
	s := newTestServices(t, mock)

	analysis, err := s.social.Analyze(context.Background(), SocialListeningRequest{
		Topic:     "invoicing",
		Platforms: []string{"reddit"},
		Depth:     "comprehensive",
	})
	require.NoError(t, err)
	assert.Equal(t, 72, analysis.OpportunityScore)
	assert.Equal(t, "Chasing late payments", analysis.TopPainPoints[0].Theme)

	call, ok := mock.LastCall()
	require.True(t, ok)
	assert.Contains(t, call.Messages[0].Content, `Analyze conversations about: "invoicing"`)
	assert.Contains(t, call.Messages[0].Content, "Platforms to consider: reddit")
	assert.Contains(t, call.Messages[0].Content, "Analysis depth: comprehensive")
}

func TestAnalyze_OutOfRangeScoreFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: `{
		"topPainPoints": [], "idealCustomerProfile": {}, "competitorGaps": [],
		"opportunityScore": 140, "recommendations": [], "rawInsights": ""
	}`})
	s := newTestServices(t, mock)

	analysis, err := s.social.Analyze(context.Background(), SocialListeningRequest{Topic: "crm", Platforms: []string{"reddit"}})
	require.NoError(t, err)
	assert.Equal(t, SampleMarketAnalysis("crm"), analysis)
}
