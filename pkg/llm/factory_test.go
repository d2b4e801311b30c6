package llm

import (
	"context"
	"errors"
	"testing"

	"startup_academy_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_OfflineWithoutKey(t *testing.T) {
	for _, name := range []string{"", "gemini", "openai", "anthropic"} {
		p, err := NewProvider(context.Background(), config.AIConfig{Provider: name})
		require.NoError(t, err, name)
		assert.Nil(t, p, name)
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), config.AIConfig{Provider: "llama", APIKey: "k"})
	assert.Error(t, err)
}

func TestNewProvider_OpenAIWithKey(t *testing.T) {
	p, err := NewProvider(context.Background(), config.AIConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())
}

func TestHolder(t *testing.T) {
	h := NewHolder(nil)
	_, err := h.Generate(context.Background(), Request{})
	assert.True(t, errors.Is(err, ErrOffline))

	mock := NewMockProvider(MockResponse{Text: "hi"})
	h.Set(mock)
	resp, err := h.Generate(context.Background(), Request{Messages: UserPrompt("x")})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Text)
	assert.Equal(t, 1, mock.CallCount())

	h.Set(nil)
	assert.Nil(t, h.Current())
}
