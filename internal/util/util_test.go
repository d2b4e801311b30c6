package util

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	secret := "util-test-secret-with-32-characters"
	token, err := GenerateJWT("user-1", "a@example.com", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "a@example.com", claims.Email)

	_, err = ParseJWT(token, "another-secret-with-32-characters!!")
	assert.Error(t, err)

	expired, err := GenerateJWT("user-1", "a@example.com", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, secret)
	assert.Error(t, err)

	noSubject, err := GenerateJWT("", "a@example.com", secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(noSubject, secret)
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		from, to string
		days     int
		ok       bool
	}{
		{"2026-03-10", "2026-03-10", 0, true},
		{"2026-03-09", "2026-03-10", 1, true},
		{"2026-02-28", "2026-03-01", 1, true},
		{"2025-12-31", "2026-01-02", 2, true},
		{"", "2026-03-10", 0, false},
		{"yesterday", "2026-03-10", 0, false},
	}
	for _, tt := range tests {
		days, ok := DaysBetween(tt.from, tt.to)
		assert.Equal(t, tt.ok, ok, tt.from)
		assert.Equal(t, tt.days, days, tt.from)
	}
}

func TestParseLocalDate(t *testing.T) {
	_, err := ParseLocalDate("2026-13-01")
	assert.True(t, errors.Is(err, ErrInvalidLocalDate))

	d, err := ParseLocalDate("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.March, d.Month())
}

func TestParsePositiveInt(t *testing.T) {
	assert.Equal(t, 3, ParsePositiveInt("3"))
	assert.Equal(t, 0, ParsePositiveInt("0"))
	assert.Equal(t, 0, ParsePositiveInt("-1"))
	assert.Equal(t, 0, ParsePositiveInt("x"))
}
