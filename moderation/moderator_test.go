package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/errors"
)

func TestNewModeratorRequiresWords(t *testing.T) {
	_, err := NewModerator(nil, '*', logs.GetLoggerFromLevel(slog.LevelError))
	require.ErrorIs(t, err, errors.ErrEmptyWords)
}

func TestCensor(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badger", "snake"}, '*', logs.GetLoggerFromLevel(slog.LevelError))
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain match",
			input:    "the badger is back",
			expected: "the ****** is back",
		},
		{
			name:     "Case insensitive",
			input:    "BADGER",
			expected: "******",
		},
		{
			name:     "Leet speak",
			input:    "b4dg3r online",
			expected: "****** online",
		},
		{
			name:     "Spaced out spelling",
			input:    "s n a k e",
			expected: "*********",
		},
		{
			name:     "No match passes through",
			input:    "perfectly fine message",
			expected: "perfectly fine message",
		},
		{
			name:     "Empty content",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, mod.Censor(tt.input))
		})
	}
}
