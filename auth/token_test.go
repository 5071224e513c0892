package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-relay/domain/chat"
	"chat-relay/errors"
)

var testSecret = []byte("test-secret-key-for-relay-tokens")

func TestVerifyValidToken(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier(testSecret, KindGuest)

	token, err := GenerateToken(testSecret, chat.Identity{UserID: 42, Username: "alice"}, KindGuest, time.Hour)
	req.NoError(err)

	identity, err := verifier.Verify(token)
	req.NoError(err)
	req.Equal(int64(42), identity.UserID)
	req.Equal("alice", identity.Username)
}

func TestVerifyRejections(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier(testSecret, KindGuest)

	valid, err := GenerateToken(testSecret, chat.Identity{UserID: 42, Username: "alice"}, KindGuest, time.Hour)
	req.NoError(err)

	expired, err := GenerateToken(testSecret, chat.Identity{UserID: 42, Username: "alice"}, KindGuest, -time.Minute)
	req.NoError(err)

	admin, err := GenerateToken(testSecret, chat.Identity{UserID: 1, Username: "root"}, KindAdmin, time.Hour)
	req.NoError(err)

	otherSecret, err := GenerateToken([]byte("another-secret-entirely"), chat.Identity{UserID: 42, Username: "alice"}, KindGuest, time.Hour)
	req.NoError(err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"Expired token", expired, errors.ErrTokenExpired},
		{"Wrong kind", admin, errors.ErrWrongKind},
		{"Wrong secret", otherSecret, errors.ErrBadSignature},
		{"Two segments", "abc.def", errors.ErrTokenMalformed},
		{"Garbage", "not-a-token", errors.ErrTokenMalformed},
		{"Empty", "", errors.ErrTokenMalformed},
		{"Valid control", valid, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// Flipping any byte of the signature segment must surface as a signature
// failure, not as a decode error.
func TestVerifyMutatedSignature(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier(testSecret, KindGuest)

	token, err := GenerateToken(testSecret, chat.Identity{UserID: 42, Username: "alice"}, KindGuest, time.Hour)
	req.NoError(err)

	parts := strings.Split(token, ".")
	req.Len(parts, 3)

	sig := []byte(parts[2])
	for i := range sig {
		mutated := make([]byte, len(sig))
		copy(mutated, sig)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		_, err := verifier.Verify(parts[0] + "." + parts[1] + "." + string(mutated))
		req.Error(err, "byte %d", i)
	}
}
