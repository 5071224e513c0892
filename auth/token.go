// Package auth verifies the signed bearer tokens clients present on join.
// Token issuance lives in the backend; the relay only checks tokens it is
// handed, against the shared secret loaded at startup.
package auth

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chat-relay/domain/chat"
	"chat-relay/errors"
)

type TokenKind string

const (
	KindGuest TokenKind = "guest"
	KindAdmin TokenKind = "admin"
)

// Claims defines the structure of the data stored inside the token.
// The field names must match what the backend issues.
type Claims struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	Kind     TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// Verifier checks tokens against a shared HMAC-SHA256 secret.
// It is a pure function of the token and the secret: no network or
// storage access.
type Verifier struct {
	secret       []byte
	expectedKind TokenKind
}

func NewVerifier(secret []byte, expectedKind TokenKind) Verifier {
	return Verifier{secret: secret, expectedKind: expectedKind}
}

// Verify parses and validates the signature, kind, and expiration of a
// token string, returning the embedded identity on success.
func (v Verifier) Verify(tokenString string) (chat.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return chat.Identity{}, mapTokenError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return chat.Identity{}, errors.ErrTokenMalformed
	}
	if claims.Kind != v.expectedKind {
		return chat.Identity{}, errors.ErrWrongKind
	}
	if claims.UserID == 0 {
		return chat.Identity{}, errors.ErrTokenMalformed
	}

	return chat.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// mapTokenError translates jwt/v5 error values onto the relay taxonomy so
// callers never depend on the library's error surface.
func mapTokenError(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return errors.ErrTokenExpired
	case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.ErrBadSignature
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		return errors.ErrTokenMalformed
	default:
		return fmt.Errorf("%w: %v", errors.ErrTokenMalformed, err)
	}
}

// GenerateToken creates a signed token in the backend's format. The relay
// itself never issues tokens; this mirrors the issuer so tests and local
// tooling can mint credentials.
func GenerateToken(secret []byte, identity chat.Identity, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   identity.UserID,
		Username: identity.Username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
