package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrInternal             = fmt.Errorf("internal error")
	ErrEmptyWords           = fmt.Errorf("no censored words have been found")
	ErrFrameMalformed       = fmt.Errorf("invalid message format")
	ErrUnknownFrame         = fmt.Errorf("unknown message type")
	ErrNotAuthenticated     = fmt.Errorf("not authenticated")
	ErrAlreadyAuthenticated = fmt.Errorf("already authenticated")
	ErrTokenRequired        = fmt.Errorf("token required")
	ErrTokenMalformed       = fmt.Errorf("malformed token")
	ErrBadSignature         = fmt.Errorf("invalid token signature")
	ErrTokenExpired         = fmt.Errorf("token expired")
	ErrWrongKind            = fmt.Errorf("wrong token kind")
	ErrInvalidPayload       = fmt.Errorf("invalid message data")
	ErrStoreUnavailable     = fmt.Errorf("failed to save message")
	ErrConnectionUnknown    = fmt.Errorf("connection not registered")
)
