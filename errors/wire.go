package errors

import stderrors "errors"

// wireable lists the errors whose text is safe to put in an error frame.
// Anything else collapses to a generic message so internal details never
// reach a client.
var wireable = []error{
	ErrFrameMalformed,
	ErrUnknownFrame,
	ErrNotAuthenticated,
	ErrAlreadyAuthenticated,
	ErrTokenRequired,
	ErrTokenMalformed,
	ErrBadSignature,
	ErrTokenExpired,
	ErrWrongKind,
	ErrInvalidPayload,
	ErrStoreUnavailable,
}

func Wire(err error) string {
	for _, sentinel := range wireable {
		if stderrors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "Internal error"
}
