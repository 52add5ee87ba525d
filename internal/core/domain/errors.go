package domain

import "errors"

var (
	// ErrParse: coordinate text is not a finite number.
	ErrParse = errors.New("coordinate parse error")
	// ErrRange: coordinate outside latitude/longitude bounds.
	ErrRange = errors.New("coordinate out of range")
	// ErrUnauthenticated: no user identity for a persistence call.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound: no document saved for the user yet.
	ErrNotFound = errors.New("not found")
	// ErrTransport: network or backend failure.
	ErrTransport = errors.New("transport error")
	// ErrBridgeNotReady: reconciliation requested before the map surface loaded.
	ErrBridgeNotReady = errors.New("map bridge not ready")
	// ErrInvalidMessage: a bridge message does not match the tagged schema.
	ErrInvalidMessage = errors.New("invalid bridge message")
	// ErrValidation: a request payload failed validation.
	ErrValidation = errors.New("validation failed")
)

// IsInputError reports whether err is caused by user input rather than by
// a backend failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrRange) ||
		errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidMessage)
}
