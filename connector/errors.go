package connector

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const KIND_RATE_LIMITED ErrorKind = "RateLimited"
const KIND_UNAUTHORIZED ErrorKind = "Unauthorized"
const KIND_NOT_FOUND ErrorKind = "NotFound"
const KIND_TRANSIENT ErrorKind = "Transient"
const KIND_MALFORMED ErrorKind = "Malformed"

// Error carries the service, operation and upstream status of a failed
// connector call so the executor can record it verbatim.
type Error struct {
	Service string
	Op      string
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s failed: %s (status %d): %s", e.Service, e.Op, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s failed: %s: %s", e.Service, e.Op, e.Kind, e.Message)
}

// Retryable reports whether the dispatcher may retry the call.
func (e *Error) Retryable() bool {
	return e.Kind == KIND_TRANSIENT || e.Kind == KIND_RATE_LIMITED
}

// NewStatusError classifies an upstream HTTP status into the error taxonomy.
func NewStatusError(service, op string, status int, message string) *Error {
	var kind ErrorKind
	switch {
	case status == http.StatusTooManyRequests:
		kind = KIND_RATE_LIMITED
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KIND_UNAUTHORIZED
	case status == http.StatusNotFound:
		kind = KIND_NOT_FOUND
	case status >= 500:
		kind = KIND_TRANSIENT
	default:
		kind = KIND_MALFORMED
	}
	return &Error{Service: service, Op: op, Kind: kind, Status: status, Message: message}
}

// NewTransportError wraps a network-level failure as transient.
func NewTransportError(service, op string, err error) *Error {
	return &Error{Service: service, Op: op, Kind: KIND_TRANSIENT, Message: err.Error()}
}

// ErrRateLimitTimeout is returned when a token could not be acquired before
// the caller's deadline. It is not retryable at the dispatch layer; the
// executor's fail-fast policy applies.
var ErrRateLimitTimeout = errors.New("rate limit token not acquired before deadline")

func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
