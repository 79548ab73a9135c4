package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches a 401 from an authenticated call.
	ErrUnauthorized = errors.New("gateway: unauthorized")
	// ErrForbidden matches a 403: blocked on login, deactivated on auth/me.
	ErrForbidden = errors.New("gateway: forbidden")
	// ErrNotFound matches a 404.
	ErrNotFound = errors.New("gateway: not found")
	// ErrUnavailable matches transport failures and 5xx responses.
	ErrUnavailable = errors.New("gateway: unavailable")
	// ErrRejected matches a 2xx response carrying success=false.
	ErrRejected = errors.New("gateway: rejected")
)

// Error describes a failed gateway operation. Status is 0 when no HTTP
// response was received.
type Error struct {
	Op       string
	Status   int
	Message  string
	Rejected bool
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnavailable:
		return e.Status == 0 || e.Status >= http.StatusInternalServerError
	case ErrRejected:
		return e.Rejected
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Status
	}
	return 0
}

// MessageOf returns the gateway supplied message, or fallback.
func MessageOf(err error, fallback string) string {
	var gwErr *Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	return fallback
}

// IsSessionEnding reports whether an authenticated call failed in a way that
// must end the local session.
func IsSessionEnding(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}
