package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies API failures by how the caller should react.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuth is a 401/403: the token must be discarded.
	KindAuth
	// KindValidation is a 422 with per-field messages.
	KindValidation
	// KindConflict is a 400 carrying a human-readable detail, e.g. "already in use".
	KindConflict
	// KindNetwork means no response was received.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	Kind       Kind
	StatusCode int
	// Message is user-facing.
	Message string
	// Detail is the raw backend detail when it differs from Message.
	Detail string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NetworkError wraps a transport failure where no response arrived.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsAuth reports whether err is a 401 or 403 from the API.
func IsAuth(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden)
}

// KindOf classifies err. Errors that did not come from the API are KindUnknown.
func KindOf(err error) Kind {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
