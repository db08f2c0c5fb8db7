package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed pipeline operation. Only KindTransient is
// worth retrying; every other kind aborts the call immediately.
type ErrorKind int

const (
	KindTransient ErrorKind = iota // network / 5xx-class failures
	KindQuotaExceeded              // daily API call budget exhausted
	KindInvalidCredential          // API key rejected
	KindBadRequest                 // malformed request parameters
	KindNotFound                   // referenced entity does not exist
	KindInvalidInput               // caller-side input error, never sent upstream
)

// String returns the kind's wire name.
func (k ErrorKind) String() string {
	switch k {
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "transient"
	}
}

// APIError is a classified remote-call failure. Reason carries the upstream
// error reason string (e.g. "quotaExceeded") when the API supplied one.
type APIError struct {
	Kind    ErrorKind
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube api: %s (%s): %s", e.Kind, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube api: %s: %s", e.Kind, e.Message)
}

// Retryable reports whether the error is transient.
func (e *APIError) Retryable() bool {
	return e.Kind == KindTransient
}

// InputError builds a caller-input error (malformed URL, empty query).
func InputError(format string, args ...any) error {
	return &APIError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError builds a missing-entity error.
func NotFoundError(format string, args ...any) error {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Kind extracts the classification from err. Errors that are not APIError
// (plain network failures, timeouts) count as transient.
func Kind(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransient
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	return Kind(err) == KindTransient
}
