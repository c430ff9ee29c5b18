package domain

import "errors"

// Code is a stable machine-readable failure category, separate from the
// human message so client UIs can branch on it.
type Code string

const (
	CodeNotFound         Code = "not_found"
	CodeForbidden        Code = "forbidden"
	CodeInvalidState     Code = "invalid_state"
	CodeTourNotPublished Code = "tour_not_published"
	CodeAlreadyEnrolled  Code = "already_enrolled"
	CodePaymentGateway   Code = "payment_gateway_error"
	CodeBadSignature     Code = "bad_signature"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

func E(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the failure category, or empty for plain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Storage-level sentinels shared by the repositories and the services that
// interpret them.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrLiveAttempt is returned when a fresh enrollment attempt loses the
	// race against an existing non-expired one for the same (user, tour).
	ErrLiveAttempt = errors.New("live enrollment attempt exists")
	// ErrStatusChanged is returned when a guarded transition finds the record
	// no longer in the expected source status.
	ErrStatusChanged = errors.New("status changed")
)
