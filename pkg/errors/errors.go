package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so cloned values still compare equal to the predefined ones.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrTimeout      = New("TIMEOUT", http.StatusGatewayTimeout, "operation timed out")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	ErrInvalidAmount      = New("INVALID_AMOUNT", http.StatusBadRequest, "invalid payment amount")
	ErrSplitMismatch      = New("SPLIT_MISMATCH", http.StatusBadRequest, "payment parts do not add up to the amount")
	ErrInsufficientPoints = New("INSUFFICIENT_POINTS", http.StatusBadRequest, "insufficient loyalty points")
	ErrMalformedCode      = New("MALFORMED_CODE", http.StatusBadRequest, "malformed code")

	ErrSubscriptionNotFound = New("SUBSCRIPTION_NOT_FOUND", http.StatusNotFound, "subscription not found")
	ErrCodeNotFound         = New("CODE_NOT_FOUND", http.StatusNotFound, "code not found")
	ErrUnknownStaff         = New("UNKNOWN_STAFF", http.StatusNotFound, "unknown staff member")
	ErrMemberNotFound       = New("MEMBER_NOT_FOUND", http.StatusNotFound, "member not found")

	ErrNoSessionsRemaining = New("NO_SESSIONS_REMAINING", http.StatusConflict, "no sessions remaining")
	ErrCodeAlreadyUsed     = New("CODE_ALREADY_USED", http.StatusConflict, "code already used")
	ErrStaffCooldown       = New("STAFF_COOLDOWN", http.StatusConflict, "staff member checked out too recently")
	ErrDuplicateNumber     = New("DUPLICATE_NUMBER", http.StatusConflict, "number already in use")

	ErrServiceDisabled = New("SERVICE_DISABLED", http.StatusForbidden, "service type is disabled")
)

// Kind groups error codes into the operator facing taxonomy.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindServiceDisabled Kind = "service_disabled"
	KindUnauthorized    Kind = "unauthorized"
	KindSystem          Kind = "system"
)

var kindByCode = map[string]Kind{
	ErrValidation.Code:           KindValidation,
	ErrInvalidAmount.Code:        KindValidation,
	ErrSplitMismatch.Code:        KindValidation,
	ErrInsufficientPoints.Code:   KindValidation,
	ErrMalformedCode.Code:        KindValidation,
	ErrNotFound.Code:             KindNotFound,
	ErrSubscriptionNotFound.Code: KindNotFound,
	ErrCodeNotFound.Code:         KindNotFound,
	ErrUnknownStaff.Code:         KindNotFound,
	ErrMemberNotFound.Code:       KindNotFound,
	ErrConflict.Code:             KindConflict,
	ErrNoSessionsRemaining.Code:  KindConflict,
	ErrCodeAlreadyUsed.Code:      KindConflict,
	ErrStaffCooldown.Code:        KindConflict,
	ErrDuplicateNumber.Code:      KindConflict,
	ErrServiceDisabled.Code:      KindServiceDisabled,
	ErrUnauthorized.Code:         KindUnauthorized,
	ErrForbidden.Code:            KindUnauthorized,
}

// KindOf reports the taxonomy kind of err. Unknown errors are system failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindSystem
	}
	var e *Error
	if errors.As(err, &e) {
		if kind, ok := kindByCode[e.Code]; ok {
			return kind
		}
	}
	return KindSystem
}

// IsScanRejection reports whether a scan was refused for a business reason (do not retry)
// rather than failing on storage, network or a deadline.
func IsScanRejection(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindNotFound, KindConflict, KindServiceDisabled:
		return true
	default:
		return false
	}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrTimeout.Code, ErrTimeout.Status, ErrTimeout.Message)
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
