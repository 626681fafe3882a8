package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrConfigInvalid     ErrorType = "CONFIG_INVALID"
	ErrStateInconsistent ErrorType = "STATE_INCONSISTENT"
	ErrBusinessReject    ErrorType = "BUSINESS_REJECT"
	ErrInvalidRequest    ErrorType = "INVALID_REQUEST"
	ErrNotFound          ErrorType = "NOT_FOUND"
	ErrInternal          ErrorType = "INTERNAL_ERROR"
	ErrUpstream          ErrorType = "UPSTREAM_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func Unauthorized(msg string) *AppError {
	return New(ErrUnauthorized, msg, nil)
}

func ConfigInvalid(msg string) *AppError {
	return New(ErrConfigInvalid, msg, nil)
}

// StateInconsistent flags upstream state the engine cannot safely work
// around (negative balances, missing market records). Non-retryable.
func StateInconsistent(msg string) *AppError {
	return New(ErrStateInconsistent, msg, nil)
}

// Reject is a deterministic business-rule precondition failure; the
// caller must correct the input (or wait) and resubmit.
func Reject(msg string) *AppError {
	return New(ErrBusinessReject, msg, nil)
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func NotFound(msg string) *AppError {
	return New(ErrNotFound, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrBusinessReject, ErrInvalidRequest, ErrConfigInvalid:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrStateInconsistent:
		return http.StatusConflict
	case ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrBusinessReject:
		return "Check the request against the fund's subscription and redemption rules."
	case ErrUnauthorized:
		return "Only the fund admin may perform this operation."
	case ErrStateInconsistent:
		return "Upstream ledger state is inconsistent; contact the operator."
	case ErrUpstream:
		return "Retry once the oracle/settlement collaborator recovers."
	default:
		return ""
	}
}
