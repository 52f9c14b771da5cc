package apierrors

import (
	"fmt"
	"net/http"
)

// Error codes returned to API clients.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeCalculationError   = "CALCULATION_ERROR"
	CodeIllegalTransition  = "ILLEGAL_TRANSITION"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeOfferNotFound      = "OFFER_NOT_FOUND"
	CodeProgressNotFound   = "PROGRESS_NOT_FOUND"
	CodeBetNotFound        = "BET_NOT_FOUND"
	CodeBetLinked          = "BET_LINKED"
	CodeBetAlreadySettled  = "BET_ALREADY_SETTLED"
	CodePreferenceConflict = "PREFERENCE_CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeRateLimited        = "RATE_LIMITED"
	CodeLeaderboardError   = "LEADERBOARD_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// APIError is an error that knows how it is presented to a client.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	// Details carries structured context such as the offending field or stage.
	Details map[string]string
	// Err is the underlying error; it is logged but never sent.
	Err error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// WithDetail returns e with key set in its details.
func (e *APIError) WithDetail(key, value string) *APIError {
	if value == "" {
		return e
	}
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func BadRequest(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: code, Message: message}
}

func NotFound(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusNotFound, Code: code, Message: message}
}

func Conflict(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusConflict, Code: code, Message: message}
}

func Unprocessable(code, message string) *APIError {
	return &APIError{StatusCode: http.StatusUnprocessableEntity, Code: code, Message: message}
}

func Unauthorized(message string) *APIError {
	return &APIError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

func Forbidden(message string) *APIError {
	return &APIError{StatusCode: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

func TooManyRequests(message string) *APIError {
	return &APIError{StatusCode: http.StatusTooManyRequests, Code: CodeRateLimited, Message: message}
}

// ServiceUnavailable keeps the internal error for logging.
func ServiceUnavailable(code, message string, err error) *APIError {
	return &APIError{StatusCode: http.StatusServiceUnavailable, Code: code, Message: message, Err: err}
}

// InternalError is sanitized - never exposes internal details
func InternalError(err error) *APIError {
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    "An internal error occurred. Please try again later.",
		Err:        err,
	}
}
