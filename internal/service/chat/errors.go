package chat

import (
	"fmt"
	"net/http"
)

// Kind classifies relay failures into caller-visible categories.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindConfiguration     Kind = "configuration_error"
	KindAuth              Kind = "auth_error"
	KindQuota             Kind = "quota_exceeded"
	KindRateLimit         Kind = "rate_limited"
	KindTimeout           Kind = "timeout"
	KindProvider          Kind = "provider_error"
	KindMalformedResponse Kind = "malformed_response"
)

// Error is the only error type Relay.Reply returns.
type Error struct {
	Kind Kind
	// Status is the provider HTTP status when one was received.
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error onto the /api/chat status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindQuota:
		return http.StatusPaymentRequired
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindProvider:
		if e.Status >= 400 && e.Status < 600 {
			return e.Status
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}
