package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind categorizes provider failures for operator diagnosis.
type ErrorKind string

const (
	ErrAuth        ErrorKind = "auth"
	ErrRateLimited ErrorKind = "rate_limited"
	ErrTimeout     ErrorKind = "timeout"
	ErrUnavailable ErrorKind = "unavailable"
	ErrMalformed   ErrorKind = "malformed_response"
	ErrUnknown     ErrorKind = "unknown"
)

// ProviderError wraps an upstream failure with its category and whether
// retrying the same request could plausibly succeed.
type ProviderError struct {
	Provider  string
	Kind      ErrorKind
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a ProviderError.
func classifyStatus(provider string, status int, err error) *ProviderError {
	kind := ErrUnknown
	retryable := false
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ErrAuth
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
		retryable = true
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = ErrTimeout
		retryable = true
	case status >= 500:
		kind = ErrUnavailable
		retryable = true
	}
	return &ProviderError{Provider: provider, Kind: kind, Retryable: retryable, Err: err}
}

// wrapTransport turns low-level transport failures into ProviderErrors.
// Context deadline expiry is a timeout; everything else counts as the
// upstream being unavailable.
func wrapTransport(provider string, err error) *ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Kind: ErrTimeout, Retryable: true, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Provider: provider, Kind: ErrUnknown, Retryable: false, Err: err}
	}
	return &ProviderError{Provider: provider, Kind: ErrUnavailable, Retryable: true, Err: err}
}

// Retryable reports whether err is a provider error worth retrying.
func Retryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// KindOf returns the error category, or ErrUnknown for non-provider errors.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrUnknown
}
