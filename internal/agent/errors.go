package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an agent call failure. The kind decides whether the
// retry loop may attempt the call again.
type Kind string

const (
	KindTimeout           Kind = "timeout"
	KindNetworkError      Kind = "network_error"
	KindRateLimited       Kind = "rate_limited"
	KindServerError       Kind = "server_error"
	KindAuthError         Kind = "auth_error"
	KindClientError       Kind = "client_error"
	KindMalformedResponse Kind = "malformed_response"
)

// Retryable reports whether a failure of this kind is transient.
// Malformed responses are handled separately: they get exactly one retry.
func (k Kind) Retryable() bool {
	switch k {
	case KindTimeout, KindNetworkError, KindRateLimited, KindServerError:
		return true
	}
	return false
}

// Error is a classified agent call failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from an error returned by a client.
// Unclassified errors are reported as network failures.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindNetworkError
}

// classifyStatus maps an HTTP status code to a failure kind.
func classifyStatus(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuthError
	case code >= 500:
		return KindServerError
	case code >= 400:
		return KindClientError
	default:
		return KindMalformedResponse
	}
}

// statusError wraps an HTTP error status into a classified error.
func statusError(code int, body string) *Error {
	const maxBody = 200
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	return newError(classifyStatus(code), "unexpected status %d: %s", code, body)
}
