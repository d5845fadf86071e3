package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a backend failure. Every transport failure surfaced by
// the gateway maps to exactly one kind; anything unrecognized becomes
// KindServerFault.
type Kind string

const (
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindValidationFailed   Kind = "validation_failed"
	KindNetworkUnavailable Kind = "network_unavailable"
	KindServerFault        Kind = "server_fault"
)

// APIError is a classified backend failure. Status is zero when no HTTP
// response was received (network failures).
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

// UserMessage returns a message suitable for direct display.
func (e *APIError) UserMessage() string {
	switch e.Kind {
	case KindUnauthorized:
		return "session expired or invalid credentials, sign in again"
	case KindForbidden:
		return "you do not have permission to perform this action"
	case KindNotFound:
		return "the requested diagram does not exist"
	case KindValidationFailed:
		if e.Message != "" {
			return e.Message
		}
		return "the request was rejected as invalid"
	case KindNetworkUnavailable:
		return "could not reach the server, check your connection"
	default:
		return "the server reported an error, try again later"
	}
}

// KindOf extracts the classification from err, or KindServerFault when err
// carries none.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServerFault
}

// classifyStatus maps an HTTP response status to an error kind.
func classifyStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidationFailed
	default:
		return KindServerFault
	}
}

// statusError builds an APIError for a non-2xx response.
func statusError(status int, message string) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{Kind: classifyStatus(status), Status: status, Message: message}
}

// networkError wraps a transport failure where no response was received.
func networkError(err error) *APIError {
	return &APIError{
		Kind:    KindNetworkUnavailable,
		Message: "no response from server",
		cause:   err,
	}
}
