package domain

import (
	"errors"
	"fmt"
)

// InvalidRequestError reports bad caller input: an empty question or no usable documents.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Reason
}

// ErrNoEvidence is returned when a question is asked against an empty document set.
var ErrNoEvidence = &InvalidRequestError{Reason: "no documents available"}

// NewInvalidRequest builds an InvalidRequestError with the given reason.
func NewInvalidRequest(reason string) error {
	return &InvalidRequestError{Reason: reason}
}

// GatewayErrorKind classifies a failure talking to the text-generation backend.
type GatewayErrorKind string

const (
	GatewayTransport     GatewayErrorKind = "transport"
	GatewayAuth          GatewayErrorKind = "auth"
	GatewayStatus        GatewayErrorKind = "status"
	GatewayEmptyResponse GatewayErrorKind = "empty_response"
	GatewayTimeout       GatewayErrorKind = "timeout"
)

// ErrEmptyResponse is the cause recorded when the backend answered without generated content.
var ErrEmptyResponse = errors.New("model returned no content")

// GatewayError wraps any failure of the model round trip.
type GatewayError struct {
	Backend    string
	Kind       GatewayErrorKind
	StatusCode int
	Cause      error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s (%s, status %d): %v", e.Kind, e.Backend, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("gateway %s (%s): %v", e.Kind, e.Backend, e.Cause)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether repeating the same request could succeed.
func (e *GatewayError) Retryable() bool {
	switch e.Kind {
	case GatewayTransport, GatewayTimeout, GatewayEmptyResponse:
		return true
	case GatewayStatus:
		return e.StatusCode == 429 || e.StatusCode >= 500
	default:
		return false
	}
}

// MalformedOutputError reports model output with no recoverable answer structure.
type MalformedOutputError struct {
	Reason string
	Cause  error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed model output: %s: %v", e.Reason, e.Cause)
	}
	return "malformed model output: " + e.Reason
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}
