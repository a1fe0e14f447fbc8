package llmgateway

import (
	"context"
	"errors"
	"net/http"

	"knowledge-qa/internal/domain"
)

// classify turns a transport-level failure into a GatewayError.
func classify(backend string, err error) *domain.GatewayError {
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.GatewayError{Backend: backend, Kind: domain.GatewayTimeout, Cause: err}
	}
	return &domain.GatewayError{Backend: backend, Kind: domain.GatewayTransport, Cause: err}
}

// statusError classifies a non-2xx response from the backend.
func statusError(backend string, code int, cause error) *domain.GatewayError {
	kind := domain.GatewayStatus
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		kind = domain.GatewayAuth
	}
	return &domain.GatewayError{Backend: backend, Kind: kind, StatusCode: code, Cause: cause}
}

func emptyResponse(backend string) *domain.GatewayError {
	return &domain.GatewayError{Backend: backend, Kind: domain.GatewayEmptyResponse, Cause: domain.ErrEmptyResponse}
}
