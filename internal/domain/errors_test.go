package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGatewayError_Retryable(t *testing.T) {
	tests := []struct {
		name string
		err  *GatewayError
		want bool
	}{
		{"transport", &GatewayError{Kind: GatewayTransport}, true},
		{"timeout", &GatewayError{Kind: GatewayTimeout}, true},
		{"empty response", &GatewayError{Kind: GatewayEmptyResponse}, true},
		{"rate limited", &GatewayError{Kind: GatewayStatus, StatusCode: 429}, true},
		{"server error", &GatewayError{Kind: GatewayStatus, StatusCode: 503}, true},
		{"bad request", &GatewayError{Kind: GatewayStatus, StatusCode: 400}, false},
		{"auth", &GatewayError{Kind: GatewayAuth, StatusCode: 401}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Retryable())
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	gw := fmt.Errorf("answer: %w", &GatewayError{Backend: "openai/m", Kind: GatewayTimeout, Cause: context.DeadlineExceeded})
	assert.ErrorIs(t, gw, context.DeadlineExceeded)
	assert.Contains(t, gw.Error(), "gateway timeout (openai/m)")

	var invalid *InvalidRequestError
	assert.True(t, errors.As(fmt.Errorf("ask: %w", ErrNoEvidence), &invalid))
	assert.Equal(t, "no documents available", invalid.Reason)

	cause := errors.New("unexpected end of JSON input")
	malformed := &MalformedOutputError{Reason: "invalid json", Cause: cause}
	assert.ErrorIs(t, malformed, cause)
	assert.Equal(t, "malformed model output: invalid json: unexpected end of JSON input", malformed.Error())
}
