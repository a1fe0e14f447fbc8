package llmgateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"knowledge-qa/internal/adapter/llmgateway"
	"knowledge-qa/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewJSONHandler(io.Discard, nil))

func chatRequest() domain.ChatRequest {
	return domain.ChatRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "You are a factual assistant."},
			{Role: domain.RoleUser, Content: "DOCUMENTS: ..."},
		},
		MaxTokens:   800,
		Temperature: 0.1,
	}
}

func TestOpenAIGenerator_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, llmgateway.DefaultOpenAIModel, body["model"])
		assert.EqualValues(t, 800, body["max_tokens"])
		assert.InDelta(t, 0.1, body["temperature"], 1e-6)
		assert.Len(t, body["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"answer\":\"ok\"}"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	gen := llmgateway.NewOpenAIGenerator("hf_test", server.URL, "", server.Client(), discard)
	text, err := gen.Complete(context.Background(), chatRequest())

	require.NoError(t, err)
	assert.Equal(t, `{"answer":"ok"}`, text)
	assert.Equal(t, "openai/"+llmgateway.DefaultOpenAIModel, gen.Version())
}

func TestOpenAIGenerator_Complete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   domain.GatewayErrorKind
		code   int
	}{
		{
			name:   "invalid api key",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Invalid credentials in Authorization header","type":"invalid_request_error"}}`,
			kind:   domain.GatewayAuth,
			code:   http.StatusUnauthorized,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"rate limit","type":"rate_limit"}}`,
			kind:   domain.GatewayStatus,
			code:   http.StatusTooManyRequests,
		},
		{
			name:   "plain text upstream failure",
			status: http.StatusServiceUnavailable,
			body:   `upstream unavailable`,
			kind:   domain.GatewayStatus,
			code:   http.StatusServiceUnavailable,
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"id":"1","choices":[]}`,
			kind:   domain.GatewayEmptyResponse,
		},
		{
			name:   "empty content",
			status: http.StatusOK,
			body:   `{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":""},"finish_reason":"length"}]}`,
			kind:   domain.GatewayEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			gen := llmgateway.NewOpenAIGenerator("hf_test", server.URL, "m", server.Client(), discard)
			_, err := gen.Complete(context.Background(), chatRequest())

			var gwErr *domain.GatewayError
			require.True(t, errors.As(err, &gwErr), "expected GatewayError, got %v", err)
			assert.Equal(t, tt.kind, gwErr.Kind)
			assert.Equal(t, tt.code, gwErr.StatusCode)
			if tt.kind == domain.GatewayEmptyResponse {
				assert.ErrorIs(t, err, domain.ErrEmptyResponse)
			}
		})
	}
}

func TestOpenAIGenerator_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and cancels r.Context().
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	gen := llmgateway.NewOpenAIGenerator("hf_test", server.URL, "m", server.Client(), discard)
	_, err := gen.Complete(ctx, chatRequest())

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, domain.GatewayTimeout, gwErr.Kind)
}

func TestOpenAIGenerator_Complete_ZeroTemperatureIsSent(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"answer\":\"ok\"}"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	req := chatRequest()
	req.Temperature = 0

	gen := llmgateway.NewOpenAIGenerator("hf_test", server.URL, "m", server.Client(), discard)
	_, err := gen.Complete(context.Background(), req)

	require.NoError(t, err)
	require.Contains(t, body, "temperature")
	assert.InDelta(t, 0, body["temperature"], 1e-6)
}
