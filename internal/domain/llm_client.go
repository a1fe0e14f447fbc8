package domain

import "context"

// Message is a single chat turn sent to a text-generation backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatRequest is the backend-neutral request shape: model identifier, ordered messages,
// output token cap and sampling temperature. An empty Model means the backend default.
type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// LLMClient defines the capability to send a chat request to a text-generation backend
// and receive the generated text. Implementations return *GatewayError on failure.
type LLMClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
	Version() string
}
