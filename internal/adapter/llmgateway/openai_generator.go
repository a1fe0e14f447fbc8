package llmgateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"knowledge-qa/internal/domain"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIBaseURL = "https://router.huggingface.co/v1"
	DefaultOpenAIModel   = "mistralai/Mistral-7B-Instruct-v0.2"
)

// OpenAIGenerator talks to any OpenAI-compatible chat completions endpoint.
// The default base URL is the HuggingFace inference router.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIGenerator creates a generator. Empty baseURL and model fall back to the HuggingFace defaults.
func NewOpenAIGenerator(apiKey, baseURL, model string, httpClient *http.Client, logger *slog.Logger) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// Complete sends the chat request and returns the first choice's content.
func (o *OpenAIGenerator) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: wireTemperature(req.Temperature),
	})
	if err != nil {
		o.logger.ErrorContext(ctx, "chat completion call failed", slog.String("model", model), slog.String("error", err.Error()))
		return "", o.classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", emptyResponse(o.Version())
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		o.logger.WarnContext(ctx, "chat completion returned empty content",
			slog.String("model", model),
			slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		)
		return "", emptyResponse(o.Version())
	}
	return content, nil
}

// wireTemperature keeps a zero temperature on the wire. go-openai drops 0 via omitempty,
// which lets the backend fall back to its own default.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func (o *OpenAIGenerator) classifyError(err error) *domain.GatewayError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusError(o.Version(), apiErr.HTTPStatusCode, fmt.Errorf("chat completion failed: %w", err))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusError(o.Version(), reqErr.HTTPStatusCode, fmt.Errorf("chat completion failed: %w", err))
	}
	return classify(o.Version(), fmt.Errorf("chat completion failed: %w", err))
}

// Version returns the backend and model name.
func (o *OpenAIGenerator) Version() string {
	return "openai/" + o.model
}

var _ domain.LLMClient = (*OpenAIGenerator)(nil)
