package llmgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"knowledge-qa/internal/domain"
)

const keepAlive = "10m"

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model     string                 `json:"model"`
	Messages  []ollamaMessage        `json:"messages"`
	Stream    bool                   `json:"stream"`
	KeepAlive string                 `json:"keep_alive,omitempty"`
	Format    string                 `json:"format,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// OllamaGenerator sends chat requests to Ollama's /api/chat endpoint.
type OllamaGenerator struct {
	BaseURL string
	Model   string
	Client  *http.Client
	logger  *slog.Logger
}

// NewOllamaGenerator constructs a generator using the provided endpoint and default model name.
func NewOllamaGenerator(baseURL, model string, client *http.Client, logger *slog.Logger) *OllamaGenerator {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaGenerator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  client,
		logger:  logger,
	}
}

func (g *OllamaGenerator) buildOptions(req domain.ChatRequest) map[string]interface{} {
	opts := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}
	return opts
}

// Complete sends the request and returns the assistant message.
func (g *OllamaGenerator) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = g.Model
	}

	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}

	payload, err := json.Marshal(ollamaChatRequest{
		Model:     model,
		Messages:  messages,
		Stream:    false,
		KeepAlive: keepAlive,
		Format:    "json",
		Options:   g.buildOptions(req),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(httpReq)
	if err != nil {
		return "", classify(g.Version(), fmt.Errorf("failed to call generation endpoint: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", statusError(g.Version(), resp.StatusCode, fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body)))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", classify(g.Version(), fmt.Errorf("failed to decode generation response: %w", err))
	}

	content := strings.TrimSpace(chatResp.Message.Content)
	if content == "" {
		g.logger.WarnContext(ctx, "ollama returned empty content", slog.String("model", model), slog.Bool("done", chatResp.Done))
		return "", emptyResponse(g.Version())
	}
	return content, nil
}

// Version returns the backend and model name.
func (g *OllamaGenerator) Version() string {
	return "ollama/" + g.Model
}

var _ domain.LLMClient = (*OllamaGenerator)(nil)
