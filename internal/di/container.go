package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"knowledge-qa/internal/adapter/llmgateway"
	"knowledge-qa/internal/adapter/qahttp"
	"knowledge-qa/internal/adapter/repository"
	"knowledge-qa/internal/domain"
	"knowledge-qa/internal/infra"
	"knowledge-qa/internal/infra/config"
	"knowledge-qa/internal/infra/httpclient"
	"knowledge-qa/internal/usecase"
)

const retryInitialInterval = 500 * time.Millisecond

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	DocRepo     domain.DocumentRepository
	HistoryRepo domain.HistoryRepository

	// Model gateway, including the retry decorator when enabled
	LLM domain.LLMClient

	// Usecases
	DocumentUsecase usecase.DocumentUsecase
	AskUsecase      usecase.AskQuestionUsecase

	Handler *qahttp.Handler

	// Close releases storage resources.
	Close func()
}

// NewApplicationComponents wires all dependencies from config.
// With the postgres backend it connects, ensures the schema and owns the pool.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, log *slog.Logger) (*ApplicationComponents, error) {
	comps := &ApplicationComponents{Close: func() {}}

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := infra.NewPostgresDB(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		txManager := repository.NewPostgresTransactionManager(pool)
		if err := repository.EnsureSchema(ctx, pool, txManager); err != nil {
			pool.Close()
			return nil, err
		}
		comps.DocRepo = repository.NewDocumentRepository(pool)
		comps.HistoryRepo = repository.NewHistoryRepository(pool)
		comps.Close = pool.Close
	default:
		comps.DocRepo = repository.NewMemoryDocumentRepository()
		comps.HistoryRepo = repository.NewMemoryHistoryRepository()
	}

	llm, err := NewLLMClient(cfg.LLM, log)
	if err != nil {
		comps.Close()
		return nil, err
	}
	comps.LLM = llm

	answers, err := usecase.NewGroundedAnswerService(
		usecase.NewContextAssembler(cfg.QA.MaxEvidenceChars),
		usecase.NewPromptBuilder(usecase.PromptOptions{
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		}),
		llm,
		usecase.NewAnswerExtractor(),
		cfg.LLM.Timeout,
		log,
	)
	if err != nil {
		comps.Close()
		return nil, fmt.Errorf("failed to create answer service: %w", err)
	}

	comps.DocumentUsecase = usecase.NewDocumentUsecase(comps.DocRepo, cfg.QA.MaxUploadBytes, log)
	comps.AskUsecase = usecase.NewAskQuestionUsecase(comps.DocRepo, comps.HistoryRepo, answers, log)
	comps.Handler = qahttp.NewHandler(comps.DocumentUsecase, comps.AskUsecase, cfg.QA.MaxUploadBytes, log)

	return comps, nil
}

// NewLLMClient builds the configured model backend on the shared HTTP transport.
func NewLLMClient(cfg config.LLMConfig, log *slog.Logger) (domain.LLMClient, error) {
	httpClient := httpclient.NewPooledClient(cfg.Timeout)

	var client domain.LLMClient
	switch cfg.Backend {
	case config.LLMBackendOpenAI:
		client = llmgateway.NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model, httpClient, log)
	case config.LLMBackendOllama:
		client = llmgateway.NewOllamaGenerator(cfg.OllamaURL, cfg.Model, httpClient, log)
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.Backend)
	}

	return llmgateway.NewRetrying(client, cfg.MaxRetries, retryInitialInterval, log), nil
}
