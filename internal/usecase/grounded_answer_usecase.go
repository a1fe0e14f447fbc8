package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"knowledge-qa/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const DefaultGatewayTimeout = 60 * time.Second

// Answer outcomes recorded on qa_answers_total.
const (
	outcomeOK             = "ok"
	outcomeInvalid        = "invalid_request"
	outcomeGatewayError   = "gateway_error"
	outcomeGatewayTimeout = "gateway_timeout"
	outcomeMalformed      = "malformed_output"
)

// GroundedAnswerService answers one question strictly from the supplied documents.
type GroundedAnswerService interface {
	Answer(ctx context.Context, question string, documents []domain.DocumentRef) (*domain.GroundedAnswer, error)
}

type groundedAnswerService struct {
	assembler ContextAssembler
	prompts   PromptBuilder
	llm       domain.LLMClient
	extractor AnswerExtractor
	timeout   time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *answerMetrics
}

// NewGroundedAnswerService wires the assembler, prompt builder, gateway and extractor together.
// A zero timeout falls back to DefaultGatewayTimeout.
func NewGroundedAnswerService(
	assembler ContextAssembler,
	prompts PromptBuilder,
	llm domain.LLMClient,
	extractor AnswerExtractor,
	timeout time.Duration,
	logger *slog.Logger,
) (GroundedAnswerService, error) {
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	metrics, err := newAnswerMetrics()
	if err != nil {
		return nil, err
	}
	return &groundedAnswerService{
		assembler: assembler,
		prompts:   prompts,
		llm:       llm,
		extractor: extractor,
		timeout:   timeout,
		logger:    logger,
		tracer:    otel.Tracer(instrumentationName),
		metrics:   metrics,
	}, nil
}

func (s *groundedAnswerService) Answer(ctx context.Context, question string, documents []domain.DocumentRef) (*domain.GroundedAnswer, error) {
	ctx, span := s.tracer.Start(ctx, "GroundedAnswer.Answer",
		trace.WithAttributes(attribute.Int("qa.documents.count", len(documents))),
	)
	defer span.End()

	question = strings.TrimSpace(question)
	if err := validateAnswerInput(question, documents); err != nil {
		s.record(ctx, outcomeInvalid)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	evidence := s.assembler.Assemble(documents)
	if evidence.Omitted > 0 || evidence.Truncated {
		s.logger.WarnContext(ctx, "evidence exceeded size cap",
			slog.Int("included", len(evidence.Included)),
			slog.Int("omitted", evidence.Omitted),
			slog.Bool("truncated", evidence.Truncated),
		)
	}
	req := s.prompts.Build(question, evidence.Text)

	raw, err := s.complete(ctx, req)
	if err != nil {
		var gwErr *domain.GatewayError
		outcome := outcomeGatewayError
		if errors.As(err, &gwErr) && gwErr.Kind == domain.GatewayTimeout {
			outcome = outcomeGatewayTimeout
		}
		s.logger.ErrorContext(ctx, "model gateway call failed", slog.String("error", err.Error()))
		s.record(ctx, outcome)
		span.RecordError(err)
		span.SetStatus(codes.Error, "gateway failure")
		return nil, err
	}

	res, err := s.extractor.ExtractWithStats(raw, evidence.KnownIDs())
	if err != nil {
		s.logger.WarnContext(ctx, "model output could not be parsed",
			slog.String("error", err.Error()),
			slog.Int("raw_length", len(raw)),
		)
		s.record(ctx, outcomeMalformed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed output")
		return nil, err
	}

	if res.Repaired > 0 {
		s.metrics.sourcesRepaired.Add(ctx, int64(res.Repaired))
		s.logger.InfoContext(ctx, "repaired citations with unknown document ids", slog.Int("count", res.Repaired))
	}
	span.SetAttributes(attribute.Int("qa.sources.count", len(res.Answer.Sources)))
	s.record(ctx, outcomeOK)
	return res.Answer, nil
}

// complete bounds the gateway call with the service timeout.
func (s *groundedAnswerService) complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.llm.Complete(callCtx, req)
	s.metrics.gatewayDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("backend", s.llm.Version())),
	)
	if err == nil {
		return raw, nil
	}

	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		if timedOut && gwErr.Kind != domain.GatewayTimeout {
			return "", &domain.GatewayError{Backend: gwErr.Backend, Kind: domain.GatewayTimeout, Cause: gwErr.Cause}
		}
		return "", err
	}
	if timedOut {
		return "", &domain.GatewayError{Backend: s.llm.Version(), Kind: domain.GatewayTimeout, Cause: err}
	}
	return "", &domain.GatewayError{Backend: s.llm.Version(), Kind: domain.GatewayTransport, Cause: err}
}

func (s *groundedAnswerService) record(ctx context.Context, outcome string) {
	s.metrics.answersTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func validateAnswerInput(question string, documents []domain.DocumentRef) error {
	if question == "" {
		return domain.NewInvalidRequest("question is required")
	}
	if len(documents) == 0 {
		return domain.ErrNoEvidence
	}
	seen := make(map[string]struct{}, len(documents))
	for _, doc := range documents {
		if strings.TrimSpace(doc.ID) == "" {
			return domain.NewInvalidRequest("document id is required")
		}
		if _, dup := seen[doc.ID]; dup {
			return domain.NewInvalidRequest("duplicate document id")
		}
		seen[doc.ID] = struct{}{}
	}
	return nil
}
