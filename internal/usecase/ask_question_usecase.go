package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"knowledge-qa/internal/domain"

	"github.com/google/uuid"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 50
)

// AskQuestionUsecase answers a question against every stored document and records it.
type AskQuestionUsecase interface {
	Execute(ctx context.Context, question string) (*domain.QARecord, error)
	History(ctx context.Context, limit int) ([]domain.QARecord, error)
}

type askQuestionUsecase struct {
	docs    domain.DocumentRepository
	history domain.HistoryRepository
	answers GroundedAnswerService
	now     func() time.Time
	logger  *slog.Logger
}

// NewAskQuestionUsecase creates the question workflow.
func NewAskQuestionUsecase(
	docs domain.DocumentRepository,
	history domain.HistoryRepository,
	answers GroundedAnswerService,
	logger *slog.Logger,
) AskQuestionUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &askQuestionUsecase{
		docs:    docs,
		history: history,
		answers: answers,
		now:     time.Now,
		logger:  logger,
	}
}

func (u *askQuestionUsecase) Execute(ctx context.Context, question string) (*domain.QARecord, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.NewInvalidRequest("question is required")
	}

	refs, err := u.docs.ListRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(refs) == 0 {
		return nil, domain.ErrNoEvidence
	}

	answer, err := u.answers.Answer(ctx, question, refs)
	if err != nil {
		return nil, err
	}

	record := &domain.QARecord{
		ID:       uuid.NewString(),
		Question: question,
		Answer:   answer.Answer,
		Sources:  answer.Sources,
		AskedAt:  u.now().UTC(),
	}
	if err := u.history.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save history: %w", err)
	}

	u.logger.InfoContext(ctx, "question answered",
		slog.String("record_id", record.ID),
		slog.Int("documents", len(refs)),
		slog.Int("sources", len(record.Sources)),
	)
	return record, nil
}

func (u *askQuestionUsecase) History(ctx context.Context, limit int) ([]domain.QARecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	records, err := u.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}
