package llmgateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"knowledge-qa/internal/domain"

	"github.com/cenkalti/backoff/v5"
)

// Retrying repeats retryable gateway failures with exponential backoff.
// The request is read-only, so repeating it has no side effects.
type Retrying struct {
	next       domain.LLMClient
	maxRetries uint
	initial    time.Duration
	logger     *slog.Logger
}

// NewRetrying wraps next. With maxRetries == 0 next is returned unwrapped.
func NewRetrying(next domain.LLMClient, maxRetries uint, initial time.Duration, logger *slog.Logger) domain.LLMClient {
	if maxRetries == 0 {
		return next
	}
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{next: next, maxRetries: maxRetries, initial: initial, logger: logger}
}

func (r *Retrying) newBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initial
	bo.MaxInterval = 10 * r.initial
	bo.Multiplier = 2
	return bo
}

func (r *Retrying) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	attempt := 0
	operation := func() (string, error) {
		attempt++
		text, err := r.next.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) && gwErr.Retryable() {
			return "", err
		}
		return "", backoff.Permanent(err)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(r.newBackoff()),
		backoff.WithMaxTries(r.maxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.logger.WarnContext(ctx, "retrying model gateway call",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.String("error", err.Error()),
			)
		}),
	)
}

func (r *Retrying) Version() string {
	return r.next.Version()
}

var _ domain.LLMClient = (*Retrying)(nil)
