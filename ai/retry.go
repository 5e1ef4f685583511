package ai

import (
	"context"
	"log/slog"
	"time"
)

// Backoff is an exponential retry policy. The delay before attempt n+1 is
// BaseDelay * 2^(n-1), capped at MaxDelay when MaxDelay is positive.
type Backoff struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultBackoff retries an embedding call up to three times.
func DefaultBackoff() Backoff {
	return Backoff{
		Attempts:  3,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  10 * time.Second,
	}
}

// Delay returns the pause after the given failed attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	delay := b.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if b.MaxDelay > 0 && delay >= b.MaxDelay {
			return b.MaxDelay
		}
	}
	if b.MaxDelay > 0 && delay > b.MaxDelay {
		return b.MaxDelay
	}
	return delay
}

// Retry runs operation until it succeeds, the attempts are used up or ctx is
// done. It returns the error from the last attempt.
func (b Backoff) Retry(ctx context.Context, operation func(ctx context.Context) error) error {
	if b.Attempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= b.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("embedding call succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		slog.Debug("embedding call failed", "attempt", attempt, "maxAttempts", b.Attempts, "err", lastErr)
		if attempt == b.Attempts {
			break
		}

		timer := time.NewTimer(b.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// RetryingEmbedder wraps an Embedder so every call is retried with backoff.
type RetryingEmbedder struct {
	inner   Embedder
	backoff Backoff
}

var _ Embedder = (*RetryingEmbedder)(nil)

// WithRetry wraps e. A policy of a single attempt returns e unchanged.
func WithRetry(e Embedder, b Backoff) Embedder {
	if b.Attempts <= 1 {
		return e
	}
	return &RetryingEmbedder{inner: e, backoff: b}
}

func (r *RetryingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := r.backoff.Retry(ctx, func(ctx context.Context) error {
		var err error
		vector, err = r.inner.EmbedText(ctx, text)
		return err
	})
	return vector, err
}

func (r *RetryingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := r.backoff.Retry(ctx, func(ctx context.Context) error {
		var err error
		vectors, err = r.inner.EmbedTexts(ctx, texts)
		return err
	})
	return vectors, err
}
