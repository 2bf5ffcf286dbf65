package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Recorder receives one observation per completed generation call.
type Recorder interface {
	ObserveGeneration(backend, status string, duration time.Duration)
}

const (
	StatusSuccess   = "success"
	StatusHTTPError = "http_error"
	StatusTimeout   = "timeout"
	StatusFailed    = "error"
)

func Classify(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return StatusSuccess
	case errors.As(err, &statusErr):
		return StatusHTTPError
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	default:
		return StatusFailed
	}
}

// WithTimeout bounds every call. A zero duration leaves calls unbounded.
func WithTimeout(d time.Duration) Middleware {
	return func(next Completer) Completer {
		if d <= 0 {
			return next
		}
		return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
			timeoutCtx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next.Complete(timeoutCtx, prompt)
		})
	}
}

func WithLogging(logger *slog.Logger, backend string) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Completer) Completer {
		return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
			start := time.Now()
			logger.Debug("Generation request", "backend", backend, "prompt_len", len(prompt))
			text, err := next.Complete(ctx, prompt)
			if err != nil {
				logger.Warn("Generation failed", "backend", backend, "status", Classify(err), "duration", time.Since(start), "error", err)
				return text, err
			}
			logger.Debug("Generation completed", "backend", backend, "duration", time.Since(start), "result_len", len(text))
			return text, nil
		})
	}
}

func WithMetrics(recorder Recorder, backend string) Middleware {
	return func(next Completer) Completer {
		if recorder == nil {
			return next
		}
		return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
			start := time.Now()
			text, err := next.Complete(ctx, prompt)
			recorder.ObserveGeneration(backend, Classify(err), time.Since(start))
			return text, err
		})
	}
}
