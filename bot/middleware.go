package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/tbxark/hrbot/agent"
)

// Handler runs one transition.
type Handler interface {
	Handle(ctx context.Context, req *agent.Request) (*agent.Response, error)
}

type HandlerFunc func(ctx context.Context, req *agent.Request) (*agent.Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req *agent.Request) (*agent.Response, error) {
	return f(ctx, req)
}

// Middleware wraps transition execution with cross-cutting behavior. It has
// no say in the dialog itself.
type Middleware func(next Handler) Handler

// Chain applies mws so that the first one runs outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// Typing shows a typing indicator before each transition. Notifier errors
// are logged and otherwise ignored.
func Typing(notifier TypingNotifier) Middleware {
	return func(next Handler) Handler {
		if notifier == nil {
			return next
		}
		return HandlerFunc(func(ctx context.Context, req *agent.Request) (*agent.Response, error) {
			if err := notifier.NotifyTyping(ctx, req.ConversationID); err != nil {
				slog.Warn("Failed to send typing indicator", "conversation_id", req.ConversationID, "error", err)
			}
			return next.Handle(ctx, req)
		})
	}
}

// Recover turns a panic into an error so the caller can still answer.
func Recover() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *agent.Request) (resp *agent.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Recovered from panic in turn", "conversation_id", req.ConversationID, "panic", r, "stack", string(debug.Stack()))
					resp, err = nil, fmt.Errorf("recover from panic: %v", r)
				}
			}()
			return next.Handle(ctx, req)
		})
	}
}

type turnIDContext struct{}

// TurnIDFromContext returns the id Logging assigned to the running turn.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(turnIDContext{}).(string)
	return id, ok
}

// Logging tags each turn with a fresh id and logs its outcome.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *agent.Request) (*agent.Response, error) {
			turnID := uuid.NewString()
			ctx = context.WithValue(ctx, turnIDContext{}, turnID)
			start := time.Now()
			resp, err := next.Handle(ctx, req)
			if err != nil {
				logger.Error("Turn failed", "turn_id", turnID, "conversation_id", req.ConversationID, "error", err)
				return resp, err
			}
			logger.Info("Turn handled",
				"turn_id", turnID,
				"conversation_id", req.ConversationID,
				"state", resp.State,
				"steps", len(resp.Steps),
				"duplicate", resp.Duplicate,
				"duration", time.Since(start),
			)
			return resp, nil
		})
	}
}
