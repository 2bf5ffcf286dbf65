// Package generation wraps the single remote text-generation call. Backends
// implement Completer and may fail; Client turns every failure into text the
// user can read, so callers never see an error.
package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbxark/hrbot/types"
)

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type Middleware func(next Completer) Completer

// Chain wraps c so that the first middleware is the outermost.
func Chain(c Completer, mws ...Middleware) Completer {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			c = mws[i](c)
		}
	}
	return c
}

// Reply is the outcome of one generation call. Text is always displayable;
// Failed marks it as an error description rather than generated content.
type Reply struct {
	Text   string
	Failed bool
}

type Generator interface {
	Generate(ctx context.Context, prompt string, lang types.Lang) Reply
}

// StatusError is returned for a non-2xx response. Body is the raw upstream body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

var ErrMalformedResponse = errors.New("malformed completion response")
