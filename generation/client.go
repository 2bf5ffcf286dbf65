package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tbxark/hrbot/locale"
	"github.com/tbxark/hrbot/types"
)

var _ Generator = (*Client)(nil)

// Client is the boundary where every downstream fault becomes display text.
type Client struct {
	completer Completer
	table     *locale.Table
}

func NewClient(completer Completer, table *locale.Table) *Client {
	return &Client{completer: completer, table: table}
}

func (c *Client) Generate(ctx context.Context, prompt string, lang types.Lang) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Generation backend panicked", "panic", r)
			reply = Reply{Text: c.Describe(fmt.Errorf("panic: %v", r), lang), Failed: true}
		}
	}()
	text, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return Reply{Text: c.Describe(err, lang), Failed: true}
	}
	return Reply{Text: text}
}

// Describe renders err in the user's language. Upstream rejections embed the
// raw response body; everything else embeds the error text.
func (c *Client) Describe(err error, lang types.Lang) string {
	texts := c.table.For(lang)
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return locale.Render(texts.APIError, map[string]string{"detail": statusErr.Body})
	}
	return locale.Render(texts.ConnectionError, map[string]string{"detail": err.Error()})
}
