// Package bot connects transports to the dialog flow. Transports hand in
// requests through Bot.Handle and receive the resulting messages through
// their Sender; turns of one conversation never overlap.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tbxark/hrbot/agent"
	"github.com/tbxark/hrbot/session"
	"github.com/tbxark/hrbot/types"
)

// Sender delivers one outbound message. Options, when non-nil, are rendered
// as a menu.
type Sender interface {
	Send(ctx context.Context, conversationID string, out types.Outbound) error
}

// TypingNotifier is implemented by transports that can show activity.
type TypingNotifier interface {
	NotifyTyping(ctx context.Context, conversationID string) error
}

// DropRecorder counts events that were refused.
type DropRecorder interface {
	IncDropped(reason string)
}

type Bot struct {
	flow       *agent.DialogFlow
	store      *session.Store
	sender     Sender
	handler    Handler
	dispatcher *Dispatcher
	recorder   DropRecorder

	mu    sync.Mutex
	langs map[string]types.Lang
}

type options struct {
	mailboxSize int
	middlewares []Middleware
	recorder    DropRecorder
}

type Option func(*options)

func WithMailboxSize(n int) Option {
	return func(o *options) {
		o.mailboxSize = n
	}
}

// WithMiddleware appends transition middleware; the first one added runs
// outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mws...)
	}
}

func WithDropRecorder(r DropRecorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

func New(flow *agent.DialogFlow, store *session.Store, sender Sender, opts ...Option) (*Bot, error) {
	if flow == nil || store == nil || sender == nil {
		return nil, errors.New("bot needs a flow, a session store and a sender")
	}
	o := options{mailboxSize: DefaultMailboxSize}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	b := &Bot{
		flow:     flow,
		store:    store,
		sender:   sender,
		recorder: o.recorder,
		langs:    make(map[string]types.Lang),
	}
	mws := append([]Middleware{Recover()}, o.middlewares...)
	b.handler = Chain(HandlerFunc(flow.Invoke), mws...)
	b.dispatcher = NewDispatcher(o.mailboxSize, b.process)
	return b, nil
}

// Handle queues req behind the conversation's pending turns. When the
// mailbox is full the user is told to wait and the message is dropped.
func (b *Bot) Handle(ctx context.Context, req *agent.Request) error {
	if req == nil || req.ConversationID == "" {
		return agent.ErrNoConversation
	}
	err := b.dispatcher.Enqueue(ctx, req)
	if !errors.Is(err, ErrBusy) {
		return err
	}
	slog.Warn("Conversation busy, dropping message", "conversation_id", req.ConversationID)
	b.dropped("busy")
	return b.sender.Send(ctx, req.ConversationID, b.flow.BusyReply(b.lang(req.ConversationID)))
}

// Reset forgets the conversation, e.g. when the transport tears it down.
func (b *Bot) Reset(conversationID string) {
	b.store.Reset(conversationID)
	b.Forget(conversationID)
}

// Forget drops what the bot remembers about a conversation without touching
// its session. It is meant as the session store's eviction hook.
func (b *Bot) Forget(conversationID string) {
	b.mu.Lock()
	delete(b.langs, conversationID)
	b.mu.Unlock()
}

// Wait blocks until all queued turns have been delivered.
func (b *Bot) Wait() {
	b.dispatcher.Wait()
}

func (b *Bot) process(ctx context.Context, req *agent.Request) {
	resp, err := b.handler.Handle(ctx, req)
	if err != nil {
		slog.Error("Turn failed", "conversation_id", req.ConversationID, "error", err)
		b.deliver(ctx, req.ConversationID, []types.Outbound{b.flow.ErrorReply(b.lang(req.ConversationID))})
		return
	}
	if resp.Duplicate {
		b.dropped("duplicate")
		return
	}
	b.remember(req.ConversationID, resp.Lang)
	b.deliver(ctx, req.ConversationID, resp.Outbound())
}

func (b *Bot) deliver(ctx context.Context, id string, outs []types.Outbound) {
	for _, out := range outs {
		if err := b.sender.Send(ctx, id, out); err != nil {
			slog.Error("Failed to deliver message", "conversation_id", id, "error", err)
			return
		}
	}
}

func (b *Bot) lang(id string) types.Lang {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.langs[id]
}

func (b *Bot) remember(id string, lang types.Lang) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lang == "" {
		delete(b.langs, id)
		return
	}
	b.langs[id] = lang
}

func (b *Bot) dropped(reason string) {
	if b.recorder != nil {
		b.recorder.IncDropped(reason)
	}
}
