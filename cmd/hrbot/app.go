package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tbxark/hrbot/agent"
	"github.com/tbxark/hrbot/bot"
	"github.com/tbxark/hrbot/command"
	"github.com/tbxark/hrbot/config"
	"github.com/tbxark/hrbot/generation"
	"github.com/tbxark/hrbot/locale"
	"github.com/tbxark/hrbot/metrics"
	"github.com/tbxark/hrbot/session"
)

// app holds the collaborators shared by every transport.
type app struct {
	cfg      *config.Config
	table    *locale.Table
	store    *session.Store
	flow     *agent.DialogFlow
	recorder *metrics.PrometheusRecorder

	mu   sync.Mutex
	bots []*bot.Bot
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	table, err := locale.Load(cfg.LocaleOverrides, cfg.FallbackLang)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, table: table, recorder: metrics.NewPrometheusRecorder()}

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	backend := cfg.Generation.Backend
	completer = generation.Chain(completer,
		generation.WithLogging(slog.Default(), backend),
		generation.WithMetrics(a.recorder, backend),
		generation.WithTimeout(cfg.Generation.Timeout),
	)

	a.store = session.NewStore(cfg.SessionTTL, session.WithEvictHook(a.evicted))
	a.recorder.TrackSessions(a.store.Len)

	opts := []agent.Option{
		agent.WithVariant(cfg.FlowVariant),
		agent.WithTransitionRecorder(a.recorder),
	}
	if cfg.IntentFallback {
		parser, err := newIntentParser(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, agent.WithCommandParser(parser))
	}
	a.flow, err = agent.NewDialogFlow(a.store, table, generation.NewClient(completer, table), opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("Dialog flow ready",
		"backend", backend,
		"variant", cfg.FlowVariant,
		"fallback_lang", table.Fallback,
		"intent_fallback", cfg.IntentFallback,
	)
	return a, nil
}

func (a *app) newBot(sender bot.Sender, mws ...bot.Middleware) (*bot.Bot, error) {
	b, err := bot.New(a.flow, a.store, sender,
		bot.WithMailboxSize(a.cfg.MailboxSize),
		bot.WithDropRecorder(a.recorder),
		bot.WithMiddleware(mws...),
	)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.bots = append(a.bots, b)
	a.mu.Unlock()
	return b, nil
}

func (a *app) evicted(id string) {
	a.recorder.IncEvicted(id)
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range a.bots {
		b.Forget(id)
	}
}

func (a *app) wait() {
	a.mu.Lock()
	bots := append([]*bot.Bot(nil), a.bots...)
	a.mu.Unlock()
	for _, b := range bots {
		b.Wait()
	}
}

func newCompleter(ctx context.Context, cfg *config.Config) (generation.Completer, error) {
	httpCfg := generation.HTTPConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
	}
	switch cfg.Generation.Backend {
	case config.BackendEino:
		cm, err := generation.NewOpenAIChatModel(ctx, httpCfg, cfg.Generation.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return generation.NewChatModelCompleter(cm), nil
	default:
		return generation.NewHTTPCompleter(httpCfg)
	}
}

// newIntentParser tries menu glyphs first and asks the chat model only for
// text that carries none.
func newIntentParser(ctx context.Context, cfg *config.Config) (command.Parser, error) {
	cm, err := generation.NewOpenAIChatModel(ctx, generation.HTTPConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: 0,
	}, cfg.Generation.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create intent model: %w", err)
	}
	tool, err := command.NewToolBasedCommandParser(cm)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool-based command parser: %w", err)
	}
	return command.NewFailbackCommandParser(command.NewMarkerCommandParser(), tool), nil
}
