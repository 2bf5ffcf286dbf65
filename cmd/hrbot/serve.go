package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tbxark/hrbot/bot"
	"github.com/tbxark/hrbot/config"
	"github.com/tbxark/hrbot/transport/telegram"
	"github.com/tbxark/hrbot/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the HTTP server",
		Long: `Polls Telegram for updates and serves /ws (websocket conversations),
/metrics (Prometheus) and /health on HTTP_ADDR until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireCredentials(); err != nil {
				return err
			}

			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			}))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}

	ws := websocket.New()
	wsBot, err := a.newBot(ws, bot.Logging(logger))
	if err != nil {
		return err
	}
	ws.SetHandler(wsBot)

	var tg *telegram.Transport
	var tgBot *bot.Bot
	if cfg.TelegramEnabled {
		tg, err = telegram.Dial(cfg.BotToken, cfg.TelegramDebug)
		if err != nil {
			return err
		}
		tgBot, err = a.newBot(tg, bot.Logging(logger), bot.Typing(tg))
		if err != nil {
			return err
		}
	} else {
		slog.Info("Telegram disabled, serving websocket conversations only")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(a, ws),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Websocket read loops hang off request contexts; tie them to ctx
		// so shutdown closes open conversations.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	a.store.StartSweeper(gctx, cfg.SessionSweepInterval)
	if tg != nil {
		g.Go(func() error {
			return tg.Run(gctx, tgBot)
		})
	}
	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	a.wait()
	if err != nil {
		slog.Error("Server stopped with error", "error", err)
		return err
	}
	slog.Info("Server stopped successfully")
	return nil
}

type statusResponse struct {
	Sessions    int    `json:"sessions"`
	Connections int    `json:"websocket_connections"`
	Version     string `json:"version"`
}

func newRouter(a *app, ws *websocket.Transport) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Handle("/metrics", a.recorder.Handler())
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		body, err := sonic.Marshal(statusResponse{
			Sessions:    a.store.Len(),
			Connections: ws.Connections(),
			Version:     version,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
	r.Get("/ws", ws.ServeHTTP)

	return r
}
