// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbxark/hrbot/agent"
	"github.com/tbxark/hrbot/bot"
	"github.com/tbxark/hrbot/generation"
	"github.com/tbxark/hrbot/session"
	"github.com/tbxark/hrbot/types"
)

const (
	BackendHTTP = "http"
	BackendEino = "eino"
)

// Config holds all application configuration.
type Config struct {
	BotToken        string
	TelegramEnabled bool
	TelegramDebug   bool
	HTTPAddr        string
	LogLevel        string

	Generation GenerationConfig

	FlowVariant     agent.Variant
	FallbackLang    types.Lang
	LocaleOverrides string
	IntentFallback  bool

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	MailboxSize          int
}

// GenerationConfig describes the remote text-generation service.
type GenerationConfig struct {
	Backend     string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	variant, err := agent.ParseVariant(getEnv("FLOW_VARIANT", string(agent.VariantFull)))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		BotToken:        getEnv("BOT_TOKEN", ""),
		TelegramEnabled: getEnvBool("TELEGRAM_ENABLED", true),
		TelegramDebug:   getEnvBool("TELEGRAM_DEBUG", false),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Generation: GenerationConfig{
			Backend:     strings.ToLower(getEnv("GENERATION_BACKEND", BackendHTTP)),
			APIKey:      getEnv("MISTRAL_API_KEY", ""),
			BaseURL:     getEnv("MISTRAL_BASE_URL", generation.DefaultBaseURL),
			Model:       getEnv("MISTRAL_MODEL", generation.DefaultModel),
			Temperature: getEnvFloat("MISTRAL_TEMPERATURE", generation.DefaultTemperature),
			Timeout:     getEnvDuration("GENERATION_TIMEOUT", 60*time.Second),
		},
		FlowVariant:          variant,
		FallbackLang:         types.Lang(getEnv("FALLBACK_LANG", string(types.LangRussian))),
		LocaleOverrides:      getEnv("LOCALE_OVERRIDES", ""),
		IntentFallback:       getEnvBool("INTENT_FALLBACK", false),
		SessionTTL:           getEnvDuration("SESSION_TTL", session.DefaultTTL),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", session.DefaultSweepInterval),
		MailboxSize:          getEnvInt("MAILBOX_SIZE", bot.DefaultMailboxSize),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks settings that are wrong regardless of which command runs.
func (c *Config) Validate() error {
	switch c.Generation.Backend {
	case BackendHTTP, BackendEino:
	default:
		return fmt.Errorf("GENERATION_BACKEND must be %q or %q, got %q", BackendHTTP, BackendEino, c.Generation.Backend)
	}
	if c.Generation.BaseURL == "" {
		return fmt.Errorf("MISTRAL_BASE_URL cannot be empty")
	}
	if c.Generation.Timeout < 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be >= 0")
	}
	if c.MailboxSize <= 0 {
		return fmt.Errorf("MAILBOX_SIZE must be > 0")
	}
	if c.SessionTTL < 0 || c.SessionSweepInterval < 0 {
		return fmt.Errorf("SESSION_TTL and SESSION_SWEEP_INTERVAL must be >= 0")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// RequireCredentials reports missing secrets. The generation key is always
// needed; the bot token only when Telegram is served.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.TelegramEnabled && c.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if c.Generation.APIKey == "" {
		missing = append(missing, "MISTRAL_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
