package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModelCompleter sends the prompt through any eino chat model.
type ChatModelCompleter struct {
	chatModel model.BaseChatModel
}

func NewChatModelCompleter(chatModel model.BaseChatModel) *ChatModelCompleter {
	return &ChatModelCompleter{chatModel: chatModel}
}

func (c *ChatModelCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty message", ErrMalformedResponse)
	}
	return resp.Content, nil
}

// NewOpenAIChatModel builds an eino-ext OpenAI chat model. Mistral exposes an
// OpenAI compatible API, so the same settings as the HTTP backend apply.
func NewOpenAIChatModel(ctx context.Context, cfg HTTPConfig, timeout time.Duration) (*openai.ChatModel, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := float32(cfg.Temperature)
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: &temperature,
		Timeout:     timeout,
		HTTPClient:  cfg.HTTPClient,
	})
}
