// Package telegram adapts the Telegram Bot API (long polling) to the bot
// package contracts.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tbxark/hrbot/agent"
	"github.com/tbxark/hrbot/bot"
	"github.com/tbxark/hrbot/command"
	"github.com/tbxark/hrbot/types"
)

const (
	conversationPrefix = "tg:"
	// maxMessageRunes is Telegram's limit for one text message.
	maxMessageRunes = 4096
	pollTimeout     = 60
)

var (
	_ bot.Sender         = (*Transport)(nil)
	_ bot.TypingNotifier = (*Transport)(nil)
)

// botAPI is the subset of *tgbotapi.BotAPI the transport needs.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler receives inbound messages. *bot.Bot implements it.
type Handler interface {
	Handle(ctx context.Context, req *agent.Request) error
	Reset(conversationID string)
}

type Transport struct {
	api botAPI
}

func New(api botAPI) *Transport {
	return &Transport{api: api}
}

// Dial authenticates with token and returns a ready transport.
func Dial(token string, debug bool) (*Transport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = debug
	slog.Info("Authorized on Telegram", "username", api.Self.UserName)
	return New(api), nil
}

func ConversationID(chatID int64) string {
	return conversationPrefix + strconv.FormatInt(chatID, 10)
}

func ParseConversationID(id string) (int64, error) {
	raw, ok := strings.CutPrefix(id, conversationPrefix)
	if !ok {
		return 0, fmt.Errorf("not a telegram conversation: %q", id)
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", raw, err)
	}
	return chatID, nil
}

// Run polls for updates until ctx is done.
func (t *Transport) Run(ctx context.Context, h Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	u.AllowedUpdates = []string{"message", "my_chat_member"}
	updates := t.api.GetUpdatesChan(u)
	slog.Info("Telegram polling started")
	defer t.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Telegram polling stopped", "reason", ctx.Err())
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, h, update)
		}
	}
}

func (t *Transport) handleUpdate(ctx context.Context, h Handler, update tgbotapi.Update) {
	if member := update.MyChatMember; member != nil {
		if member.NewChatMember.Status == "kicked" {
			id := ConversationID(member.Chat.ID)
			slog.Info("Bot blocked by user, dropping session", "conversation_id", id)
			h.Reset(id)
		}
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}
	text := msg.Text
	if msg.IsCommand() {
		if msg.Command() != strings.TrimPrefix(command.StartCommand, "/") {
			return
		}
		text = command.StartCommand
	}
	req := &agent.Request{
		ConversationID: ConversationID(msg.Chat.ID),
		Text:           text,
		EventID:        int64(update.UpdateID),
	}
	if err := h.Handle(ctx, req); err != nil {
		slog.Error("Failed to handle telegram message", "conversation_id", req.ConversationID, "error", err)
	}
}

// Send delivers out, splitting long texts. A menu is attached to the last
// part as a one-time, resized reply keyboard with one button per row.
func (t *Transport) Send(ctx context.Context, conversationID string, out types.Outbound) error {
	chatID, err := ParseConversationID(conversationID)
	if err != nil {
		return err
	}
	parts := splitText(out.Text, maxMessageRunes)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if out.IsMenu() && i == len(parts)-1 {
			msg.ReplyMarkup = keyboard(out.Options)
		}
		if _, err := t.api.Send(msg); err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
	}
	return nil
}

func (t *Transport) NotifyTyping(ctx context.Context, conversationID string) error {
	chatID, err := ParseConversationID(conversationID)
	if err != nil {
		return err
	}
	_, err = t.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

func keyboard(options []string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, opt := range options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(opt)))
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.OneTimeKeyboard = true
	markup.ResizeKeyboard = true
	return markup
}

// splitText cuts s into chunks of at most limit runes, preferring line
// breaks. Empty text still yields one part.
func splitText(s string, limit int) []string {
	runes := []rune(s)
	if len(runes) <= limit {
		return []string{s}
	}
	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
