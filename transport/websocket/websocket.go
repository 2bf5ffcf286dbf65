// Package websocket serves the dialog over JSON websocket frames, for web
// clients and local testing.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/tbxark/hrbot/agent"
	"github.com/tbxark/hrbot/bot"
	"github.com/tbxark/hrbot/types"
)

const (
	conversationPrefix = "ws:"
	writeTimeout       = 10 * time.Second
	readLimit          = 64 << 10
)

const (
	FrameHello   = "hello"
	FrameMessage = "message"
	FramePing    = "ping"
	FramePong    = "pong"
	FrameError   = "error"
)

// Frame is the single wire shape in both directions. Clients send
// {"type":"message","text":"..."}; the server answers with message frames
// that carry Options when a menu should be shown.
type Frame struct {
	Type           string   `json:"type"`
	Text           string   `json:"text,omitempty"`
	Options        []string `json:"options,omitempty"`
	ConversationID string   `json:"conversation_id,omitempty"`
	EventID        int64    `json:"event_id,omitempty"`
}

var ErrNotConnected = errors.New("conversation has no open websocket")

var _ bot.Sender = (*Transport)(nil)

// Handler receives inbound messages. *bot.Bot implements it.
type Handler interface {
	Handle(ctx context.Context, req *agent.Request) error
}

type Transport struct {
	mu             sync.Mutex
	conns          map[string]*websocket.Conn
	handler        Handler
	originPatterns []string
}

func New(originPatterns ...string) *Transport {
	if len(originPatterns) == 0 {
		originPatterns = []string{"*"}
	}
	return &Transport{
		conns:          make(map[string]*websocket.Conn),
		originPatterns: originPatterns,
	}
}

// SetHandler must be called before the transport serves connections.
func (t *Transport) SetHandler(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// ServeHTTP upgrades the request. A client may resume a conversation by
// passing ?conversation=<id>; otherwise a fresh id is assigned. Closing the
// socket keeps the session until the idle TTL evicts it, and a newer
// connection for the same id replaces the older one.
func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h == nil {
		http.Error(w, "websocket transport not ready", http.StatusServiceUnavailable)
		return
	}

	id := conversationID(r.URL.Query().Get("conversation"))
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: t.originPatterns,
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "conversation_id", id)
		return
	}
	ws.SetReadLimit(readLimit)
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "conversation ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "conversation_id", id)
		}
	}()

	t.register(id, ws)
	defer t.unregister(id, ws)
	slog.Info("WebSocket conversation opened", "conversation_id", id, "ip", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := writeFrame(ctx, ws, Frame{Type: FrameHello, ConversationID: id}); err != nil {
		slog.Debug("Failed to send hello", "error", err)
		return
	}
	t.readLoop(ctx, ws, h, id)
	slog.Info("WebSocket conversation closed", "conversation_id", id)
}

func (t *Transport) readLoop(ctx context.Context, ws *websocket.Conn, h Handler, id string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "conversation_id", id)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "conversation_id", id)
			}
			return
		}

		var frame Frame
		if err := sonic.Unmarshal(data, &frame); err != nil {
			// Bare text frames are accepted as messages.
			frame = Frame{Type: FrameMessage, Text: string(data)}
		}
		switch frame.Type {
		case FrameMessage:
			req := &agent.Request{ConversationID: id, Text: frame.Text, EventID: frame.EventID}
			if err := h.Handle(ctx, req); err != nil {
				slog.Error("Failed to handle websocket message", "conversation_id", id, "error", err)
			}
		case FramePing:
			if err := writeFrame(ctx, ws, Frame{Type: FramePong}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
			}
		default:
			if err := writeFrame(ctx, ws, Frame{Type: FrameError, Text: "unknown frame type: " + frame.Type}); err != nil {
				slog.Debug("Failed to send error frame", "error", err)
			}
		}
	}
}

func (t *Transport) Send(ctx context.Context, conversationID string, out types.Outbound) error {
	t.mu.Lock()
	ws, ok := t.conns[conversationID]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotConnected, conversationID)
	}
	return writeFrame(ctx, ws, Frame{Type: FrameMessage, Text: out.Text, Options: out.Options})
}

// Connections reports the number of open conversations.
func (t *Transport) Connections() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

// register replaces any older connection for the same conversation.
func (t *Transport) register(id string, ws *websocket.Conn) {
	t.mu.Lock()
	old, ok := t.conns[id]
	t.conns[id] = ws
	t.mu.Unlock()
	if ok {
		_ = old.Close(websocket.StatusPolicyViolation, "conversation opened elsewhere")
	}
}

// unregister leaves a newer connection for the same id in place.
func (t *Transport) unregister(id string, ws *websocket.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conns[id] == ws {
		delete(t.conns, id)
	}
}

func conversationID(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return conversationPrefix + uuid.NewString()
	}
	if _, err := uuid.Parse(requested); err == nil {
		return conversationPrefix + requested
	}
	return conversationPrefix + uuid.NewSHA1(uuid.NameSpaceURL, []byte(requested)).String()
}

func writeFrame(ctx context.Context, ws *websocket.Conn, f Frame) error {
	data, err := sonic.Marshal(f)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, data)
}
