// Package testcases drives the whole stack end to end: a bot in front of the
// dialog flow, the generation client, and a stub chat-completions server.
package testcases

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/hrbot/agent"
	"github.com/tbxark/hrbot/bot"
	"github.com/tbxark/hrbot/generation"
	"github.com/tbxark/hrbot/locale"
	"github.com/tbxark/hrbot/session"
	"github.com/tbxark/hrbot/types"
)

type cannedReply struct {
	status int
	body   string
}

// completionServer is a stand-in for the chat-completions endpoint. Replies
// are served in order; once exhausted every call succeeds with "ok".
type completionServer struct {
	*httptest.Server

	mu      sync.Mutex
	prompts []string
	replies []cannedReply
}

func newCompletionServer(t *testing.T) *completionServer {
	s := &completionServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *completionServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	_ = sonic.Unmarshal(body, &req)

	s.mu.Lock()
	if len(req.Messages) > 0 {
		s.prompts = append(s.prompts, req.Messages[0].Content)
	}
	reply := cannedReply{status: http.StatusOK, body: completion("ok")}
	if len(s.replies) > 0 {
		reply = s.replies[0]
		s.replies = s.replies[1:]
	}
	s.mu.Unlock()

	w.WriteHeader(reply.status)
	_, _ = io.WriteString(w, reply.body)
}

func (s *completionServer) queue(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, cannedReply{status: status, body: body})
}

func (s *completionServer) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func completion(text string) string {
	body, _ := sonic.MarshalString(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": text}}},
	})
	return body
}

type outbox struct {
	mu   sync.Mutex
	sent map[string][]types.Outbound
}

func (o *outbox) Send(ctx context.Context, id string, out types.Outbound) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sent == nil {
		o.sent = map[string][]types.Outbound{}
	}
	o.sent[id] = append(o.sent[id], out)
	return nil
}

// take returns and clears what was sent to id.
func (o *outbox) take(id string) []types.Outbound {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.sent[id]
	delete(o.sent, id)
	return out
}

type Env struct {
	t      *testing.T
	Table  *locale.Table
	Store  *session.Store
	Server *completionServer
	Bot    *bot.Bot
	Outbox *outbox
	event  int64
}

func NewEnv(t *testing.T, opts ...agent.Option) *Env {
	t.Helper()
	srv := newCompletionServer(t)
	completer, err := generation.NewHTTPCompleter(generation.HTTPConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/v1",
		Temperature: generation.DefaultTemperature,
	})
	require.NoError(t, err)
	return newEnvWithCompleter(t, srv, completer, opts...)
}

func newEnvWithCompleter(t *testing.T, srv *completionServer, completer generation.Completer, opts ...agent.Option) *Env {
	t.Helper()
	table := locale.Default()
	store := session.NewStore(session.DefaultTTL)
	flow, err := agent.NewDialogFlow(store, table, generation.NewClient(completer, table), opts...)
	require.NoError(t, err)
	box := &outbox{}
	b, err := bot.New(flow, store, box)
	require.NoError(t, err)
	return &Env{t: t, Table: table, Store: store, Server: srv, Bot: b, Outbox: box}
}

// Say delivers text as the next update of conversation id and returns what
// the bot sent back.
func (e *Env) Say(id, text string) []types.Outbound {
	e.t.Helper()
	e.event++
	require.NoError(e.t, e.Bot.Handle(context.Background(), &agent.Request{
		ConversationID: id,
		Text:           text,
		EventID:        e.event,
	}))
	e.Bot.Wait()
	return e.Outbox.take(id)
}

// StartIn restarts id and picks lang, returning after the first question.
func (e *Env) StartIn(id string, lang types.Lang) {
	e.t.Helper()
	e.Say(id, "/start")
	for _, l := range e.Table.Languages {
		if l.Code == lang {
			e.Say(id, l.Label)
			return
		}
	}
	e.t.Fatalf("no language option for %q", lang)
}

// LiveCompleter returns a completer against the real API, or skips.
func LiveCompleter(t *testing.T) generation.Completer {
	t.Helper()
	if os.Getenv("HRBOT_RUN_LIVE_TESTS") != "1" {
		t.Skip("set HRBOT_RUN_LIVE_TESTS=1 to run live generation tests")
	}
	key := os.Getenv("MISTRAL_API_KEY")
	if key == "" {
		t.Skip("MISTRAL_API_KEY is empty")
	}
	completer, err := generation.NewHTTPCompleter(generation.HTTPConfig{
		APIKey:      key,
		BaseURL:     os.Getenv("MISTRAL_BASE_URL"),
		Temperature: generation.DefaultTemperature,
	})
	require.NoError(t, err)
	return completer
}
