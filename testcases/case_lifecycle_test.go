package testcases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/hrbot/agent"
	"github.com/tbxark/hrbot/types"
)

func TestStartResetsFromAnyState(t *testing.T) {
	t.Parallel()
	env := NewEnv(t)
	id := "tg:restart"
	env.StartIn(id, types.LangKyrgyz)
	env.Say(id, "first answer")

	for _, restart := range []string{"/start", env.Table.For(types.LangKyrgyz).Options[3]} {
		out := env.Say(id, restart)
		require.Len(t, out, 1)
		assert.Equal(t, env.Table.LanguagePrompt, out[0].Text)
		sess := env.Store.Get(id)
		assert.Equal(t, types.StateLanguageSelection, sess.State)
		assert.Empty(t, sess.Answers)
		assert.Zero(t, sess.QuizCursor)
	}
}

func TestRedeliveredUpdateIsIgnored(t *testing.T) {
	t.Parallel()
	env := NewEnv(t)
	id := "tg:dup"
	env.StartIn(id, types.LangEnglish)

	req := &agent.Request{ConversationID: id, Text: "answer once", EventID: 1000}
	require.NoError(t, env.Bot.Handle(context.Background(), req))
	require.NoError(t, env.Bot.Handle(context.Background(), req))
	env.Bot.Wait()

	out := env.Outbox.take(id)
	require.Len(t, out, 1)
	assert.Equal(t, "Your weaknesses?", out[0].Text)
	assert.Equal(t, 1, env.Store.Get(id).QuizCursor)
}

func TestConversationsAreIsolated(t *testing.T) {
	t.Parallel()
	env := NewEnv(t)
	env.StartIn("tg:a", types.LangEnglish)
	env.StartIn("tg:b", types.LangRussian)

	env.Say("tg:a", "answer")
	assert.Equal(t, 1, env.Store.Get("tg:a").QuizCursor)
	assert.Zero(t, env.Store.Get("tg:b").QuizCursor)
	assert.Equal(t, types.LangRussian, env.Store.Get("tg:b").Lang)
}

func TestUnknownLanguageAfterPromptFallsBack(t *testing.T) {
	t.Parallel()
	env := NewEnv(t)
	env.Say("tg:fallback", "/start")
	out := env.Say("tg:fallback", "Deutsch")

	require.Len(t, out, 2)
	assert.Equal(t, env.Table.For(types.LangRussian).Intro, out[0].Text)
	assert.Equal(t, types.LangRussian, env.Store.Get("tg:fallback").Lang)
}
