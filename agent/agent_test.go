package agent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/hrbot/types"
)

func collect(t *testing.T, iter *adk.AsyncIterator[*adk.AgentEvent]) []*schema.Message {
	t.Helper()
	var out []*schema.Message
	for {
		event, ok := iter.Next()
		if !ok {
			return out
		}
		require.NoError(t, event.Err)
		msg, err := event.Output.MessageOutput.GetMessage()
		require.NoError(t, err)
		out = append(out, msg)
	}
}

func TestAgentRunsThroughADKRunner(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	a := NewAgent("InterviewCoach", "Interview preparation dialog", h.flow)
	runner := adk.NewRunner(context.Background(), adk.RunnerConfig{Agent: a})

	ctx := WithConversationID(context.Background(), "console:1")
	msgs := collect(t, runner.Run(ctx, []*schema.Message{schema.UserMessage("hi")}))
	require.Len(t, msgs, 1)
	assert.Equal(t, h.table.LanguageLabels(), OptionsOf(msgs[0]))
	assert.Equal(t, string(types.StateLanguageSelection), msgs[0].Extra[ExtraState])

	msgs = collect(t, runner.Run(ctx, []*schema.Message{
		schema.UserMessage("hi"),
		schema.UserMessage("🇬🇧 English"),
	}))
	require.Len(t, msgs, 2)
	assert.Equal(t, h.texts(types.LangEnglish).Intro, msgs[0].Content)
	assert.Nil(t, OptionsOf(msgs[0]))
	assert.Equal(t, schema.Assistant, msgs[1].Role)

	assert.Equal(t, types.LangEnglish, h.store.Get("console:1").Lang)
	assert.Equal(t, 1, h.store.Len())
}

func TestAgentWithoutMessagesFails(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	a := NewAgent("n", "d", h.flow)
	iter := a.Run(context.Background(), &adk.AgentInput{})
	event, ok := iter.Next()
	require.True(t, ok)
	assert.Error(t, event.Err)
}

func TestConversationIDFromContext(t *testing.T) {
	t.Parallel()
	_, ok := ConversationIDFromContext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, defaultConversationID, conversationIDOrDefault(context.Background()))

	ctx := WithConversationID(context.Background(), "ws:abc")
	id, ok := ConversationIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ws:abc", id)
}
