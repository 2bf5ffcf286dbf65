package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

var _ adk.Agent = (*Agent)(nil)

const (
	// ExtraOptions holds the menu of an emitted message, as []string.
	ExtraOptions = "hrbot_options"
	// ExtraState holds the dialog state after the message, as string.
	ExtraState = "hrbot_state"
)

// Agent exposes a DialogFlow through the eino adk runner. The conversation is
// taken from the context (see WithConversationID) and only the last input
// message is treated as user text. Each step becomes one assistant event.
type Agent struct {
	name        string
	description string
	flow        *DialogFlow
}

func NewAgent(name, description string, flow *DialogFlow) *Agent {
	return &Agent{
		name:        name,
		description: description,
		flow:        flow,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		resp, err := a.flow.Invoke(ctx, &Request{
			ConversationID: conversationIDOrDefault(ctx),
			Text:           input.Messages[len(input.Messages)-1].Content,
		})
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("flow invoke failed: %w", err),
			})
			return
		}
		for _, step := range resp.Steps {
			msg := schema.AssistantMessage(step.Outbound.Text, nil)
			msg.Extra = map[string]any{ExtraState: string(step.State)}
			if step.Outbound.IsMenu() {
				msg.Extra[ExtraOptions] = step.Outbound.Options
			}
			gen.Send(&adk.AgentEvent{
				Output: &adk.AgentOutput{
					MessageOutput: &adk.MessageVariant{
						IsStreaming: false,
						Message:     msg,
						Role:        schema.Assistant,
					},
				},
			})
		}
	}()
	return iter
}

// OptionsOf returns the menu attached to a message emitted by Agent.
func OptionsOf(msg *schema.Message) []string {
	if msg == nil || msg.Extra == nil {
		return nil
	}
	options, _ := msg.Extra[ExtraOptions].([]string)
	return options
}
