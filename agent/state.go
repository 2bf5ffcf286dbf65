package agent

import "context"

type conversationKeyContext struct{}

const defaultConversationID = "default"

// WithConversationID routes flows that only receive a context, such as the
// adk agent, to a session.
func WithConversationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversationKeyContext{}, id)
}

func ConversationIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(conversationKeyContext{})
	if value == nil {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}

func conversationIDOrDefault(ctx context.Context) string {
	id, ok := ConversationIDFromContext(ctx)
	if ok && id != "" {
		return id
	}
	return defaultConversationID
}
