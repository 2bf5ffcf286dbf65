package agent

import (
	"errors"

	"github.com/tbxark/hrbot/types"
)

// Variant selects how much of the menu is wired up.
type Variant string

const (
	// VariantFull offers topic tests behind the quiz menu entry.
	VariantFull Variant = "full"
	// VariantReduced answers the quiz entry with a "not implemented" notice.
	VariantReduced Variant = "reduced"
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantFull, VariantReduced:
		return Variant(s), nil
	case "":
		return VariantFull, nil
	default:
		return "", errors.New("unknown flow variant: " + s)
	}
}

// Request is one inbound user message. EventID is the transport's
// monotonically increasing id; zero disables duplicate detection.
type Request struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
	EventID        int64  `json:"event_id,omitempty"`
}

// Response lists the effects of one transition in delivery order.
type Response struct {
	Steps     []types.Step `json:"steps"`
	State     types.State  `json:"state"`
	Lang      types.Lang   `json:"lang,omitempty"`
	Duplicate bool         `json:"duplicate,omitempty"`
}

// Outbound returns just the messages, dropping the per-step states.
func (r *Response) Outbound() []types.Outbound {
	out := make([]types.Outbound, 0, len(r.Steps))
	for _, s := range r.Steps {
		out = append(out, s.Outbound)
	}
	return out
}

var ErrNoConversation = errors.New("conversation id is required")
