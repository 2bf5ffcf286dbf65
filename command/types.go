package command

import (
	"context"
	"strings"

	"github.com/tbxark/hrbot/types"
)

type Command string

const (
	Restart      Command = "restart"
	Advice       Command = "advice"
	Quiz         Command = "quiz"
	FreeQuestion Command = "free_question"
	None         Command = "none"
)

// StartCommand is the transport-level command that always restarts a conversation.
const StartCommand = "/start"

// Marker ties one glyph to one menu action. The glyph is shared by every
// language, so routing never depends on which label was rendered.
type Marker struct {
	Glyph   string
	Command Command
}

// Markers is checked in order; the first glyph found in the input wins.
var Markers = []Marker{
	{Glyph: "🔁", Command: Restart},
	{Glyph: "📋", Command: Advice},
	{Glyph: "🧠", Command: Quiz},
	{Glyph: "💬", Command: FreeQuestion},
}

func MarkerFor(cmd Command) (string, bool) {
	for _, m := range Markers {
		if m.Command == cmd {
			return m.Glyph, true
		}
	}
	return "", false
}

// IsRestart reports whether input restarts the conversation regardless of state.
func IsRestart(input string) bool {
	if strings.TrimSpace(input) == StartCommand {
		return true
	}
	glyph, _ := MarkerFor(Restart)
	return strings.Contains(input, glyph)
}

type Request struct {
	Input   string
	Options []string
	Lang    types.Lang
}

type Parser interface {
	ParseCommand(ctx context.Context, req *Request) (Command, error)
}
