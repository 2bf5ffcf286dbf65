package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/hrbot/structured"
)

const (
	parseCommandToolName        = "parse_menu_intent"
	parseCommandToolDescription = "Map free-form user input to one of the menu actions: restart, advice, quiz, free_question, none."
)

type parseCommandInput struct {
	Intent Command `json:"intent" jsonschema:"required,enum=restart,enum=advice,enum=quiz,enum=free_question,enum=none,description=The menu action the user asked for"`
}

// ToolBasedCommandParser lets a chat model pick a menu action when the user
// typed text instead of pressing a menu button.
type ToolBasedCommandParser struct {
	chain *structured.Chain[*Request, parseCommandInput]
}

func NewToolBasedCommandParser(chatModel model.ToolCallingChatModel) (*ToolBasedCommandParser, error) {
	chain, err := structured.NewChain[*Request, parseCommandInput](
		chatModel,
		buildParseCommandPrompt,
		parseCommandToolName,
		parseCommandToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedCommandParser{chain: chain}, nil
}

func (p *ToolBasedCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	result, err := p.chain.Invoke(ctx, req)
	if err != nil {
		return None, err
	}
	if result == nil || result.Intent == "" {
		return None, fmt.Errorf("empty intent returned by %s", parseCommandToolName)
	}
	switch result.Intent {
	case Restart, Advice, Quiz, FreeQuestion, None:
		return result.Intent, nil
	default:
		return None, fmt.Errorf("unknown intent %q returned by %s", result.Intent, parseCommandToolName)
	}
}

func buildParseCommandPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	var options strings.Builder
	for _, opt := range req.Options {
		options.WriteString("- ")
		options.WriteString(opt)
		options.WriteString("\n")
	}
	systemPrompt := fmt.Sprintf(`You route messages for an interview-preparation chat bot. The user was shown this menu:
%s
Choose the action the user asked for:
- restart: start over from language selection
- advice: get advice on the interview answers already given
- quiz: take a topic test
- free_question: ask a free-form question
- none: the message does not ask for any of the above

Call the '%s' tool with the result.`, options.String(), parseCommandToolName)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(req.Input),
	}, nil
}
