package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/spf13/cobra"

	"github.com/tbxark/hrbot/agent"
	"github.com/tbxark/hrbot/command"
	"github.com/tbxark/hrbot/config"
)

func newConsoleCmd() *cobra.Command {
	var conversation string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Talk to the bot in the terminal",
		Long: `Runs the dialog locally through the agent runner. Menus are printed
as tables; answer with the option number or any text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.TelegramEnabled = false
			if err := cfg.RequireCredentials(); err != nil {
				return err
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			})))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}
			coach := agent.NewAgent("InterviewCoach", "Interview preparation dialog", a.flow)
			runner := adk.NewRunner(ctx, adk.RunnerConfig{Agent: coach})
			ctx = agent.WithConversationID(ctx, "console:"+conversation)
			return runConsole(ctx, runner, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&conversation, "conversation", "local", "Conversation id suffix")

	return cmd
}

// runConsole restarts the conversation and then relays lines from in until
// EOF. A bare number picks that entry of the last menu shown.
func runConsole(ctx context.Context, runner *adk.Runner, in io.Reader, out io.Writer) error {
	options, err := consoleTurn(ctx, runner, out, command.StartCommand)
	if err != nil {
		return err
	}
	reader := bufio.NewReader(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		_, _ = fmt.Fprint(out, "> ")
		line, rErr := reader.ReadString('\n')
		if rErr != nil && line == "" {
			_, _ = fmt.Fprintln(out)
			return nil
		}
		text := pickOption(strings.TrimSpace(line), options)
		next, err := consoleTurn(ctx, runner, out, text)
		if err != nil {
			return err
		}
		if next != nil {
			options = next
		}
	}
}

func consoleTurn(ctx context.Context, runner *adk.Runner, out io.Writer, text string) ([]string, error) {
	iter := runner.Run(ctx, []*schema.Message{schema.UserMessage(text)})
	var options []string
	for {
		event, ok := iter.Next()
		if !ok {
			return options, nil
		}
		if event.Err != nil {
			return nil, event.Err
		}
		if event.Output == nil || event.Output.MessageOutput == nil {
			continue
		}
		msg, err := event.Output.MessageOutput.GetMessage()
		if err != nil {
			return nil, err
		}
		_, _ = fmt.Fprintf(out, "\n%s\n", msg.Content)
		if opts := agent.OptionsOf(msg); opts != nil {
			options = opts
			_, _ = io.WriteString(out, renderMenu(opts))
		}
	}
}

func pickOption(text string, options []string) string {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(options) {
		return text
	}
	return options[n-1]
}

func renderMenu(options []string) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("#", "Option")
	for i, opt := range options {
		_ = table.Append(strconv.Itoa(i+1), opt)
	}
	_ = table.Render()
	return buf.String()
}
