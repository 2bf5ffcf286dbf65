package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/tbxark/hrbot/command"
	"github.com/tbxark/hrbot/generation"
	"github.com/tbxark/hrbot/locale"
	"github.com/tbxark/hrbot/prompt"
	"github.com/tbxark/hrbot/session"
	"github.com/tbxark/hrbot/types"
)

// TransitionRecorder observes every completed transition.
type TransitionRecorder interface {
	ObserveTransition(from, to string)
}

// DialogFlow is the interview dialog state machine. Each Invoke handles one
// inbound message under the conversation lock and returns the messages to
// deliver, so a chained transition such as the last quiz answer falling
// through to feedback is a flat list of steps.
type DialogFlow struct {
	store     *session.Store
	table     *locale.Table
	prompts   *prompt.Builder
	generator generation.Generator
	parser    command.Parser
	variant   Variant
	recorder  TransitionRecorder
}

type Option func(*DialogFlow)

func WithVariant(v Variant) Option {
	return func(f *DialogFlow) {
		f.variant = v
	}
}

// WithCommandParser replaces the marker parser used in the NextStep hub.
func WithCommandParser(p command.Parser) Option {
	return func(f *DialogFlow) {
		f.parser = p
	}
}

func WithTransitionRecorder(r TransitionRecorder) Option {
	return func(f *DialogFlow) {
		f.recorder = r
	}
}

func NewDialogFlow(
	store *session.Store,
	table *locale.Table,
	generator generation.Generator,
	opts ...Option,
) (*DialogFlow, error) {
	if store == nil || table == nil || generator == nil {
		return nil, errors.New("dialog flow needs a store, a locale table and a generator")
	}
	f := &DialogFlow{
		store:     store,
		table:     table,
		prompts:   prompt.NewBuilder(table),
		generator: generator,
		parser:    command.NewMarkerCommandParser(),
		variant:   VariantFull,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.parser == nil {
		f.parser = command.NewMarkerCommandParser()
	}
	return f, nil
}

func (f *DialogFlow) Invoke(ctx context.Context, input *Request) (*Response, error) {
	if input == nil || input.ConversationID == "" {
		return nil, ErrNoConversation
	}
	sess, release := f.store.Acquire(input.ConversationID)
	defer release()

	if sess.SeenEvent(input.EventID) {
		slog.Debug("Dropping duplicate event", "conversation_id", input.ConversationID, "event_id", input.EventID)
		return &Response{State: sess.State, Lang: sess.Lang, Duplicate: true}, nil
	}

	from := sess.State
	t := &turn{flow: f, ctx: ctx, sess: sess}
	t.run(input)

	slog.Debug("Transition completed",
		"conversation_id", input.ConversationID,
		"from", from,
		"to", sess.State,
		"steps", len(t.steps),
	)
	if f.recorder != nil {
		f.recorder.ObserveTransition(string(from), string(sess.State))
	}
	return &Response{Steps: t.steps, State: sess.State, Lang: sess.Lang}, nil
}

// BusyReply tells the user an earlier message is still being processed.
func (f *DialogFlow) BusyReply(lang types.Lang) types.Outbound {
	return types.Outbound{Text: f.table.For(lang).Busy}
}

// ErrorReply is sent when a transition could not complete. It always
// carries the menu so the user has a next action.
func (f *DialogFlow) ErrorReply(lang types.Lang) types.Outbound {
	texts := f.table.For(lang)
	return types.Outbound{Text: texts.InternalError, Options: texts.Options}
}

// turn is the working set of one transition.
type turn struct {
	flow  *DialogFlow
	ctx   context.Context
	sess  *session.Session
	steps []types.Step
}

func (t *turn) run(input *Request) {
	defer func() {
		if r := recover(); r != nil {
			t.handleError(fmt.Errorf("panic: %v", r), input)
			slog.Error("Transition panicked", "conversation_id", input.ConversationID, "stack", string(debug.Stack()))
		}
	}()

	text := input.Text
	if command.IsRestart(text) {
		t.restart()
		return
	}

	switch t.sess.State {
	case types.StateLanguageSelection:
		t.selectLanguage(text)
	case types.StateQuiz:
		t.answerQuestion(text)
	case types.StateNextStep:
		t.nextStep(text)
	case types.StateDirectionSelection:
		t.selectDirection(text)
	case types.StateTestTypeSelection:
		t.selectTestType(text)
	case types.StateTestInProgress:
		t.answerTest(text)
	case types.StateFreeQuestion:
		t.answerFreeQuestion(text)
	default:
		t.handleError(fmt.Errorf("unknown state %q", t.sess.State), input)
	}
}

func (t *turn) handleError(err error, input *Request) {
	slog.Error("Transition failed", "conversation_id", input.ConversationID, "state", t.sess.State, "error", err)
	t.steps = nil
	if t.sess.Lang == "" {
		t.restart()
		return
	}
	t.sess.State = types.StateNextStep
	t.emit(t.flow.ErrorReply(t.sess.Lang))
}

func (t *turn) texts() *locale.Texts {
	return t.flow.table.For(t.sess.Lang)
}

// emit appends a message delivered in the session's current state.
func (t *turn) emit(out types.Outbound) {
	t.steps = append(t.steps, types.Step{Outbound: out, State: t.sess.State})
}

func (t *turn) say(text string) {
	t.emit(types.Outbound{Text: text})
}

func (t *turn) menu(text string, options []string) {
	t.emit(types.Outbound{Text: text, Options: options})
}

func (t *turn) hub(text string) {
	t.sess.State = types.StateNextStep
	t.menu(text, t.texts().Options)
}

func (t *turn) generate(p string) generation.Reply {
	return t.flow.generator.Generate(t.ctx, p, t.sess.Lang)
}

func (t *turn) restart() {
	t.sess.Reset()
	t.sess.LanguagePrompted = true
	t.menu(t.flow.table.LanguagePrompt, t.flow.table.LanguageLabels())
}

func (t *turn) selectLanguage(text string) {
	lang, ok := t.flow.table.LanguageByLabel(text)
	if !ok {
		if !t.sess.LanguagePrompted {
			t.restart()
			return
		}
		lang = t.flow.table.Fallback
	}
	t.sess.StartQuiz(lang)
	t.sess.State = types.StateQuiz
	t.say(t.texts().Intro)
	t.enterQuiz()
}

func (t *turn) enterQuiz() {
	total := t.flow.table.NumQuestions()
	if t.sess.QuizDone(total) {
		t.feedback()
		return
	}
	t.sess.State = types.StateQuiz
	t.say(t.flow.table.QuestionText(t.sess.QuizCursor, t.sess.Lang))
}

func (t *turn) answerQuestion(text string) {
	t.sess.RecordAnswer(t.flow.table.QuestionKeys(), text)
	t.enterQuiz()
}

// feedback never calls the generator when no answer has any text.
func (t *turn) feedback() {
	texts := t.texts()
	if !t.sess.HasAnswers() {
		t.hub(texts.AnswerFirst)
		return
	}
	answers := t.sess.OrderedAnswers(t.flow.table.QuestionKeys())
	reply := t.generate(t.flow.prompts.Feedback(t.sess.Lang, answers))
	t.sess.State = types.StateNextStep
	t.say(prompt.Labeled(texts.FeedbackLabel, reply.Text))
	t.hub(texts.NextStep)
}

func (t *turn) nextStep(text string) {
	texts := t.texts()
	cmd, err := t.flow.parser.ParseCommand(t.ctx, &command.Request{
		Input:   text,
		Options: texts.Options,
		Lang:    t.sess.Lang,
	})
	if err != nil {
		slog.Warn("Menu intent not recognized", "error", err)
		cmd = command.None
	}
	switch cmd {
	case command.Restart:
		t.restart()
	case command.Advice:
		t.feedback()
	case command.Quiz:
		if t.flow.variant == VariantReduced {
			t.hub(texts.NotImplemented)
			return
		}
		t.sess.State = types.StateDirectionSelection
		t.menu(texts.ChooseDirection, texts.Directions)
	case command.FreeQuestion:
		t.sess.State = types.StateFreeQuestion
		t.say(texts.AskQuestion)
	default:
		t.hub(texts.PickOption)
	}
}

func (t *turn) selectDirection(text string) {
	t.sess.Direction = text
	t.sess.State = types.StateTestTypeSelection
	t.menu(t.texts().ChooseTestType, t.texts().TestTypes)
}

func (t *turn) selectTestType(text string) {
	texts := t.texts()
	t.sess.TestType = text
	reply := t.generate(t.flow.prompts.Test(t.sess.Lang, t.sess.Direction, t.sess.TestType))
	if reply.Failed {
		t.sess.GeneratedTest = ""
		t.sess.State = types.StateNextStep
		t.say(reply.Text)
		t.hub(texts.NextStep)
		return
	}
	t.sess.GeneratedTest = reply.Text
	t.sess.State = types.StateTestInProgress
	t.say(prompt.Labeled(texts.TestLabel, reply.Text))
}

func (t *turn) answerTest(text string) {
	texts := t.texts()
	if t.sess.GeneratedTest == "" {
		t.hub(texts.PickOption)
		return
	}
	t.sess.LastTestAnswer = text
	reply := t.generate(t.flow.prompts.Analysis(t.sess.Lang, t.sess.GeneratedTest, text))
	t.sess.State = types.StateNextStep
	t.say(prompt.Labeled(texts.TestResultLabel, reply.Text))
	t.hub(texts.NextStep)
}

func (t *turn) answerFreeQuestion(text string) {
	texts := t.texts()
	t.sess.FreeQuestion = text
	reply := t.generate(t.flow.prompts.FreeQuestion(t.sess.Lang, text))
	t.sess.State = types.StateNextStep
	t.say(prompt.Labeled(texts.AnswerLabel, reply.Text))
	t.hub(texts.NextStep)
}
