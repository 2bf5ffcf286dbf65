// Package locale holds every user-facing string of the bot. A Table is built
// once at startup and never mutated afterwards, so it is safe for concurrent
// readers without locking.
package locale

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tbxark/hrbot/command"
	"github.com/tbxark/hrbot/types"
)

// LanguageOption is one entry of the language menu. Labels are matched
// literally, so they are the same whatever language is active.
type LanguageOption struct {
	Label string     `json:"label"`
	Code  types.Lang `json:"code"`
}

type Question struct {
	Key  string                `json:"key"`
	Text map[types.Lang]string `json:"text"`
}

// Texts is the per-language set of prompts, labels and menus. Prompt
// templates use named placeholders: {direction}, {test_type}, {test},
// {answers}, {question} and {detail}.
type Texts struct {
	Intro           string `json:"intro"`
	NextStep        string `json:"next_step"`
	PickOption      string `json:"pick_option"`
	AnswerFirst     string `json:"answer_first"`
	NotImplemented  string `json:"not_implemented"`
	ChooseDirection string `json:"choose_direction"`
	ChooseTestType  string `json:"choose_test_type"`
	AskQuestion     string `json:"ask_question"`
	Busy            string `json:"busy"`
	InternalError   string `json:"internal_error"`

	Options    []string `json:"options"`
	Directions []string `json:"directions"`
	TestTypes  []string `json:"test_types"`

	FeedbackLabel   string `json:"feedback_label"`
	TestLabel       string `json:"test_label"`
	TestResultLabel string `json:"test_result_label"`
	AnswerLabel     string `json:"answer_label"`

	FeedbackPrompt     string `json:"feedback_prompt"`
	TestPrompt         string `json:"test_prompt"`
	AnalysisPrompt     string `json:"analysis_prompt"`
	FreeQuestionPrompt string `json:"free_question_prompt"`

	APIError        string `json:"api_error"`
	ConnectionError string `json:"connection_error"`
}

type Table struct {
	Fallback       types.Lang            `json:"fallback"`
	LanguagePrompt string                `json:"language_prompt"`
	Languages      []LanguageOption      `json:"languages"`
	Questions      []Question            `json:"questions"`
	Texts          map[types.Lang]*Texts `json:"texts"`
}

// LanguageByLabel matches a language menu label exactly.
func (t *Table) LanguageByLabel(label string) (types.Lang, bool) {
	for _, l := range t.Languages {
		if l.Label == label {
			return l.Code, true
		}
	}
	return "", false
}

func (t *Table) LanguageLabels() []string {
	labels := make([]string, 0, len(t.Languages))
	for _, l := range t.Languages {
		labels = append(labels, l.Label)
	}
	return labels
}

func (t *Table) Supports(lang types.Lang) bool {
	_, ok := t.Texts[lang]
	return ok
}

// Resolve returns lang when the table has it and the fallback otherwise.
func (t *Table) Resolve(lang types.Lang) types.Lang {
	if t.Supports(lang) {
		return lang
	}
	return t.Fallback
}

func (t *Table) For(lang types.Lang) *Texts {
	return t.Texts[t.Resolve(lang)]
}

func (t *Table) NumQuestions() int {
	return len(t.Questions)
}

func (t *Table) QuestionKeys() []string {
	keys := make([]string, 0, len(t.Questions))
	for _, q := range t.Questions {
		keys = append(keys, q.Key)
	}
	return keys
}

func (t *Table) QuestionText(i int, lang types.Lang) string {
	if i < 0 || i >= len(t.Questions) {
		return ""
	}
	return t.Questions[i].Text[t.Resolve(lang)]
}

// Render substitutes named placeholders in a prompt template.
func Render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func (t *Table) Validate() error {
	if len(t.Languages) == 0 {
		return fmt.Errorf("no languages configured")
	}
	if !t.Supports(t.Fallback) {
		return fmt.Errorf("fallback language %q has no texts", t.Fallback)
	}
	seenLabels := map[string]bool{}
	for _, l := range t.Languages {
		if l.Label == "" {
			return fmt.Errorf("language %q has an empty label", l.Code)
		}
		if seenLabels[l.Label] {
			return fmt.Errorf("duplicate language label %q", l.Label)
		}
		seenLabels[l.Label] = true
		if !t.Supports(l.Code) {
			return fmt.Errorf("language %q has no texts", l.Code)
		}
	}
	seenKeys := map[string]bool{}
	for i, q := range t.Questions {
		if q.Key == "" {
			return fmt.Errorf("question %d has an empty key", i)
		}
		if seenKeys[q.Key] {
			return fmt.Errorf("duplicate question key %q", q.Key)
		}
		seenKeys[q.Key] = true
		for code := range t.Texts {
			if q.Text[code] == "" {
				return fmt.Errorf("question %q has no %s text", q.Key, code)
			}
		}
	}
	for code, texts := range t.Texts {
		if texts == nil {
			return fmt.Errorf("language %q has nil texts", code)
		}
		if err := texts.validate(); err != nil {
			return fmt.Errorf("language %q: %w", code, err)
		}
	}
	return nil
}

func (x *Texts) validate() error {
	required := map[string]string{
		"intro":                x.Intro,
		"next_step":            x.NextStep,
		"pick_option":          x.PickOption,
		"answer_first":         x.AnswerFirst,
		"choose_direction":     x.ChooseDirection,
		"choose_test_type":     x.ChooseTestType,
		"ask_question":         x.AskQuestion,
		"not_implemented":      x.NotImplemented,
		"busy":                 x.Busy,
		"internal_error":       x.InternalError,
		"feedback_prompt":      x.FeedbackPrompt,
		"test_prompt":          x.TestPrompt,
		"analysis_prompt":      x.AnalysisPrompt,
		"free_question_prompt": x.FreeQuestionPrompt,
		"api_error":            x.APIError,
		"connection_error":     x.ConnectionError,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is empty", name)
		}
	}
	if len(x.Directions) == 0 || len(x.TestTypes) == 0 {
		return fmt.Errorf("directions and test_types must not be empty")
	}
	// Every menu action must stay reachable through its glyph.
	for _, m := range command.Markers {
		if !slices.ContainsFunc(x.Options, func(opt string) bool { return strings.Contains(opt, m.Glyph) }) {
			return fmt.Errorf("options have no entry with the %s marker %q", m.Command, m.Glyph)
		}
	}
	return nil
}
