// Package prompt builds the localized instructions sent to the generation
// service. Every builder is pure: the same session data yields the same prompt.
package prompt

import (
	"strings"

	"github.com/tbxark/hrbot/locale"
	"github.com/tbxark/hrbot/types"
)

type Builder struct {
	table *locale.Table
}

func NewBuilder(table *locale.Table) *Builder {
	return &Builder{table: table}
}

// Feedback puts the instruction prefix on the first line followed by one
// answer per line, in question order.
func (b *Builder) Feedback(lang types.Lang, answers []string) string {
	var sb strings.Builder
	sb.WriteString(b.table.For(lang).FeedbackPrompt)
	sb.WriteString("\n")
	sb.WriteString(strings.Join(answers, "\n"))
	return sb.String()
}

// Test asks for a quiz on direction. The test type is embedded lowercased.
func (b *Builder) Test(lang types.Lang, direction, testType string) string {
	return locale.Render(b.table.For(lang).TestPrompt, map[string]string{
		"direction": direction,
		"test_type": strings.ToLower(testType),
	})
}

func (b *Builder) Analysis(lang types.Lang, test, answers string) string {
	return locale.Render(b.table.For(lang).AnalysisPrompt, map[string]string{
		"test":    test,
		"answers": answers,
	})
}

func (b *Builder) FreeQuestion(lang types.Lang, question string) string {
	return locale.Render(b.table.For(lang).FreeQuestionPrompt, map[string]string{
		"question": question,
	})
}

// Labeled prefixes a generated result with its localized label.
func Labeled(label, text string) string {
	return label + "\n" + text
}
