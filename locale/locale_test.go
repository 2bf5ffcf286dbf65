package locale

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/hrbot/command"
	"github.com/tbxark/hrbot/types"
)

func TestDefaultTableIsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())
}

func TestLanguageByLabelIsExact(t *testing.T) {
	t.Parallel()
	table := Default()

	lang, ok := table.LanguageByLabel("🇬🇧 English")
	require.True(t, ok)
	assert.Equal(t, types.LangEnglish, lang)

	_, ok = table.LanguageByLabel("🇬🇧 english")
	assert.False(t, ok)
	_, ok = table.LanguageByLabel("English")
	assert.False(t, ok)
}

func TestResolveFallsBack(t *testing.T) {
	t.Parallel()
	table := Default()
	assert.Equal(t, types.LangKyrgyz, table.Resolve(types.LangKyrgyz))
	assert.Equal(t, types.LangRussian, table.Resolve(""))
	assert.Equal(t, types.LangRussian, table.Resolve("de"))
	assert.Equal(t, "Tell me about yourself.", table.QuestionText(0, types.LangEnglish))
	assert.Equal(t, "", table.QuestionText(3, types.LangEnglish))
}

func TestMenuMarkersAreSharedAcrossLanguages(t *testing.T) {
	t.Parallel()
	table := Default()
	for code, texts := range table.Texts {
		for _, m := range command.Markers {
			found := false
			for _, opt := range texts.Options {
				if strings.Contains(opt, m.Glyph) {
					found = true
				}
			}
			assert.Truef(t, found, "%s menu misses %s", code, m.Glyph)
		}
	}
}

func TestRender(t *testing.T) {
	t.Parallel()
	got := Render(Default().For(types.LangEnglish).TestPrompt, map[string]string{
		"test_type": "theory",
		"direction": "Backend",
	})
	assert.Equal(t, "Create a theory quiz for the Backend field in English and wait for user's answers.", got)
}

func TestLoadYAMLOverrides(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	overrides := `
texts:
  en:
    intro: "Welcome to interview prep!"
    options: ["🧠 Test me", "📋 Advice", "💬 Question", "🔁 Again"]
`
	require.NoError(t, os.WriteFile(path, []byte(overrides), 0o600))

	table, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "Welcome to interview prep!", table.For(types.LangEnglish).Intro)
	assert.Equal(t, []string{"🧠 Test me", "📋 Advice", "💬 Question", "🔁 Again"}, table.For(types.LangEnglish).Options)
	// Untouched fields survive the merge.
	assert.Equal(t, "Your weaknesses?", table.QuestionText(1, types.LangEnglish))
	assert.Equal(t, Default().For(types.LangRussian).Intro, table.For(types.LangRussian).Intro)
}

func TestLoadRejectsOverridesDroppingMarkers(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"texts":{"en":{"options":["Take quiz","Restart"]}}}`), 0o600))

	_, err := Load(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker")
}

func TestLoadFallbackOverride(t *testing.T) {
	t.Parallel()
	table, err := Load("", types.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, types.LangEnglish, table.Resolve("xx"))

	_, err = Load("", "de")
	require.Error(t, err)
}

func TestLoadRejectsBlankedReplies(t *testing.T) {
	t.Parallel()
	for _, key := range []string{"not_implemented", "busy", "internal_error"} {
		path := filepath.Join(t.TempDir(), "overrides.json")
		body := `{"texts":{"ky":{"` + key + `":""}}}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		_, err := Load(path, "")
		require.Error(t, err, key)
		assert.Contains(t, err.Error(), key+" is empty")
	}
}
