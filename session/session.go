package session

import (
	"maps"
	"time"

	"github.com/tbxark/hrbot/types"
)

// Session is the mutable per-conversation state. It is only mutated by the
// dialog flow while the conversation lock from Store.Acquire is held.
type Session struct {
	State types.State `json:"state"`
	Lang  types.Lang  `json:"lang,omitempty"`

	// Answers maps question keys to the literal text the user sent.
	// QuizCursor always equals the number of recorded answers.
	Answers    map[string]string `json:"answers"`
	QuizCursor int               `json:"quiz_cursor"`

	Direction      string `json:"direction,omitempty"`
	TestType       string `json:"test_type,omitempty"`
	GeneratedTest  string `json:"generated_test,omitempty"`
	LastTestAnswer string `json:"last_test_answer,omitempty"`
	FreeQuestion   string `json:"free_question,omitempty"`

	LanguagePrompted bool      `json:"language_prompted"`
	LastEventID      int64     `json:"last_event_id,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func New() *Session {
	return &Session{
		State:   types.StateLanguageSelection,
		Answers: map[string]string{},
	}
}

// Reset clears every field in place. The duplicate-event watermark survives
// so a replayed event cannot act on the fresh session.
func (s *Session) Reset() {
	lastEventID := s.LastEventID
	*s = *New()
	s.LastEventID = lastEventID
}

// StartQuiz picks the language and rewinds the quiz.
func (s *Session) StartQuiz(lang types.Lang) {
	s.Lang = lang
	s.Answers = map[string]string{}
	s.QuizCursor = 0
}

// RecordAnswer stores text for the question at the cursor and advances it.
// It reports false when every question already has an answer.
func (s *Session) RecordAnswer(keys []string, text string) bool {
	if s.QuizCursor < 0 || s.QuizCursor >= len(keys) {
		return false
	}
	if s.Answers == nil {
		s.Answers = map[string]string{}
	}
	s.Answers[keys[s.QuizCursor]] = text
	s.QuizCursor++
	return true
}

func (s *Session) QuizDone(total int) bool {
	return s.QuizCursor >= total
}

// OrderedAnswers lists recorded answers in question order, skipping
// questions that were never reached.
func (s *Session) OrderedAnswers(keys []string) []string {
	out := make([]string, 0, len(s.Answers))
	for _, k := range keys {
		if v, ok := s.Answers[k]; ok {
			out = append(out, v)
		}
	}
	return out
}

func (s *Session) HasAnswers() bool {
	for _, v := range s.Answers {
		if v != "" {
			return true
		}
	}
	return false
}

// SeenEvent reports whether a transport event id was already processed and
// records it otherwise. Zero ids are never deduplicated.
func (s *Session) SeenEvent(id int64) bool {
	if id <= 0 {
		return false
	}
	if id <= s.LastEventID {
		return true
	}
	s.LastEventID = id
	return false
}

func (s *Session) Clone() *Session {
	c := *s
	c.Answers = maps.Clone(s.Answers)
	return &c
}
