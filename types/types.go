package types

type Lang string

const (
	LangKyrgyz  Lang = "ky"
	LangRussian Lang = "ru"
	LangEnglish Lang = "en"
)

type State string

const (
	StateLanguageSelection  State = "language_selection"
	StateQuiz               State = "quiz"
	StateNextStep           State = "next_step"
	StateDirectionSelection State = "direction_selection"
	StateTestTypeSelection  State = "test_type_selection"
	StateTestInProgress     State = "test_in_progress"
	StateFreeQuestion       State = "free_question"
)

// Outbound is a single message emitted by a transition. A nil Options slice
// means plain text; a non-nil one asks the transport to render a menu.
type Outbound struct {
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

func (o Outbound) IsMenu() bool {
	return o.Options != nil
}

// Step pairs an outbound effect with the state the conversation is in once
// the effect has been delivered.
type Step struct {
	Outbound Outbound `json:"outbound"`
	State    State    `json:"state"`
}
