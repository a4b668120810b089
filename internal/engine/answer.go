package engine

// Answer is the submitted answer for one prompt. The concrete variant must
// match the prompt's interaction type: single-choice prompts take a
// SingleChoice, select-all takes a MultiSelect, and so on.
type Answer interface {
	isAnswer()
}

// SingleChoice selects exactly one option. Used by the whole single-choice
// family: state-identification, best-response, spot-mistake,
// what-happens-next, sequential-choice, before/after-comparison and rating.
type SingleChoice struct {
	OptionID string
}

// MultiSelect selects a set of options for select-all prompts.
// OptionIDs preserves the order the user picked them in; the first element
// decides which option's feedback is shown.
type MultiSelect struct {
	OptionIDs []string
}

// Sequence orders every option of a sequencing prompt
type Sequence struct {
	OptionIDs []string
}

// MatchPair pairs a left-hand option with the right-hand option the user
// matched it to
type MatchPair struct {
	Left  string
	Right string
}

// Matches answers a matching prompt. Pairs preserves insertion order; the
// first pair's left option decides the feedback shown.
type Matches struct {
	Pairs []MatchPair
}

// Text answers the free-text prompt types (text-input, dialogue-completion,
// reflection)
type Text struct {
	Input string
}

func (SingleChoice) isAnswer() {}
func (MultiSelect) isAnswer()  {}
func (Sequence) isAnswer()     {}
func (Matches) isAnswer()      {}
func (Text) isAnswer()         {}
