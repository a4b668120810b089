package models

// PromptType identifies the interaction pattern of a prompt. The set is
// closed: content using an unknown type is rejected at load time.
type PromptType string

const (
	TypeStateIdentification   PromptType = "state-identification"
	TypeBestResponse          PromptType = "best-response"
	TypeSequentialChoice      PromptType = "sequential-choice"
	TypeSpotMistake           PromptType = "spot-mistake"
	TypeDialogueCompletion    PromptType = "dialogue-completion"
	TypeBeforeAfterComparison PromptType = "before-after-comparison"
	TypeWhatHappensNext       PromptType = "what-happens-next"
	TypeSequencing            PromptType = "sequencing"
	TypeSelectAll             PromptType = "select-all"
	TypeRating                PromptType = "rating"
	TypeMatching              PromptType = "matching"
	TypeTextInput             PromptType = "text-input"
	TypeReflection            PromptType = "reflection"
)

// Valid reports whether t is one of the known prompt types
func (t PromptType) Valid() bool {
	switch t {
	case TypeStateIdentification, TypeBestResponse, TypeSequentialChoice,
		TypeSpotMistake, TypeDialogueCompletion, TypeBeforeAfterComparison,
		TypeWhatHappensNext, TypeSequencing, TypeSelectAll, TypeRating,
		TypeMatching, TypeTextInput, TypeReflection:
		return true
	}
	return false
}

// IsFreeText reports whether t takes free text instead of option selection.
// Free-text prompts have no options and no wrong answer.
func (t PromptType) IsFreeText() bool {
	return t == TypeTextInput || t == TypeDialogueCompletion || t == TypeReflection
}

// Prompt is one gradable question within an activity. Order matters:
// prompts are presented by position in the activity's list.
type Prompt struct {
	PromptID    string        `json:"promptId"`
	Type        PromptType    `json:"type"`
	PromptText  string        `json:"promptText"`
	Order       int           `json:"order"`
	Points      int           `json:"points"`
	BranchLogic *BranchLogic  `json:"branchLogic,omitempty"`
	Options     []Option      `json:"options"`
	Config      *PromptConfig `json:"config,omitempty"`
}

// OptionByID returns the option with the given id, or nil
func (p *Prompt) OptionByID(optionID string) *Option {
	for i := range p.Options {
		if p.Options[i].OptionID == optionID {
			return &p.Options[i]
		}
	}
	return nil
}

// BranchLogic is conditional routing metadata emitted by the content
// pipeline. The engine advances prompts strictly by position and carries
// this through untouched for clients that render branch previews.
type BranchLogic struct {
	Condition  BranchCondition `json:"condition"`
	NextPrompt string          `json:"nextPrompt"`
}

// BranchCondition is the trigger half of a BranchLogic entry
type BranchCondition struct {
	IfSelected string `json:"ifSelected"`
	Operator   string `json:"operator"`
}

// PromptConfig carries type-specific parameters
type PromptConfig struct {
	AllowMultiple *bool    `json:"allowMultiple,omitempty"`
	MinCorrect    *int     `json:"minCorrect,omitempty"`
	ScaleType     *string  `json:"scaleType,omitempty"`
	ScaleRange    []int    `json:"scaleRange,omitempty"`
	InputType     *string  `json:"inputType,omitempty"`
	WordBank      []string `json:"wordBank,omitempty"`
	SequenceType  *string  `json:"sequenceType,omitempty"`
}

// Option is one selectable, orderable or matchable element of a prompt
type Option struct {
	OptionID    string          `json:"optionId"`
	OptionText  string          `json:"optionText"`
	Correct     bool            `json:"correct"`
	Points      int             `json:"points"`
	Feedback    string          `json:"feedback"`
	Metadata    *OptionMetadata `json:"metadata,omitempty"`
	ScienceNote *ScienceNote    `json:"scienceNote,omitempty"`
}

// OptionMetadata holds per-type option data: the target position for
// sequencing, the right-hand option id for matching, a version tag for
// before/after comparisons
type OptionMetadata struct {
	Version      *string `json:"version,omitempty"`
	MatchTarget  *string `json:"matchTarget,omitempty"`
	CorrectOrder *int    `json:"correctOrder,omitempty"`
}

// ScienceNote is a research-backed aside surfaced with correct-answer feedback
type ScienceNote struct {
	Brief        string  `json:"brief"`
	Citation     *string `json:"citation,omitempty"`
	ShowCitation bool    `json:"showCitation"`
}
