package engine

import (
	"errors"
	"strings"
	"time"

	"dailycoach/internal/models"
)

// Phase is the state of a session's transition machine
type Phase int

const (
	// PhaseAwaitingAnswer means the current prompt has no submission yet
	PhaseAwaitingAnswer Phase = iota
	// PhaseShowingFeedback follows a submission; the session either
	// continues to the next prompt (correct) or retries (incorrect)
	PhaseShowingFeedback
	// PhaseCompleted is terminal, entered only after the completion call
	// to the progress store has been confirmed
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingAnswer:
		return "awaiting-answer"
	case PhaseShowingFeedback:
		return "showing-feedback"
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}

// ErrNoPrompts is returned when an activity has no prompts to run
var ErrNoPrompts = errors.New("activity has no prompts")

// Session runs one user through one activity. It owns the current prompt
// index, the running score, the per-prompt attempt history, and the
// ephemeral selection state for the current prompt. All mutation happens
// synchronously inside transition calls; a session is single-writer and
// not safe for concurrent use.
type Session struct {
	activity  *models.Activity
	dayNumber int

	idx        int
	totalScore int
	attempts   map[string]*models.PromptAttempt

	phase       Phase
	lastCorrect bool
	feedback    *models.Option
	submitting  bool
	completing  bool

	// ephemeral selection for the current prompt, cleared on every
	// transition to a new prompt and on retry
	selected    string
	selectedSet []string
	ordered     []string
	text        string
	matches     []MatchPair
}

// NewSession creates a session positioned at the activity's first prompt
func NewSession(activity *models.Activity, dayNumber int) (*Session, error) {
	if len(activity.Prompts) == 0 {
		return nil, ErrNoPrompts
	}
	return &Session{
		activity:  activity,
		dayNumber: dayNumber,
		attempts:  make(map[string]*models.PromptAttempt),
	}, nil
}

// Activity returns the activity this session runs
func (s *Session) Activity() *models.Activity { return s.activity }

// DayNumber returns the day this session plays
func (s *Session) DayNumber() int { return s.dayNumber }

// Phase returns the current machine state
func (s *Session) Phase() Phase { return s.phase }

// TotalScore returns the cumulative score across completed prompts
func (s *Session) TotalScore() int { return s.totalScore }

// CurrentIndex returns the 0-based index of the current prompt
func (s *Session) CurrentIndex() int { return s.idx }

// CurrentPrompt returns the prompt the session is positioned at
func (s *Session) CurrentPrompt() *models.Prompt {
	return &s.activity.Prompts[s.idx]
}

// IsLastPrompt reports whether the current prompt is the activity's last
func (s *Session) IsLastPrompt() bool {
	return s.idx == len(s.activity.Prompts)-1
}

// LastCorrect reports whether the most recent submission was correct.
// Only meaningful in PhaseShowingFeedback.
func (s *Session) LastCorrect() bool { return s.lastCorrect }

// Feedback returns the feedback option from the most recent submission
func (s *Session) Feedback() *models.Option { return s.feedback }

// Attempt returns the recorded attempt state for a prompt, or nil if the
// prompt has never been submitted
func (s *Session) Attempt(promptID string) *models.PromptAttempt {
	return s.attempts[promptID]
}

// Progress is the presentation fraction (index+1)/count
func (s *Session) Progress() float64 {
	return float64(s.idx+1) / float64(len(s.activity.Prompts))
}

// IsOptionDisabled reports whether an option id appears in any previously
// recorded submission for the current prompt. The check is substring
// containment against the history encodings, preserving the historical
// behavior for multi-part encodings.
func (s *Session) IsOptionDisabled(optionID string) bool {
	attempt, ok := s.attempts[s.CurrentPrompt().PromptID]
	if !ok {
		return false
	}
	for _, encoded := range attempt.AttemptedOptions {
		if strings.Contains(encoded, optionID) {
			return true
		}
	}
	return false
}

// SelectOption sets the single-choice selection. Options already tried on
// this prompt are blocked.
func (s *Session) SelectOption(optionID string) bool {
	if s.phase != PhaseAwaitingAnswer || s.IsOptionDisabled(optionID) {
		return false
	}
	s.selected = optionID
	return true
}

// ToggleOption adds or removes an option from the multi-select set.
// Adding an already-tried option is blocked; removing is always allowed.
func (s *Session) ToggleOption(optionID string) bool {
	if s.phase != PhaseAwaitingAnswer {
		return false
	}
	for i, id := range s.selectedSet {
		if id == optionID {
			s.selectedSet = append(s.selectedSet[:i], s.selectedSet[i+1:]...)
			return true
		}
	}
	if s.IsOptionDisabled(optionID) {
		return false
	}
	s.selectedSet = append(s.selectedSet, optionID)
	return true
}

// AppendToSequence appends an option to the partial sequence. Duplicates
// are ignored. Previously tried ids stay placeable so a retry can build a
// different ordering.
func (s *Session) AppendToSequence(optionID string) bool {
	if s.phase != PhaseAwaitingAnswer {
		return false
	}
	for _, id := range s.ordered {
		if id == optionID {
			return false
		}
	}
	s.ordered = append(s.ordered, optionID)
	return true
}

// RemoveFromSequence removes the sequence element at index i
func (s *Session) RemoveFromSequence(i int) bool {
	if s.phase != PhaseAwaitingAnswer || i < 0 || i >= len(s.ordered) {
		return false
	}
	s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
	return true
}

// SetText sets the free-text input
func (s *Session) SetText(input string) bool {
	if s.phase != PhaseAwaitingAnswer {
		return false
	}
	s.text = input
	return true
}

// SetMatch pairs a left option with a right option, replacing any existing
// pairing for that left option
func (s *Session) SetMatch(leftID, rightID string) bool {
	if s.phase != PhaseAwaitingAnswer {
		return false
	}
	for i := range s.matches {
		if s.matches[i].Left == leftID {
			s.matches[i].Right = rightID
			return true
		}
	}
	s.matches = append(s.matches, MatchPair{Left: leftID, Right: rightID})
	return true
}

// SetAnswer loads a complete answer into the ephemeral selection state,
// replacing whatever was built incrementally. Used by transports that
// deliver the whole answer in one request.
func (s *Session) SetAnswer(a Answer) bool {
	if s.phase != PhaseAwaitingAnswer {
		return false
	}
	s.clearSelection()
	switch ans := a.(type) {
	case SingleChoice:
		s.selected = ans.OptionID
	case MultiSelect:
		s.selectedSet = append([]string(nil), ans.OptionIDs...)
	case Sequence:
		s.ordered = append([]string(nil), ans.OptionIDs...)
	case Matches:
		s.matches = append([]MatchPair(nil), ans.Pairs...)
	case Text:
		s.text = ans.Input
	default:
		return false
	}
	return true
}

// CanSubmit reports whether the current selection satisfies the prompt
// type's submission predicate
func (s *Session) CanSubmit() bool {
	if s.phase != PhaseAwaitingAnswer {
		return false
	}
	prompt := s.CurrentPrompt()
	switch prompt.Type {
	case models.TypeSelectAll:
		if prompt.Config != nil && prompt.Config.MinCorrect != nil {
			return len(s.selectedSet) >= *prompt.Config.MinCorrect
		}
		return len(s.selectedSet) > 0
	case models.TypeSequencing:
		return len(s.ordered) == len(prompt.Options)
	case models.TypeTextInput, models.TypeDialogueCompletion, models.TypeReflection:
		return strings.TrimSpace(s.text) != ""
	case models.TypeMatching:
		return len(s.matches) == len(prompt.Options)/2
	default:
		return s.selected != ""
	}
}

// SubmitOutcome reports the result of one accepted submission
type SubmitOutcome struct {
	Correct       bool
	AttemptNumber int
	PointsAwarded int
	Feedback      *models.Option
	LastPrompt    bool
	// Result is the analytics record for this prompt after the submission
	Result models.PromptResult
}

// Submit grades the current selection. It is a no-op (false) outside
// PhaseAwaitingAnswer, while another submit is in flight, when the
// submission predicate fails, or when the evaluator rejects the answer.
// On success the session moves to PhaseShowingFeedback.
func (s *Session) Submit() (SubmitOutcome, bool) {
	if s.phase != PhaseAwaitingAnswer || s.submitting || !s.CanSubmit() {
		return SubmitOutcome{}, false
	}
	s.submitting = true
	defer func() { s.submitting = false }()

	prompt := s.CurrentPrompt()
	eval, ok := Evaluate(prompt, s.currentAnswer())
	if !ok {
		return SubmitOutcome{}, false
	}

	attempt, exists := s.attempts[prompt.PromptID]
	if !exists {
		attempt = &models.PromptAttempt{PromptID: prompt.PromptID}
		s.attempts[prompt.PromptID] = attempt
	}

	attemptNumber := len(attempt.AttemptedOptions) + 1
	points := CalculatePoints(prompt.Points, len(prompt.Options), attemptNumber, eval.Correct)

	attempt.AttemptedOptions = append(attempt.AttemptedOptions, eval.Encoding)
	if eval.Correct && !attempt.Completed {
		attempt.Completed = true
		attempt.PointsEarned = points
		s.totalScore += points
	}

	s.lastCorrect = eval.Correct
	s.feedback = eval.Feedback
	s.phase = PhaseShowingFeedback

	now := time.Now().UTC().Format(time.RFC3339)
	logs := make([]models.AttemptLog, len(attempt.AttemptedOptions))
	for i, encoded := range attempt.AttemptedOptions {
		logs[i] = models.AttemptLog{OptionID: encoded, Correct: eval.Correct, Timestamp: now}
	}

	return SubmitOutcome{
		Correct:       eval.Correct,
		AttemptNumber: attemptNumber,
		PointsAwarded: points,
		Feedback:      eval.Feedback,
		LastPrompt:    s.IsLastPrompt(),
		Result: models.PromptResult{
			PromptID:     prompt.PromptID,
			Tries:        attemptNumber,
			Logs:         logs,
			PointsEarned: attempt.PointsEarned,
			Completed:    attempt.Completed,
		},
	}, true
}

// currentAnswer packages the ephemeral selection as the answer variant for
// the current prompt type
func (s *Session) currentAnswer() Answer {
	switch s.CurrentPrompt().Type {
	case models.TypeSelectAll:
		return MultiSelect{OptionIDs: s.selectedSet}
	case models.TypeSequencing:
		return Sequence{OptionIDs: s.ordered}
	case models.TypeMatching:
		return Matches{Pairs: s.matches}
	case models.TypeTextInput, models.TypeDialogueCompletion, models.TypeReflection:
		return Text{Input: s.text}
	default:
		return SingleChoice{OptionID: s.selected}
	}
}

// TryAgain returns to PhaseAwaitingAnswer on the same prompt after an
// incorrect submission. Selection state is cleared; the attempt history
// stays, so previously tried options remain disabled.
func (s *Session) TryAgain() bool {
	if s.phase != PhaseShowingFeedback || s.lastCorrect {
		return false
	}
	s.clearSelection()
	s.feedback = nil
	s.phase = PhaseAwaitingAnswer
	return true
}

// ContinueToNext advances to the next prompt after a correct submission.
// On the last prompt it is a no-op: the caller moves to the takeaway and
// completion flow instead.
func (s *Session) ContinueToNext() bool {
	if s.phase != PhaseShowingFeedback || !s.lastCorrect || s.IsLastPrompt() {
		return false
	}
	s.clearSelection()
	s.feedback = nil
	s.idx++
	s.phase = PhaseAwaitingAnswer
	return true
}

// ReadyToComplete reports whether the session has correctly answered the
// last prompt and is waiting on the confirmed completion call
func (s *Session) ReadyToComplete() bool {
	return s.phase == PhaseShowingFeedback && s.lastCorrect && s.IsLastPrompt()
}

// BeginCompletion starts the completion handshake, returning the values
// for the external completion call. It fails if the session is not ready
// or a completion attempt is already in flight.
func (s *Session) BeginCompletion() (dayNumber, totalScore int, ok bool) {
	if !s.ReadyToComplete() || s.completing {
		return 0, 0, false
	}
	s.completing = true
	return s.dayNumber, s.totalScore, true
}

// FinishCompletion ends the completion handshake. With success=true the
// session becomes PhaseCompleted; otherwise it stays retryable.
func (s *Session) FinishCompletion(success bool) {
	if !s.completing {
		return
	}
	s.completing = false
	if success {
		s.phase = PhaseCompleted
	}
}

func (s *Session) clearSelection() {
	s.selected = ""
	s.selectedSet = nil
	s.ordered = nil
	s.text = ""
	s.matches = nil
}
