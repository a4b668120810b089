package engine

import (
	"math"
	"testing"

	"dailycoach/internal/models"
)

func testActivity(prompts ...models.Prompt) *models.Activity {
	return &models.Activity{
		ID:        "act-1",
		DayNumber: 1,
		AgeBand:   models.AgeBand6to9,
		Title:     "Test activity",
		Scenario:  "A test scenario",
		Prompts:   prompts,
	}
}

func binaryChoicePrompt() models.Prompt {
	return models.Prompt{
		PromptID: "bc1",
		Type:     models.TypeBestResponse,
		Points:   10,
		Options: []models.Option{
			{OptionID: "yes", Correct: true, Feedback: "That works."},
			{OptionID: "no", Correct: false, Feedback: "Try something else."},
		},
	}
}

func TestSessionRejectsEmptyActivity(t *testing.T) {
	if _, err := NewSession(testActivity(), 1); err != ErrNoPrompts {
		t.Errorf("NewSession with no prompts: err = %v, want ErrNoPrompts", err)
	}
}

// Scenario: binary single-choice, correct on the first try.
func TestSessionFirstTryCorrect(t *testing.T) {
	s, err := NewSession(testActivity(binaryChoicePrompt()), 1)
	if err != nil {
		t.Fatal(err)
	}

	if s.CanSubmit() {
		t.Error("CanSubmit() should be false before any selection")
	}
	if !s.SelectOption("yes") {
		t.Fatal("SelectOption failed")
	}
	if !s.CanSubmit() {
		t.Fatal("CanSubmit() should be true with a selection")
	}

	outcome, ok := s.Submit()
	if !ok {
		t.Fatal("Submit failed")
	}
	if !outcome.Correct || outcome.PointsAwarded != 10 {
		t.Errorf("outcome = correct %v, %d points; want correct, 10 points", outcome.Correct, outcome.PointsAwarded)
	}
	if s.TotalScore() != 10 {
		t.Errorf("TotalScore() = %d, want 10", s.TotalScore())
	}
	if s.Phase() != PhaseShowingFeedback {
		t.Errorf("Phase() = %v, want showing-feedback", s.Phase())
	}
	attempt := s.Attempt("bc1")
	if attempt == nil || !attempt.Completed || attempt.PointsEarned != 10 {
		t.Errorf("attempt = %+v, want completed with 10 points", attempt)
	}
	if !outcome.LastPrompt || !s.ReadyToComplete() {
		t.Error("single-prompt activity should be ready to complete")
	}
}

// A wrong answer disables the tried option, tryAgain keeps the history,
// and the retry on a binary choice earns nothing.
func TestSessionRetryFlow(t *testing.T) {
	s, err := NewSession(testActivity(binaryChoicePrompt()), 1)
	if err != nil {
		t.Fatal(err)
	}

	s.SelectOption("no")
	outcome, ok := s.Submit()
	if !ok {
		t.Fatal("Submit failed")
	}
	if outcome.Correct || outcome.PointsAwarded != 0 {
		t.Errorf("wrong answer: outcome = %+v, want incorrect with 0 points", outcome)
	}
	if s.ContinueToNext() {
		t.Error("ContinueToNext must not be reachable after an incorrect answer")
	}
	if !s.TryAgain() {
		t.Fatal("TryAgain failed after incorrect answer")
	}

	if got := len(s.Attempt("bc1").AttemptedOptions); got != 1 {
		t.Errorf("tryAgain cleared attempt history: len = %d, want 1", got)
	}
	if !s.IsOptionDisabled("no") {
		t.Error("previously tried option must be disabled")
	}
	if s.SelectOption("no") {
		t.Error("selecting a disabled option must be blocked")
	}

	s.SelectOption("yes")
	outcome, ok = s.Submit()
	if !ok {
		t.Fatal("retry Submit failed")
	}
	if !outcome.Correct || outcome.PointsAwarded != 0 {
		t.Errorf("binary retry: outcome = %+v, want correct with 0 points", outcome)
	}
	if s.TotalScore() != 0 {
		t.Errorf("TotalScore() = %d, want 0 after zero-credit retry", s.TotalScore())
	}
	if attempt := s.Attempt("bc1"); !attempt.Completed {
		t.Error("attempt should be completed after correct retry")
	}
}

// Scenario 4 from the scoring design: 4-option sequencing worth 20 points,
// wrong on attempt 1, correct on attempt 3 earns ceil(20/3) = 7.
func TestSessionSequencingPartialCredit(t *testing.T) {
	s, err := NewSession(testActivity(*sequencingPrompt()), 3)
	if err != nil {
		t.Fatal(err)
	}

	submitOrder := func(order []string) SubmitOutcome {
		t.Helper()
		if !s.SetAnswer(Sequence{OptionIDs: order}) {
			t.Fatal("SetAnswer failed")
		}
		outcome, ok := s.Submit()
		if !ok {
			t.Fatal("Submit failed")
		}
		return outcome
	}

	if out := submitOrder([]string{"s2", "s1", "s3", "s4"}); out.Correct {
		t.Fatal("wrong order graded correct")
	}
	s.TryAgain()
	if out := submitOrder([]string{"s3", "s1", "s2", "s4"}); out.Correct {
		t.Fatal("wrong order graded correct")
	}
	s.TryAgain()

	outcome := submitOrder([]string{"s1", "s2", "s3", "s4"})
	if !outcome.Correct {
		t.Fatal("correct order graded incorrect")
	}
	if outcome.AttemptNumber != 3 {
		t.Errorf("AttemptNumber = %d, want 3", outcome.AttemptNumber)
	}
	if outcome.PointsAwarded != 7 {
		t.Errorf("PointsAwarded = %d, want 7", outcome.PointsAwarded)
	}
	if s.TotalScore() != 7 {
		t.Errorf("TotalScore() = %d, want 7", s.TotalScore())
	}

	result := outcome.Result
	if result.Tries != 3 || len(result.Logs) != 3 || !result.Completed || result.PointsEarned != 7 {
		t.Errorf("analytics result = %+v, want 3 tries, 3 logs, completed, 7 points", result)
	}
	if result.Logs[0].OptionID != "s2,s1,s3,s4" {
		t.Errorf("first log encoding = %q, want the first submitted order", result.Logs[0].OptionID)
	}
}

func TestSessionSelectAllFlow(t *testing.T) {
	s, err := NewSession(testActivity(*selectAllPrompt()), 1)
	if err != nil {
		t.Fatal(err)
	}

	s.ToggleOption("a")
	if s.CanSubmit() {
		t.Error("CanSubmit() should be false below the configured minimum")
	}
	s.ToggleOption("c")
	if !s.CanSubmit() {
		t.Fatal("CanSubmit() should be true at the configured minimum")
	}

	outcome, ok := s.Submit()
	if !ok {
		t.Fatal("Submit failed")
	}
	if outcome.Correct {
		t.Error("selection including a wrong option graded correct")
	}
	if got := s.Attempt("p2").AttemptedOptions[0]; got != "a,c" {
		t.Errorf("recorded encoding = %q, want %q", got, "a,c")
	}
	if s.TotalScore() != 0 {
		t.Errorf("TotalScore() = %d, want 0", s.TotalScore())
	}

	s.TryAgain()
	// Both tried ids are disabled for re-selection by the containment check.
	if s.ToggleOption("a") || s.ToggleOption("c") {
		t.Error("previously tried options must not be re-selectable")
	}
	if !s.ToggleOption("b") {
		t.Error("untried option should remain selectable")
	}
}

func TestSessionProgressAndAdvance(t *testing.T) {
	first := binaryChoicePrompt()
	second := binaryChoicePrompt()
	second.PromptID = "bc2"
	s, err := NewSession(testActivity(first, second), 1)
	if err != nil {
		t.Fatal(err)
	}

	if got := s.Progress(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Progress() = %v, want 0.5", got)
	}

	s.SelectOption("yes")
	s.Submit()
	if !s.ContinueToNext() {
		t.Fatal("ContinueToNext failed after correct answer")
	}
	if s.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", s.CurrentIndex())
	}
	if s.CanSubmit() {
		t.Error("selection state must be cleared on advance")
	}
	if first := s.Attempt("bc1"); first == nil || len(first.AttemptedOptions) != 1 {
		t.Error("advancing must not touch prior prompt attempts")
	}

	s.SelectOption("yes")
	s.Submit()
	if got := s.Progress(); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Progress() on last prompt = %v, want 1.0", got)
	}
	if s.ContinueToNext() {
		t.Error("ContinueToNext past the last prompt must be a no-op")
	}
	if !s.ReadyToComplete() {
		t.Error("session should be ready to complete")
	}
}

func TestSessionCompletionHandshake(t *testing.T) {
	s, err := NewSession(testActivity(binaryChoicePrompt()), 5)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, ok := s.BeginCompletion(); ok {
		t.Error("BeginCompletion before the last correct answer must fail")
	}

	s.SelectOption("yes")
	s.Submit()

	day, score, ok := s.BeginCompletion()
	if !ok || day != 5 || score != 10 {
		t.Fatalf("BeginCompletion = (%d, %d, %v), want (5, 10, true)", day, score, ok)
	}
	if _, _, ok := s.BeginCompletion(); ok {
		t.Error("concurrent BeginCompletion must be rejected")
	}

	// A failed server call leaves the session retryable.
	s.FinishCompletion(false)
	if s.Phase() == PhaseCompleted {
		t.Error("failed completion must not finish the session")
	}

	day, score, ok = s.BeginCompletion()
	if !ok || day != 5 || score != 10 {
		t.Fatalf("retry BeginCompletion = (%d, %d, %v), want (5, 10, true)", day, score, ok)
	}
	s.FinishCompletion(true)
	if s.Phase() != PhaseCompleted {
		t.Errorf("Phase() = %v, want completed", s.Phase())
	}
}

// The containment check treats an id as tried when it is a substring of a
// recorded encoding. This documents the historical behavior, including its
// quirk for ids that prefix one another.
func TestSessionDisabledOptionContainment(t *testing.T) {
	prompt := models.Prompt{
		PromptID: "p10",
		Type:     models.TypeSelectAll,
		Points:   10,
		Options: []models.Option{
			{OptionID: "o1", Correct: true},
			{OptionID: "o10", Correct: true},
			{OptionID: "o2", Correct: false},
		},
	}
	s, err := NewSession(testActivity(prompt), 1)
	if err != nil {
		t.Fatal(err)
	}

	s.ToggleOption("o10")
	s.Submit()
	s.TryAgain()

	if !s.IsOptionDisabled("o10") {
		t.Error("tried option o10 must be disabled")
	}
	// "o1" is a substring of the recorded "o10" encoding.
	if !s.IsOptionDisabled("o1") {
		t.Error("containment check should also report o1 as disabled")
	}
	if s.IsOptionDisabled("o2") {
		t.Error("untried option o2 must not be disabled")
	}
}

func TestSessionSubmitGuards(t *testing.T) {
	s, err := NewSession(testActivity(binaryChoicePrompt()), 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Submit(); ok {
		t.Error("Submit with no selection must be a no-op")
	}

	s.SelectOption("yes")
	if _, ok := s.Submit(); !ok {
		t.Fatal("Submit failed")
	}
	// Second tap lands in showing-feedback and must be ignored.
	if _, ok := s.Submit(); ok {
		t.Error("Submit while showing feedback must be a no-op")
	}
	if s.SelectOption("no") {
		t.Error("selection must be frozen while showing feedback")
	}
	if got := len(s.Attempt("bc1").AttemptedOptions); got != 1 {
		t.Errorf("attempt history length = %d, want 1", got)
	}
}

func TestSessionTextPromptFlow(t *testing.T) {
	prompt := models.Prompt{
		PromptID: "tx1",
		Type:     models.TypeTextInput,
		Points:   15,
	}
	s, err := NewSession(testActivity(prompt), 1)
	if err != nil {
		t.Fatal(err)
	}

	s.SetText("   ")
	if s.CanSubmit() {
		t.Error("whitespace-only input must not be submittable")
	}
	s.SetText("I would take a breath first")
	outcome, ok := s.Submit()
	if !ok {
		t.Fatal("Submit failed")
	}
	if !outcome.Correct || outcome.PointsAwarded != 15 {
		t.Errorf("text outcome = %+v, want correct with full 15 points", outcome)
	}
	if outcome.Feedback == nil || outcome.Feedback.OptionID != "text-input" {
		t.Error("expected synthesized text feedback option")
	}
	if got := s.Attempt("tx1").AttemptedOptions[0]; got != "text:I would take a breath first" {
		t.Errorf("recorded encoding = %q", got)
	}
}
