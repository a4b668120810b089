package engine

import (
	"strings"

	"dailycoach/internal/models"
)

// Fixed feedback for the free-text prompt types, which have no options of
// their own to carry feedback text.
const (
	textFeedback       = "Great! Your response shows thoughtful consideration."
	reflectionFeedback = "Thank you for sharing your thoughts."
)

// Evaluation is the outcome of grading one submission
type Evaluation struct {
	// Correct is the graded result for this submission
	Correct bool
	// Feedback is the option whose feedback text is surfaced to the user.
	// For free-text types it is synthesized; for set-shaped answers it is
	// the option matching the first element the user picked.
	Feedback *models.Option
	// Encoding is the type-specific string recorded in the prompt's
	// attempt history
	Encoding string
}

// Evaluate grades a submitted answer against a prompt. The second return
// is false when the submission is not evaluable (no option selected, or an
// answer shape that does not match the prompt type); such submissions are
// no-ops and must not be recorded.
//
// Malformed content (an option missing its sequencing or matching
// metadata) grades as incorrect rather than failing: a content-pipeline
// bug must never break a running session.
func Evaluate(p *models.Prompt, a Answer) (Evaluation, bool) {
	switch p.Type {
	case models.TypeSelectAll:
		ans, ok := a.(MultiSelect)
		if !ok {
			return Evaluation{}, false
		}
		return evaluateSelectAll(p, ans), true

	case models.TypeSequencing:
		ans, ok := a.(Sequence)
		if !ok {
			return Evaluation{}, false
		}
		return evaluateSequence(p, ans), true

	case models.TypeMatching:
		ans, ok := a.(Matches)
		if !ok {
			return Evaluation{}, false
		}
		return evaluateMatches(p, ans), true

	case models.TypeTextInput, models.TypeDialogueCompletion, models.TypeReflection:
		ans, ok := a.(Text)
		if !ok {
			return Evaluation{}, false
		}
		return evaluateText(p, ans), true

	default:
		// Single-choice family
		ans, ok := a.(SingleChoice)
		if !ok {
			return Evaluation{}, false
		}
		if ans.OptionID == "" {
			return Evaluation{}, false
		}
		option := p.OptionByID(ans.OptionID)
		if option == nil {
			return Evaluation{}, false
		}
		return Evaluation{
			Correct:  option.Correct,
			Feedback: option,
			Encoding: ans.OptionID,
		}, true
	}
}

// evaluateSelectAll requires an exact match of the correct subset: every
// correct option selected and nothing else
func evaluateSelectAll(p *models.Prompt, ans MultiSelect) Evaluation {
	selected := make(map[string]bool, len(ans.OptionIDs))
	for _, id := range ans.OptionIDs {
		selected[id] = true
	}

	allCorrectSelected := true
	for i := range p.Options {
		if p.Options[i].Correct && !selected[p.Options[i].OptionID] {
			allCorrectSelected = false
			break
		}
	}

	noIncorrectSelected := true
	for _, id := range ans.OptionIDs {
		option := p.OptionByID(id)
		if option == nil || !option.Correct {
			noIncorrectSelected = false
			break
		}
	}

	var feedback *models.Option
	if len(ans.OptionIDs) > 0 {
		feedback = p.OptionByID(ans.OptionIDs[0])
	}

	return Evaluation{
		Correct:  allCorrectSelected && noIncorrectSelected,
		Feedback: feedback,
		Encoding: strings.Join(ans.OptionIDs, ","),
	}
}

// evaluateSequence requires a full-length submission where the option at
// every position carries correctOrder == position+1
func evaluateSequence(p *models.Prompt, ans Sequence) Evaluation {
	correct := len(ans.OptionIDs) == len(p.Options)
	for i, id := range ans.OptionIDs {
		if !correct {
			break
		}
		option := p.OptionByID(id)
		if option == nil || option.Metadata == nil || option.Metadata.CorrectOrder == nil {
			correct = false
			break
		}
		if *option.Metadata.CorrectOrder != i+1 {
			correct = false
		}
	}

	var feedback *models.Option
	if len(ans.OptionIDs) > 0 {
		feedback = p.OptionByID(ans.OptionIDs[0])
	}

	return Evaluation{
		Correct:  correct,
		Feedback: feedback,
		Encoding: strings.Join(ans.OptionIDs, ","),
	}
}

// evaluateMatches requires every left option's matchTarget to equal the
// right id it was paired with
func evaluateMatches(p *models.Prompt, ans Matches) Evaluation {
	correct := true
	for _, pair := range ans.Pairs {
		left := p.OptionByID(pair.Left)
		if left == nil || left.Metadata == nil || left.Metadata.MatchTarget == nil {
			correct = false
			break
		}
		if *left.Metadata.MatchTarget != pair.Right {
			correct = false
			break
		}
	}

	var feedback *models.Option
	encoded := make([]string, len(ans.Pairs))
	for i, pair := range ans.Pairs {
		encoded[i] = pair.Left + ":" + pair.Right
	}
	if len(ans.Pairs) > 0 {
		feedback = p.OptionByID(ans.Pairs[0].Left)
	}

	return Evaluation{
		Correct:  correct,
		Feedback: feedback,
		Encoding: strings.Join(encoded, ","),
	}
}

// evaluateText always grades correct; free-text prompts capture reflection
// rather than test the user
func evaluateText(p *models.Prompt, ans Text) Evaluation {
	optionID := "text-input"
	feedbackText := textFeedback
	prefix := "text:"
	if p.Type == models.TypeReflection {
		optionID = "reflection"
		feedbackText = reflectionFeedback
		prefix = "reflection:"
	}

	return Evaluation{
		Correct: true,
		Feedback: &models.Option{
			OptionID:   optionID,
			OptionText: ans.Input,
			Correct:    true,
			Points:     p.Points,
			Feedback:   feedbackText,
		},
		Encoding: prefix + ans.Input,
	}
}
