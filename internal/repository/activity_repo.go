package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"dailycoach/internal/database"
	"dailycoach/internal/models"
)

// ActivityRepository reads and writes the activity content catalog.
// An activity spans four tables: the activity row, its prompts, the
// prompts' options, and the takeaway.
type ActivityRepository struct {
	db *database.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// GetByDayAndBand loads the activity for one day and age band, fully
// assembled. Returns (nil, nil) when the catalog has no such activity.
func (r *ActivityRepository) GetByDayAndBand(dayNumber int, ageBand string) (*models.Activity, error) {
	query := `
		SELECT id, day_number, age_band, module_name, module_display_name,
		       title, description, skill_focus, category, activity_type,
		       is_reflection, scenario, research_concept, research_key_insight,
		       research_citation, research_additional_context, best_approach,
		       follow_up_questions
		FROM activities
		WHERE day_number = ? AND age_band = ?
	`

	activity := &models.Activity{}
	var description, category, researchConcept, researchKeyInsight sql.NullString
	var researchCitation, researchContext, bestApproach, followUps sql.NullString

	err := r.db.QueryRow(query, dayNumber, ageBand).Scan(
		&activity.ID,
		&activity.DayNumber,
		&activity.AgeBand,
		&activity.ModuleName,
		&activity.ModuleDisplayName,
		&activity.Title,
		&description,
		&activity.SkillFocus,
		&category,
		&activity.ActivityType,
		&activity.IsReflection,
		&activity.Scenario,
		&researchConcept,
		&researchKeyInsight,
		&researchCitation,
		&researchContext,
		&bestApproach,
		&followUps,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	activity.Description = nullableString(description)
	activity.Category = nullableString(category)
	activity.ResearchConcept = nullableString(researchConcept)
	activity.ResearchKeyInsight = nullableString(researchKeyInsight)
	activity.ResearchCitation = nullableString(researchCitation)
	activity.ResearchAdditionalContext = nullableString(researchContext)
	activity.BestApproach = nullableString(bestApproach)
	if followUps.Valid && followUps.String != "" {
		if err := json.Unmarshal([]byte(followUps.String), &activity.FollowUpQuestions); err != nil {
			return nil, fmt.Errorf("bad follow_up_questions for activity %s: %w", activity.ID, err)
		}
	}

	if activity.Prompts, err = r.loadPrompts(activity.ID); err != nil {
		return nil, err
	}
	if err := r.loadTakeaway(activity); err != nil {
		return nil, err
	}

	return activity, nil
}

// loadPrompts loads an activity's prompts with their options, in
// presentation order
func (r *ActivityRepository) loadPrompts(activityID string) ([]models.Prompt, error) {
	query := `
		SELECT prompt_id, type, prompt_text, order_index, points, branch_logic, config
		FROM prompts
		WHERE activity_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.Query(query, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []models.Prompt
	for rows.Next() {
		var p models.Prompt
		var branchLogic, promptConfig sql.NullString

		err := rows.Scan(&p.PromptID, &p.Type, &p.PromptText, &p.Order, &p.Points, &branchLogic, &promptConfig)
		if err != nil {
			return nil, err
		}
		if !p.Type.Valid() {
			return nil, fmt.Errorf("unknown prompt type %q in activity %s", p.Type, activityID)
		}
		if branchLogic.Valid && branchLogic.String != "" {
			p.BranchLogic = &models.BranchLogic{}
			if err := json.Unmarshal([]byte(branchLogic.String), p.BranchLogic); err != nil {
				return nil, fmt.Errorf("bad branch_logic for prompt %s: %w", p.PromptID, err)
			}
		}
		if promptConfig.Valid && promptConfig.String != "" {
			p.Config = &models.PromptConfig{}
			if err := json.Unmarshal([]byte(promptConfig.String), p.Config); err != nil {
				return nil, fmt.Errorf("bad config for prompt %s: %w", p.PromptID, err)
			}
		}

		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range prompts {
		if prompts[i].Options, err = r.loadOptions(activityID, prompts[i].PromptID); err != nil {
			return nil, err
		}
	}

	return prompts, nil
}

func (r *ActivityRepository) loadOptions(activityID, promptID string) ([]models.Option, error) {
	query := `
		SELECT option_id, option_text, correct, points, feedback, metadata, science_note
		FROM prompt_options
		WHERE activity_id = ? AND prompt_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.Query(query, activityID, promptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.Option
	for rows.Next() {
		var o models.Option
		var metadata, scienceNote sql.NullString

		err := rows.Scan(&o.OptionID, &o.OptionText, &o.Correct, &o.Points, &o.Feedback, &metadata, &scienceNote)
		if err != nil {
			return nil, err
		}
		if metadata.Valid && metadata.String != "" {
			o.Metadata = &models.OptionMetadata{}
			if err := json.Unmarshal([]byte(metadata.String), o.Metadata); err != nil {
				return nil, fmt.Errorf("bad metadata for option %s: %w", o.OptionID, err)
			}
		}
		if scienceNote.Valid && scienceNote.String != "" {
			o.ScienceNote = &models.ScienceNote{}
			if err := json.Unmarshal([]byte(scienceNote.String), o.ScienceNote); err != nil {
				return nil, fmt.Errorf("bad science_note for option %s: %w", o.OptionID, err)
			}
		}

		options = append(options, o)
	}

	return options, rows.Err()
}

func (r *ActivityRepository) loadTakeaway(activity *models.Activity) error {
	query := `
		SELECT tool_name, tool_type, when_to_use, how_to, why_it_works,
		       try_it_when, example_situation, example_action, example_outcome
		FROM takeaways
		WHERE activity_id = ?
	`

	t := &activity.ActionableTakeaway
	var toolType, tryItWhen sql.NullString
	var howTo string

	err := r.db.QueryRow(query, activity.ID).Scan(
		&t.ToolName,
		&toolType,
		&t.WhenToUse,
		&howTo,
		&t.WhyItWorks,
		&tryItWhen,
		&t.Example.Situation,
		&t.Example.Action,
		&t.Example.Outcome,
	)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	t.ToolType = nullableString(toolType)
	t.TryItWhen = nullableString(tryItWhen)
	if err := json.Unmarshal([]byte(howTo), &t.HowTo); err != nil {
		return fmt.Errorf("bad how_to for activity %s: %w", activity.ID, err)
	}

	return nil
}

// Count returns the number of activities in the catalog
func (r *ActivityRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// Insert writes a complete activity in one transaction. Used by the
// content seeder; production content arrives through the pipeline.
func (r *ActivityRepository) Insert(activity *models.Activity) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	followUps, err := marshalOrNil(activity.FollowUpQuestions)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO activities (id, day_number, age_band, module_name, module_display_name,
			title, description, skill_focus, category, activity_type, is_reflection,
			scenario, best_approach, follow_up_questions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		activity.ID, activity.DayNumber, activity.AgeBand, activity.ModuleName,
		activity.ModuleDisplayName, activity.Title, activity.Description,
		activity.SkillFocus, activity.Category, activity.ActivityType,
		activity.IsReflection, activity.Scenario, activity.BestApproach, followUps,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity %s: %w", activity.ID, err)
	}

	for _, p := range activity.Prompts {
		branchLogic, err := marshalOrNil(p.BranchLogic)
		if err != nil {
			return err
		}
		promptConfig, err := marshalOrNil(p.Config)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO prompts (activity_id, prompt_id, type, prompt_text, order_index, points, branch_logic, config)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, activity.ID, p.PromptID, string(p.Type), p.PromptText, p.Order, p.Points, branchLogic, promptConfig)
		if err != nil {
			return fmt.Errorf("failed to insert prompt %s: %w", p.PromptID, err)
		}

		for i, o := range p.Options {
			metadata, err := marshalOrNil(o.Metadata)
			if err != nil {
				return err
			}
			scienceNote, err := marshalOrNil(o.ScienceNote)
			if err != nil {
				return err
			}

			_, err = tx.Exec(`
				INSERT INTO prompt_options (activity_id, prompt_id, option_id, option_text, correct, points, feedback, order_index, metadata, science_note)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, activity.ID, p.PromptID, o.OptionID, o.OptionText, o.Correct, o.Points, o.Feedback, i, metadata, scienceNote)
			if err != nil {
				return fmt.Errorf("failed to insert option %s: %w", o.OptionID, err)
			}
		}
	}

	t := activity.ActionableTakeaway
	howTo, err := json.Marshal(t.HowTo)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO takeaways (activity_id, tool_name, tool_type, when_to_use, how_to, why_it_works, try_it_when, example_situation, example_action, example_outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, activity.ID, t.ToolName, t.ToolType, t.WhenToUse, string(howTo), t.WhyItWorks, t.TryItWhen,
		t.Example.Situation, t.Example.Action, t.Example.Outcome)
	if err != nil {
		return fmt.Errorf("failed to insert takeaway for %s: %w", activity.ID, err)
	}

	return tx.Commit()
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	value := s.String
	return &value
}

// marshalOrNil marshals v to a JSON string, or nil for nil pointers and
// empty slices so the column stays NULL
func marshalOrNil(v interface{}) (interface{}, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case *models.BranchLogic:
		if value == nil {
			return nil, nil
		}
	case *models.PromptConfig:
		if value == nil {
			return nil, nil
		}
	case *models.OptionMetadata:
		if value == nil {
			return nil, nil
		}
	case *models.ScienceNote:
		if value == nil {
			return nil, nil
		}
	case []string:
		if len(value) == 0 {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
