package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dailycoach/internal/database"
	"dailycoach/internal/models"
)

// ResultRepository is the analytics sink for practice runs. Each session
// gets one practice_results row at start; per-prompt results are upserted
// into its JSON array as the user answers, and the row is marked completed
// when the activity finishes.
type ResultRepository struct {
	db *database.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// CreateSession opens an analytics row for a practice run and returns
// its id
func (r *ResultRepository) CreateSession(userID, activityID string, dayNumber int, startAt time.Time) (string, error) {
	id := uuid.New().String()

	_, err := r.db.Exec(`
		INSERT INTO practice_results (id, user_id, activity_id, day_number, start_at, completed, prompt_results, total_score)
		VALUES (?, ?, ?, ?, ?, ?, '[]', 0)
	`, id, userID, activityID, dayNumber, startAt, false)
	if err != nil {
		return "", fmt.Errorf("failed to create practice result: %w", err)
	}

	return id, nil
}

// SavePromptResult upserts one prompt's result into the session's JSON
// array, matched by promptId. The read and write run in a transaction so
// concurrent submissions cannot drop each other's entries.
func (r *ResultRepository) SavePromptResult(resultID string, result models.PromptResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRow(`SELECT prompt_results FROM practice_results WHERE id = ?`, resultID).Scan(&raw)
	if err == sql.ErrNoRows {
		return fmt.Errorf("practice result %s not found", resultID)
	}
	if err != nil {
		return err
	}

	var results []models.PromptResult
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &results); err != nil {
			return fmt.Errorf("bad prompt_results for %s: %w", resultID, err)
		}
	}

	replaced := false
	for i := range results {
		if results[i].PromptID == result.PromptID {
			results[i] = result
			replaced = true
			break
		}
	}
	if !replaced {
		results = append(results, result)
	}

	data, err := json.Marshal(results)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`UPDATE practice_results SET prompt_results = ? WHERE id = ?`, string(data), resultID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// MarkCompleted closes the session's analytics row
func (r *ResultRepository) MarkCompleted(resultID string, totalScore int, endAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE practice_results
		SET completed = ?, end_at = ?, total_score = ?
		WHERE id = ?
	`, true, endAt, totalScore, resultID)
	if err != nil {
		return fmt.Errorf("failed to mark practice result %s completed: %w", resultID, err)
	}
	return nil
}

// GetByID loads one analytics row, or (nil, nil) when it does not exist
func (r *ResultRepository) GetByID(resultID string) (*models.PracticeResult, error) {
	result := &models.PracticeResult{}
	var endAt sql.NullTime
	var raw string

	err := r.db.QueryRow(`
		SELECT id, user_id, activity_id, day_number, start_at, end_at, completed, prompt_results, total_score
		FROM practice_results
		WHERE id = ?
	`, resultID).Scan(
		&result.ID,
		&result.UserID,
		&result.ActivityID,
		&result.DayNumber,
		&result.StartAt,
		&endAt,
		&result.Completed,
		&raw,
		&result.TotalScore,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if endAt.Valid {
		t := endAt.Time
		result.EndAt = &t
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &result.PromptResults); err != nil {
			return nil, fmt.Errorf("bad prompt_results for %s: %w", resultID, err)
		}
	}

	return result, nil
}
