package repository

import (
	"database/sql"
	"fmt"
	"time"

	"dailycoach/internal/database"
	"dailycoach/internal/models"
)

// ProgressRepository tracks per-user practice progress: the forward-only
// day counter, the lifetime score, and the per-day score ledger.
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Progress returns the user's progress row. Users with no row yet get a
// zero-value record, so day 1 is the first available activity.
func (r *ProgressRepository) Progress(userID string) (*models.UserProgress, error) {
	progress := &models.UserProgress{UserID: userID}
	var lastCompletedAt sql.NullTime

	err := r.db.QueryRow(`
		SELECT last_completed_day, last_completed_at, total_score
		FROM user_progress
		WHERE user_id = ?
	`, userID).Scan(&progress.LastCompletedDay, &lastCompletedAt, &progress.TotalScore)
	if err == sql.ErrNoRows {
		return progress, nil
	}
	if err != nil {
		return nil, err
	}

	if lastCompletedAt.Valid {
		t := lastCompletedAt.Time
		progress.LastCompletedAt = &t
	}
	return progress, nil
}

// LatestChildBirthday returns the birthday of the user's most recently
// added child, or nil when no child has a birthday on file.
func (r *ProgressRepository) LatestChildBirthday(userID string) (*time.Time, error) {
	var birthday sql.NullTime

	err := r.db.QueryRow(`
		SELECT birthday
		FROM children
		WHERE user_id = ? AND birthday IS NOT NULL
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&birthday)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !birthday.Valid {
		return nil, nil
	}
	t := birthday.Time
	return &t, nil
}

// CompleteDay records a finished day in one transaction: advances the day
// counter (never backwards), adds the day's score to the lifetime total,
// and upserts the per-day ledger row. completedAt should be UTC.
func (r *ProgressRepository) CompleteDay(userID string, dayNumber, score int, completedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var lastCompletedDay, totalScore int
	err = tx.QueryRow(`
		SELECT last_completed_day, total_score
		FROM user_progress
		WHERE user_id = ?
	`, userID).Scan(&lastCompletedDay, &totalScore)
	if err == sql.ErrNoRows {
		_, err = tx.Exec(`
			INSERT INTO user_progress (user_id, last_completed_day, last_completed_at, total_score)
			VALUES (?, ?, ?, ?)
		`, userID, dayNumber, completedAt, score)
		if err != nil {
			return fmt.Errorf("failed to create progress for user %s: %w", userID, err)
		}
	} else if err != nil {
		return err
	} else {
		newDay := lastCompletedDay
		if dayNumber > newDay {
			newDay = dayNumber
		}
		_, err = tx.Exec(`
			UPDATE user_progress
			SET last_completed_day = ?, last_completed_at = ?, total_score = ?
			WHERE user_id = ?
		`, newDay, completedAt, totalScore+score, userID)
		if err != nil {
			return fmt.Errorf("failed to update progress for user %s: %w", userID, err)
		}
	}

	// Replaying a day overwrites that day's ledger entry
	_, err = tx.Exec(`DELETE FROM daily_scores WHERE user_id = ? AND day_number = ?`, userID, dayNumber)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO daily_scores (user_id, day_number, score, completed_at)
		VALUES (?, ?, ?, ?)
	`, userID, dayNumber, score, completedAt)
	if err != nil {
		return fmt.Errorf("failed to record daily score for user %s: %w", userID, err)
	}

	return tx.Commit()
}

// DailyScores returns the user's per-day score ledger, newest day first
func (r *ProgressRepository) DailyScores(userID string) ([]models.DailyScore, error) {
	rows, err := r.db.Query(`
		SELECT day_number, score, completed_at
		FROM daily_scores
		WHERE user_id = ?
		ORDER BY day_number DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.DailyScore
	for rows.Next() {
		score := models.DailyScore{UserID: userID}
		if err := rows.Scan(&score.DayNumber, &score.Score, &score.CompletedAt); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}

	return scores, rows.Err()
}

// ResetProgress clears the user's progress. With all=true the per-day
// ledger and practice results go too; otherwise only the counters reset.
func (r *ProgressRepository) ResetProgress(userID string, all bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM user_progress WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}

	if all {
		if _, err = tx.Exec(`DELETE FROM daily_scores WHERE user_id = ?`, userID); err != nil {
			return err
		}
		if _, err = tx.Exec(`DELETE FROM practice_results WHERE user_id = ?`, userID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
