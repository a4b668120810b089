package models

import "time"

// UserProgress is the durable cross-session progress counter for one user.
// LastCompletedDay starts at 0; the next available activity is always
// LastCompletedDay + 1.
type UserProgress struct {
	UserID           string
	LastCompletedDay int
	LastCompletedAt  *time.Time
	TotalScore       int
}

// DailyScore is one row of the per-day score ledger
type DailyScore struct {
	UserID      string
	DayNumber   int
	Score       int
	CompletedAt time.Time
}

// Child holds the profile fields the engine needs to pick age-appropriate
// content. Everything else about children lives outside this service.
type Child struct {
	ID        string
	UserID    string
	Birthday  *time.Time
	CreatedAt time.Time
}

// PracticeResult is the analytics row for one run through an activity
type PracticeResult struct {
	ID            string
	UserID        string
	ActivityID    string
	DayNumber     int
	StartAt       time.Time
	EndAt         *time.Time
	Completed     bool
	PromptResults []PromptResult
	TotalScore    int
}
