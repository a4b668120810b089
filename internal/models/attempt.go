package models

// PromptAttempt accumulates a user's submissions against one prompt within
// a session. AttemptedOptions holds one encoded submission per attempt
// (format depends on the prompt type); it is append-only. PointsEarned and
// Completed are set once, on the first correct submission.
type PromptAttempt struct {
	PromptID         string
	AttemptedOptions []string
	PointsEarned     int
	Completed        bool
}

// PromptResult is the analytics record for one prompt, sent to the
// result store after every submission
type PromptResult struct {
	PromptID     string       `json:"promptId"`
	Tries        int          `json:"tries"`
	Logs         []AttemptLog `json:"logs"`
	PointsEarned int          `json:"pointsEarned"`
	Completed    bool         `json:"completed"`
}

// AttemptLog is one entry in a PromptResult's submission history
type AttemptLog struct {
	OptionID  string `json:"optionId"`
	Correct   bool   `json:"correct"`
	Timestamp string `json:"timestamp"`
}
