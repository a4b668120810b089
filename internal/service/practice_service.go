package service

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"dailycoach/internal/engine"
	"dailycoach/internal/models"
)

// Catalog loads activity content
type Catalog interface {
	GetByDayAndBand(dayNumber int, ageBand string) (*models.Activity, error)
}

// ProgressStore persists cross-session user progress
type ProgressStore interface {
	Progress(userID string) (*models.UserProgress, error)
	LatestChildBirthday(userID string) (*time.Time, error)
	CompleteDay(userID string, dayNumber, score int, completedAt time.Time) error
	ResetProgress(userID string, all bool) error
}

// ResultStore is the analytics sink for practice runs
type ResultStore interface {
	CreateSession(userID, activityID string, dayNumber int, startAt time.Time) (string, error)
	SavePromptResult(resultID string, result models.PromptResult) error
	MarkCompleted(resultID string, totalScore int, endAt time.Time) error
}

// Gate statuses for the daily practice entry point
const (
	StatusReady            = "ready"
	StatusAlreadyCompleted = "already-completed"
	StatusNoneAvailable    = "none-available"
)

// GateResult is the outcome of the one-per-day progress gate
type GateResult struct {
	Status           string
	DayNumber        int
	Activity         *models.Activity
	LastCompletedDay int
	CompletedAt      *time.Time
}

var (
	// ErrSessionNotFound means the session id is unknown or already finished
	ErrSessionNotFound = errors.New("practice session not found")
	// ErrNotReady means the gate did not allow starting a session
	ErrNotReady = errors.New("no practice activity available to start")
	// ErrInvalidTransition means the session refused the requested move
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrCompletionFailed means recording completion failed; the session
	// stays open and the call can be retried
	ErrCompletionFailed = errors.New("failed to record completion")
)

// sessionEntry binds a live engine session to its owner and its
// analytics row
type sessionEntry struct {
	mu       sync.Mutex
	session  *engine.Session
	userID   string
	resultID string
}

// PracticeService owns the daily practice flow: the progress gate, the
// in-memory registry of live sessions, and the calls out to the progress
// and analytics stores. Sessions are ephemeral; a restart abandons them
// and the user simply starts the day again.
type PracticeService struct {
	catalog  Catalog
	progress ProgressStore
	results  ResultStore

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewPracticeService creates a new practice service
func NewPracticeService(catalog Catalog, progress ProgressStore, results ResultStore) *PracticeService {
	return &PracticeService{
		catalog:  catalog,
		progress: progress,
		results:  results,
		sessions: make(map[string]*sessionEntry),
	}
}

// sameUTCDate reports whether two instants fall on the same UTC calendar day
func sameUTCDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// ageBandFor resolves the user's content age band from their most recently
// added child's birthday, falling back to the default band
func (s *PracticeService) ageBandFor(userID string, now time.Time) string {
	birthday, err := s.progress.LatestChildBirthday(userID)
	if err != nil {
		log.Printf("Failed to load child birthday for user %s: %v", userID, err)
		return models.DefaultAgeBand
	}
	if birthday == nil {
		return models.DefaultAgeBand
	}
	return models.AgeBandForBirthday(*birthday, now)
}

// TodayActivity runs the progress gate for the user. At most one activity
// per UTC calendar day: if the user already completed one today the gate
// reports that; otherwise it serves the day after the last completed day,
// or reports that the catalog has run out.
func (s *PracticeService) TodayActivity(userID string, now time.Time) (*GateResult, error) {
	progress, err := s.progress.Progress(userID)
	if err != nil {
		return nil, err
	}

	if progress.LastCompletedAt != nil && sameUTCDate(*progress.LastCompletedAt, now) {
		return &GateResult{
			Status:           StatusAlreadyCompleted,
			DayNumber:        progress.LastCompletedDay,
			LastCompletedDay: progress.LastCompletedDay,
			CompletedAt:      progress.LastCompletedAt,
		}, nil
	}

	nextDay := progress.LastCompletedDay + 1
	activity, err := s.catalog.GetByDayAndBand(nextDay, s.ageBandFor(userID, now))
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return &GateResult{
			Status:           StatusNoneAvailable,
			DayNumber:        nextDay,
			LastCompletedDay: progress.LastCompletedDay,
			CompletedAt:      progress.LastCompletedAt,
		}, nil
	}

	return &GateResult{
		Status:           StatusReady,
		DayNumber:        nextDay,
		Activity:         activity,
		LastCompletedDay: progress.LastCompletedDay,
		CompletedAt:      progress.LastCompletedAt,
	}, nil
}

// DayActivity loads a specific day's activity for preview, bypassing the
// gate. Returns (nil, nil) when the day has no activity for the user's band.
func (s *PracticeService) DayActivity(userID string, dayNumber int, now time.Time) (*models.Activity, error) {
	return s.catalog.GetByDayAndBand(dayNumber, s.ageBandFor(userID, now))
}

// StartedSession describes a freshly started practice session
type StartedSession struct {
	SessionID string
	DayNumber int
	Activity  *models.Activity
}

// StartSession runs the gate and, if it allows, creates a live session.
// The analytics row is opened best-effort: a failure is logged and the
// session runs without result tracking.
func (s *PracticeService) StartSession(userID string, now time.Time) (*StartedSession, error) {
	gate, err := s.TodayActivity(userID, now)
	if err != nil {
		return nil, err
	}
	if gate.Status != StatusReady {
		return nil, ErrNotReady
	}

	session, err := engine.NewSession(gate.Activity, gate.DayNumber)
	if err != nil {
		return nil, err
	}

	entry := &sessionEntry{session: session, userID: userID}
	resultID, err := s.results.CreateSession(userID, gate.Activity.ID, gate.DayNumber, now)
	if err != nil {
		log.Printf("Failed to open practice result for user %s: %v", userID, err)
	} else {
		entry.resultID = resultID
	}

	sessionID := uuid.New().String()
	s.mu.Lock()
	s.sessions[sessionID] = entry
	s.mu.Unlock()

	return &StartedSession{SessionID: sessionID, DayNumber: gate.DayNumber, Activity: gate.Activity}, nil
}

// entryFor resolves a session id for a user, enforcing ownership
func (s *PracticeService) entryFor(sessionID, userID string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || entry.userID != userID {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}

// SubmitResult is the transport-facing view of one graded submission
type SubmitResult struct {
	Correct       bool
	AttemptNumber int
	PointsAwarded int
	TotalScore    int
	Feedback      *models.Option
	LastPrompt    bool
	ReadyToFinish bool
}

// Submit loads the given answer into the session and grades it. The
// prompt's analytics record is saved in the background; a save failure is
// logged and never surfaces to the user.
func (s *PracticeService) Submit(sessionID, userID string, answer engine.Answer) (*SubmitResult, error) {
	entry, err := s.entryFor(sessionID, userID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.session.SetAnswer(answer) {
		return nil, ErrInvalidTransition
	}
	outcome, ok := entry.session.Submit()
	if !ok {
		return nil, ErrInvalidTransition
	}

	if entry.resultID != "" {
		resultID := entry.resultID
		go func(result models.PromptResult) {
			if err := s.results.SavePromptResult(resultID, result); err != nil {
				log.Printf("Failed to save prompt result for session %s: %v", sessionID, err)
			}
		}(outcome.Result)
	}

	return &SubmitResult{
		Correct:       outcome.Correct,
		AttemptNumber: outcome.AttemptNumber,
		PointsAwarded: outcome.PointsAwarded,
		TotalScore:    entry.session.TotalScore(),
		Feedback:      outcome.Feedback,
		LastPrompt:    outcome.LastPrompt,
		ReadyToFinish: entry.session.ReadyToComplete(),
	}, nil
}

// Retry returns the session to the same prompt after an incorrect answer
func (s *PracticeService) Retry(sessionID, userID string) error {
	entry, err := s.entryFor(sessionID, userID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.session.TryAgain() {
		return ErrInvalidTransition
	}
	return nil
}

// NextPrompt advances the session past a correctly answered prompt and
// returns the new current prompt
func (s *PracticeService) NextPrompt(sessionID, userID string) (*models.Prompt, error) {
	entry, err := s.entryFor(sessionID, userID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.session.ContinueToNext() {
		return nil, ErrInvalidTransition
	}
	return entry.session.CurrentPrompt(), nil
}

// CompletionResult reports a confirmed activity completion
type CompletionResult struct {
	DayNumber  int
	TotalScore int
	Takeaway   models.ActionableTakeaway
}

// Complete records the finished activity with the progress store and
// closes the session. If the store call fails the session stays open and
// ErrCompletionFailed is returned so the client can retry.
func (s *PracticeService) Complete(sessionID, userID string, now time.Time) (*CompletionResult, error) {
	entry, err := s.entryFor(sessionID, userID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	dayNumber, totalScore, ok := entry.session.BeginCompletion()
	if !ok {
		return nil, ErrInvalidTransition
	}

	if err := s.progress.CompleteDay(userID, dayNumber, totalScore, now.UTC()); err != nil {
		entry.session.FinishCompletion(false)
		log.Printf("Failed to record completion for user %s day %d: %v", userID, dayNumber, err)
		return nil, ErrCompletionFailed
	}
	entry.session.FinishCompletion(true)

	if entry.resultID != "" {
		if err := s.results.MarkCompleted(entry.resultID, totalScore, now.UTC()); err != nil {
			log.Printf("Failed to mark practice result %s completed: %v", entry.resultID, err)
		}
	}

	takeaway := entry.session.Activity().ActionableTakeaway

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	return &CompletionResult{DayNumber: dayNumber, TotalScore: totalScore, Takeaway: takeaway}, nil
}

// SessionState is a read-only snapshot of a live session
type SessionState struct {
	Phase         string
	DayNumber     int
	CurrentIndex  int
	CurrentPrompt *models.Prompt
	Progress      float64
	TotalScore    int
	LastPrompt    bool
}

// Session returns a snapshot of a live session's state
func (s *PracticeService) Session(sessionID, userID string) (*SessionState, error) {
	entry, err := s.entryFor(sessionID, userID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	sess := entry.session
	return &SessionState{
		Phase:         sess.Phase().String(),
		DayNumber:     sess.DayNumber(),
		CurrentIndex:  sess.CurrentIndex(),
		CurrentPrompt: sess.CurrentPrompt(),
		Progress:      sess.Progress(),
		TotalScore:    sess.TotalScore(),
		LastPrompt:    sess.IsLastPrompt(),
	}, nil
}

// Reset clears the user's progress and abandons any live sessions they own
func (s *PracticeService) Reset(userID string, all bool) error {
	if err := s.progress.ResetProgress(userID, all); err != nil {
		return err
	}

	s.mu.Lock()
	for id, entry := range s.sessions {
		if entry.userID == userID {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	return nil
}
