package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dailycoach/internal/engine"
	"dailycoach/internal/models"
	"dailycoach/internal/service"
)

// PracticeHandler serves the daily practice API
type PracticeHandler struct {
	practiceService *service.PracticeService
	middleware      *Middleware
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService, middleware *Middleware) *PracticeHandler {
	return &PracticeHandler{
		practiceService: practiceService,
		middleware:      middleware,
	}
}

// RegisterRoutes attaches the practice routes to the mux
func (h *PracticeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/practice/today", h.middleware.RequireAuth(h.Today))
	mux.HandleFunc("GET /api/practice/day/{day}", h.middleware.RequireAuth(h.Day))
	mux.HandleFunc("POST /api/practice/start", h.middleware.RequireAuth(h.Start))
	mux.HandleFunc("GET /api/practice/session/{id}", h.middleware.RequireAuth(h.Session))
	mux.HandleFunc("POST /api/practice/session/{id}/answer", h.middleware.RequireAuth(h.Answer))
	mux.HandleFunc("POST /api/practice/session/{id}/retry", h.middleware.RequireAuth(h.Retry))
	mux.HandleFunc("POST /api/practice/session/{id}/next", h.middleware.RequireAuth(h.Next))
	mux.HandleFunc("POST /api/practice/session/{id}/complete", h.middleware.RequireAuth(h.Complete))
	mux.HandleFunc("POST /api/practice/reset", h.middleware.RequireAuth(h.Reset))
}

type gateResponse struct {
	Status           string           `json:"status"`
	DayNumber        int              `json:"dayNumber"`
	Activity         *models.Activity `json:"activity,omitempty"`
	LastCompletedDay int              `json:"lastCompletedDay"`
	CompletedAt      *time.Time       `json:"completedAt,omitempty"`
}

// Today runs the daily gate and returns today's activity if one is due
func (h *PracticeHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	gate, err := h.practiceService.TodayActivity(userID, time.Now().UTC())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load today's practice", "Gate check failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, gateResponse{
		Status:           gate.Status,
		DayNumber:        gate.DayNumber,
		Activity:         gate.Activity,
		LastCompletedDay: gate.LastCompletedDay,
		CompletedAt:      gate.CompletedAt,
	})
}

// Day returns one day's activity without consulting the gate
func (h *PracticeHandler) Day(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	dayNumber, err := strconv.Atoi(r.PathValue("day"))
	if err != nil || dayNumber < 1 {
		respondWithError(w, http.StatusBadRequest, "Invalid day number", "", nil)
		return
	}

	activity, err := h.practiceService.DayActivity(userID, dayNumber, time.Now().UTC())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load activity", "Day lookup failed", err)
		return
	}
	if activity == nil {
		respondWithError(w, http.StatusNotFound, "No activity for that day", "", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, activity)
}

type startResponse struct {
	SessionID string           `json:"sessionId"`
	DayNumber int              `json:"dayNumber"`
	Activity  *models.Activity `json:"activity"`
}

// Start begins a practice session for today's activity
func (h *PracticeHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	started, err := h.practiceService.StartSession(userID, time.Now().UTC())
	if errors.Is(err, service.ErrNotReady) {
		respondWithError(w, http.StatusConflict, "No practice available to start", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to start practice", "Session start failed", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, startResponse{
		SessionID: started.SessionID,
		DayNumber: started.DayNumber,
		Activity:  started.Activity,
	})
}

type sessionResponse struct {
	Phase         string         `json:"phase"`
	DayNumber     int            `json:"dayNumber"`
	CurrentIndex  int            `json:"currentIndex"`
	CurrentPrompt *models.Prompt `json:"currentPrompt"`
	Progress      float64        `json:"progress"`
	TotalScore    int            `json:"totalScore"`
	LastPrompt    bool           `json:"lastPrompt"`
}

// Session returns a snapshot of a live session
func (h *PracticeHandler) Session(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	state, err := h.practiceService.Session(r.PathValue("id"), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sessionResponse{
		Phase:         state.Phase,
		DayNumber:     state.DayNumber,
		CurrentIndex:  state.CurrentIndex,
		CurrentPrompt: state.CurrentPrompt,
		Progress:      state.Progress,
		TotalScore:    state.TotalScore,
		LastPrompt:    state.LastPrompt,
	})
}

type matchPairRequest struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type answerRequest struct {
	OptionID  string             `json:"optionId"`
	OptionIDs []string           `json:"optionIds"`
	Text      string             `json:"text"`
	Pairs     []matchPairRequest `json:"pairs"`
}

type submitResponse struct {
	Correct       bool           `json:"correct"`
	AttemptNumber int            `json:"attemptNumber"`
	PointsAwarded int            `json:"pointsAwarded"`
	TotalScore    int            `json:"totalScore"`
	Feedback      *models.Option `json:"feedback,omitempty"`
	LastPrompt    bool           `json:"lastPrompt"`
	ReadyToFinish bool           `json:"readyToFinish"`
}

// Answer submits an answer for the session's current prompt
func (h *PracticeHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	sessionID := r.PathValue("id")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return
	}

	state, err := h.practiceService.Session(sessionID, userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	result, err := h.practiceService.Submit(sessionID, userID, buildAnswer(state.CurrentPrompt.Type, req))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, submitResponse{
		Correct:       result.Correct,
		AttemptNumber: result.AttemptNumber,
		PointsAwarded: result.PointsAwarded,
		TotalScore:    result.TotalScore,
		Feedback:      result.Feedback,
		LastPrompt:    result.LastPrompt,
		ReadyToFinish: result.ReadyToFinish,
	})
}

// buildAnswer shapes the request body into the answer variant the current
// prompt type expects
func buildAnswer(promptType models.PromptType, req answerRequest) engine.Answer {
	switch promptType {
	case models.TypeSelectAll:
		return engine.MultiSelect{OptionIDs: req.OptionIDs}
	case models.TypeSequencing:
		return engine.Sequence{OptionIDs: req.OptionIDs}
	case models.TypeMatching:
		pairs := make([]engine.MatchPair, len(req.Pairs))
		for i, p := range req.Pairs {
			pairs[i] = engine.MatchPair{Left: p.Left, Right: p.Right}
		}
		return engine.Matches{Pairs: pairs}
	case models.TypeTextInput, models.TypeDialogueCompletion, models.TypeReflection:
		return engine.Text{Input: req.Text}
	default:
		return engine.SingleChoice{OptionID: req.OptionID}
	}
}

// Retry returns the session to the current prompt after a wrong answer
func (h *PracticeHandler) Retry(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	if err := h.practiceService.Retry(r.PathValue("id"), userID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Next advances the session to the next prompt
func (h *PracticeHandler) Next(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	prompt, err := h.practiceService.NextPrompt(r.PathValue("id"), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"prompt": prompt})
}

type completeResponse struct {
	DayNumber  int                       `json:"dayNumber"`
	TotalScore int                       `json:"totalScore"`
	Takeaway   models.ActionableTakeaway `json:"takeaway"`
}

// Complete records the finished activity and returns the takeaway
func (h *PracticeHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	result, err := h.practiceService.Complete(r.PathValue("id"), userID, time.Now().UTC())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, completeResponse{
		DayNumber:  result.DayNumber,
		TotalScore: result.TotalScore,
		Takeaway:   result.Takeaway,
	})
}

type resetRequest struct {
	All bool `json:"all"`
}

// Reset clears the user's practice progress
func (h *PracticeHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req resetRequest
	if r.Body != nil {
		// an empty body means counters only
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.practiceService.Reset(userID, req.All); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to reset progress", "Progress reset failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondServiceError maps service errors onto HTTP statuses
func (h *PracticeHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		respondWithError(w, http.StatusNotFound, "Session not found", "", nil)
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, "That move is not allowed right now", "", nil)
	case errors.Is(err, service.ErrCompletionFailed):
		respondWithError(w, http.StatusServiceUnavailable, "Could not record completion, please retry", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Something went wrong", "Practice request failed", err)
	}
}
