package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dailycoach/internal/models"
	"dailycoach/internal/service"
)

type stubCatalog struct {
	activity *models.Activity
}

func (s *stubCatalog) GetByDayAndBand(dayNumber int, ageBand string) (*models.Activity, error) {
	if s.activity != nil && s.activity.DayNumber == dayNumber {
		return s.activity, nil
	}
	return nil, nil
}

type stubProgress struct {
	lastCompletedDay int
	lastCompletedAt  *time.Time
	completedDays    []int
}

func (s *stubProgress) Progress(userID string) (*models.UserProgress, error) {
	return &models.UserProgress{
		UserID:           userID,
		LastCompletedDay: s.lastCompletedDay,
		LastCompletedAt:  s.lastCompletedAt,
	}, nil
}

func (s *stubProgress) LatestChildBirthday(userID string) (*time.Time, error) { return nil, nil }

func (s *stubProgress) CompleteDay(userID string, dayNumber, score int, completedAt time.Time) error {
	s.completedDays = append(s.completedDays, dayNumber)
	s.lastCompletedDay = dayNumber
	s.lastCompletedAt = &completedAt
	return nil
}

func (s *stubProgress) ResetProgress(userID string, all bool) error {
	s.lastCompletedDay = 0
	s.lastCompletedAt = nil
	return nil
}

type stubResults struct{}

func (stubResults) CreateSession(userID, activityID string, dayNumber int, startAt time.Time) (string, error) {
	return "result-1", nil
}
func (stubResults) SavePromptResult(resultID string, result models.PromptResult) error { return nil }
func (stubResults) MarkCompleted(resultID string, totalScore int, endAt time.Time) error {
	return nil
}

func testActivity() *models.Activity {
	return &models.Activity{
		ID:        "act-1",
		DayNumber: 1,
		AgeBand:   models.AgeBand6to9,
		Title:     "Test",
		Scenario:  "A scenario",
		Prompts: []models.Prompt{
			{
				PromptID:   "p1",
				Type:       models.TypeBestResponse,
				PromptText: "Pick one",
				Order:      1,
				Points:     10,
				Options: []models.Option{
					{OptionID: "a", OptionText: "Wrong", Feedback: "No"},
					{OptionID: "b", OptionText: "Right", Correct: true, Feedback: "Yes"},
					{OptionID: "c", OptionText: "Wrong", Feedback: "No"},
				},
			},
		},
		ActionableTakeaway: models.ActionableTakeaway{ToolName: "Pause First"},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *stubProgress) {
	t.Helper()

	progress := &stubProgress{}
	svc := service.NewPracticeService(&stubCatalog{activity: testActivity()}, progress, stubResults{})
	middleware := NewMiddleware(testSecret)
	handler := NewPracticeHandler(svc, middleware)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, progress
}

func doJSON(t *testing.T, server *httptest.Server, method, path, token, body string, out interface{}) int {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestPracticeFlow(t *testing.T) {
	server, progress := newTestServer(t)
	token := signedToken(t, "user-1", testSecret)

	var gate gateResponse
	if status := doJSON(t, server, http.MethodGet, "/api/practice/today", token, "", &gate); status != http.StatusOK {
		t.Fatalf("today status = %v, want 200", status)
	}
	if gate.Status != service.StatusReady || gate.DayNumber != 1 {
		t.Fatalf("gate = %v day %v, want ready day 1", gate.Status, gate.DayNumber)
	}

	var started startResponse
	if status := doJSON(t, server, http.MethodPost, "/api/practice/start", token, "", &started); status != http.StatusCreated {
		t.Fatalf("start status = %v, want 201", status)
	}

	base := "/api/practice/session/" + started.SessionID

	// wrong answer then retry
	var submit submitResponse
	if status := doJSON(t, server, http.MethodPost, base+"/answer", token, `{"optionId":"a"}`, &submit); status != http.StatusOK {
		t.Fatalf("answer status = %v, want 200", status)
	}
	if submit.Correct {
		t.Fatal("expected an incorrect answer")
	}
	if submit.Feedback == nil || submit.Feedback.OptionID != "a" {
		t.Errorf("feedback = %+v, want option a", submit.Feedback)
	}
	if status := doJSON(t, server, http.MethodPost, base+"/retry", token, "", nil); status != http.StatusOK {
		t.Fatalf("retry status = %v, want 200", status)
	}

	// second attempt on a 3-option prompt earns ceil(10*1/2) = 5
	if status := doJSON(t, server, http.MethodPost, base+"/answer", token, `{"optionId":"b"}`, &submit); status != http.StatusOK {
		t.Fatalf("answer status = %v, want 200", status)
	}
	if !submit.Correct || submit.PointsAwarded != 5 {
		t.Fatalf("submit = correct %v points %v, want correct 5", submit.Correct, submit.PointsAwarded)
	}
	if !submit.ReadyToFinish {
		t.Fatal("expected ReadyToFinish on the last prompt")
	}

	var completed completeResponse
	if status := doJSON(t, server, http.MethodPost, base+"/complete", token, "", &completed); status != http.StatusOK {
		t.Fatalf("complete status = %v, want 200", status)
	}
	if completed.TotalScore != 5 || completed.Takeaway.ToolName != "Pause First" {
		t.Errorf("completion = score %v takeaway %v", completed.TotalScore, completed.Takeaway.ToolName)
	}
	if len(progress.completedDays) != 1 || progress.completedDays[0] != 1 {
		t.Errorf("completed days = %v, want [1]", progress.completedDays)
	}

	// the gate now reports today as done
	if status := doJSON(t, server, http.MethodGet, "/api/practice/today", token, "", &gate); status != http.StatusOK {
		t.Fatalf("today status = %v, want 200", status)
	}
	if gate.Status != service.StatusAlreadyCompleted {
		t.Errorf("gate after completion = %v, want %v", gate.Status, service.StatusAlreadyCompleted)
	}
}

func TestPracticeFlowRejectsForeignSession(t *testing.T) {
	server, _ := newTestServer(t)
	owner := signedToken(t, "user-1", testSecret)
	intruder := signedToken(t, "user-2", testSecret)

	var started startResponse
	if status := doJSON(t, server, http.MethodPost, "/api/practice/start", owner, "", &started); status != http.StatusCreated {
		t.Fatalf("start status = %v, want 201", status)
	}

	path := fmt.Sprintf("/api/practice/session/%s/answer", started.SessionID)
	if status := doJSON(t, server, http.MethodPost, path, intruder, `{"optionId":"b"}`, nil); status != http.StatusNotFound {
		t.Errorf("foreign answer status = %v, want 404", status)
	}
}

func TestDayPreview(t *testing.T) {
	server, _ := newTestServer(t)
	token := signedToken(t, "user-1", testSecret)

	var activity models.Activity
	if status := doJSON(t, server, http.MethodGet, "/api/practice/day/1", token, "", &activity); status != http.StatusOK {
		t.Fatalf("day status = %v, want 200", status)
	}
	if activity.ID != "act-1" {
		t.Errorf("activity id = %v, want act-1", activity.ID)
	}

	if status := doJSON(t, server, http.MethodGet, "/api/practice/day/99", token, "", nil); status != http.StatusNotFound {
		t.Errorf("missing day status = %v, want 404", status)
	}
	if status := doJSON(t, server, http.MethodGet, "/api/practice/day/zero", token, "", nil); status != http.StatusBadRequest {
		t.Errorf("bad day status = %v, want 400", status)
	}
}
