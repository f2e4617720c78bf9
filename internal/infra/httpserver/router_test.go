package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prepwise/voicelytics/internal/application"
	appcoach "github.com/prepwise/voicelytics/internal/application/coach"
	appvoice "github.com/prepwise/voicelytics/internal/application/voice"
	"github.com/prepwise/voicelytics/internal/domain/ai"
	"github.com/prepwise/voicelytics/internal/domain/analysis"
	"github.com/prepwise/voicelytics/internal/domain/coach"
	"github.com/prepwise/voicelytics/internal/domain/sessions"
)

type memAnalysisRepo struct {
	bySession map[string][]*analysis.Result
}

func (m *memAnalysisRepo) Save(_ context.Context, r *analysis.Result) error {
	if m.bySession == nil {
		m.bySession = make(map[string][]*analysis.Result)
	}
	m.bySession[r.SessionID] = append(m.bySession[r.SessionID], r)
	return nil
}

func (m *memAnalysisRepo) ListBySession(_ context.Context, sessionID string) ([]*analysis.Result, error) {
	return m.bySession[sessionID], nil
}

type memSessionRepo struct {
	sessions map[sessions.SessionID]*sessions.Session
}

func (m *memSessionRepo) Save(_ context.Context, s *sessions.Session) error {
	if m.sessions == nil {
		m.sessions = make(map[sessions.SessionID]*sessions.Session)
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessionRepo) Get(_ context.Context, _ string, id sessions.SessionID) (*sessions.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, errNotFound
}

func (m *memSessionRepo) CompletedIDs(_ context.Context, _, exclude string, limit int) ([]string, error) {
	var out []string
	for id, s := range m.sessions {
		if s.Status == sessions.StatusCompleted && string(id) != exclude && len(out) < limit {
			out = append(out, string(id))
		}
	}
	return out, nil
}

var errNotFound = &notFoundErr{}

type notFoundErr struct{}

func (*notFoundErr) Error() string { return "session not found" }

type memFeedbackRepo struct {
	saved []*coach.Feedback
}

func (m *memFeedbackRepo) Save(_ context.Context, f *coach.Feedback) error {
	m.saved = append(m.saved, f)
	return nil
}

func (m *memFeedbackRepo) Paginate(_ context.Context, userID string, _, _ int) ([]*coach.Feedback, error) {
	var out []*coach.Feedback
	for _, f := range m.saved {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFeedbackRepo) LatestBySession(_ context.Context, userID, sessionID string) (*coach.Feedback, error) {
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].UserID == userID && m.saved[i].SessionID == sessionID {
			return m.saved[i], nil
		}
	}
	return nil, errNotFound
}

type stubAIClient struct {
	response string
	err      error
}

func (c stubAIClient) Coach(_ context.Context, _ string) (string, error) {
	return c.response, c.err
}

func newTestRouter(t *testing.T, aiClient ai.Client) (http.Handler, *memAnalysisRepo) {
	t.Helper()
	repo := &memAnalysisRepo{}
	clock := application.SystemClock{}
	voiceSvc := &appvoice.Service{
		Repo:     repo,
		Sessions: &memSessionRepo{},
		Clock:    clock,
	}
	coachSvc := &appcoach.Service{
		Client: aiClient,
		Repo:   &memFeedbackRepo{},
		Clock:  clock,
	}
	return NewRouter(voiceSvc, coachSvc, nil), repo
}

func TestAnalyzeEndpoint(t *testing.T) {
	h, repo := newTestRouter(t, stubAIClient{})

	body := `{"response_index":0,"transcript":"I definitely achieved excellent results"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/user-1/sessions/sess-1/responses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res analysis.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if res.SessionID != "sess-1" {
		t.Fatalf("wrong session id: %s", res.SessionID)
	}
	if res.ConfidenceScore < 0 || res.ConfidenceScore > 100 {
		t.Fatalf("confidence out of bounds: %f", res.ConfidenceScore)
	}
	if len(repo.bySession["sess-1"]) != 1 {
		t.Fatalf("analysis was not persisted")
	}
}

func TestAnalyzeEndpointRejectsBadIndex(t *testing.T) {
	h, _ := newTestRouter(t, stubAIClient{})

	body := `{"response_index":-1,"transcript":"hello"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/user-1/sessions/sess-1/responses", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyticsEmptySession(t *testing.T) {
	h, _ := newTestRouter(t, stubAIClient{})

	req := httptest.NewRequest(http.MethodGet, "/v1/user-1/sessions/empty/analytics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got appvoice.SessionAnalytics
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.Summary.DominantEmotion != "unknown" {
		t.Fatalf("expected unknown emotion, got %q", got.Summary.DominantEmotion)
	}
	if got.Summary.OverallImprovement != "No data available" {
		t.Fatalf("unexpected improvement text: %q", got.Summary.OverallImprovement)
	}
	// analyses serializes as [], never null
	if !strings.Contains(rec.Body.String(), `"analyses":[]`) {
		t.Fatalf("analyses must serialize as empty array: %s", rec.Body.String())
	}
}

func TestInvalidUserIDRejected(t *testing.T) {
	h, _ := newTestRouter(t, stubAIClient{})

	req := httptest.NewRequest(http.MethodGet, "/v1/bad%20user/sessions/s1/analytics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	h, _ := newTestRouter(t, stubAIClient{})

	req := httptest.NewRequest(http.MethodPost, "/v1/user-1/sessions", strings.NewReader(`{"role":"backend engineer"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var sess sessions.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("invalid start response: %v", err)
	}
	if sess.Status != sessions.StatusActive {
		t.Fatalf("expected active session, got %s", sess.Status)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/user-1/sessions/"+string(sess.ID)+"/complete", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var done sessions.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &done); err != nil {
		t.Fatalf("invalid complete response: %v", err)
	}
	if done.Status != sessions.StatusCompleted || done.CompletedAt.IsZero() {
		t.Fatalf("session not completed: %+v", done)
	}
}

func TestCoachEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, stubAIClient{response: `{"strengths":["clear delivery"]}`})

	req := httptest.NewRequest(http.MethodPost, "/v1/user-1/ai/feedback", strings.NewReader(`{"session_id":"sess-1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var f coach.Feedback
	if err := json.Unmarshal(rec.Body.Bytes(), &f); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if f.UserID != "user-1" || f.SessionID != "sess-1" {
		t.Fatalf("feedback not attributed: %+v", f)
	}
	if !strings.Contains(f.Result, "clear delivery") {
		t.Fatalf("ai result not stored: %q", f.Result)
	}
}

func TestCoachQuotaExceeded(t *testing.T) {
	h, _ := newTestRouter(t, stubAIClient{err: ai.ErrQuotaExceeded})

	req := httptest.NewRequest(http.MethodPost, "/v1/user-1/ai/feedback", strings.NewReader(`{"session_id":"sess-1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rec.Code, rec.Body.String())
	}
}
