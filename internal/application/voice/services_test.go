package voice

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prepwise/voicelytics/internal/domain/analysis"
	"github.com/prepwise/voicelytics/internal/domain/sessions"
)

type fakeAnalysisRepo struct {
	bySession map[string][]*analysis.Result
	saved     []*analysis.Result
	saveErr   error
	listErr   error
}

func (f *fakeAnalysisRepo) Save(_ context.Context, r *analysis.Result) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, r)
	if f.bySession == nil {
		f.bySession = make(map[string][]*analysis.Result)
	}
	f.bySession[r.SessionID] = append(f.bySession[r.SessionID], r)
	return nil
}

func (f *fakeAnalysisRepo) ListBySession(_ context.Context, sessionID string) ([]*analysis.Result, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.bySession[sessionID], nil
}

type fakeSessionRepo struct {
	sessions  map[sessions.SessionID]*sessions.Session
	completed []string
}

func (f *fakeSessionRepo) Save(_ context.Context, s *sessions.Session) error {
	if f.sessions == nil {
		f.sessions = make(map[sessions.SessionID]*sessions.Session)
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, _ string, id sessions.SessionID) (*sessions.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func (f *fakeSessionRepo) CompletedIDs(_ context.Context, _, exclude string, limit int) ([]string, error) {
	var out []string
	for _, id := range f.completed {
		if id != exclude && len(out) < limit {
			out = append(out, id)
		}
	}
	return out, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(repo *fakeAnalysisRepo, sess *fakeSessionRepo) *Service {
	if repo == nil {
		repo = &fakeAnalysisRepo{}
	}
	if sess == nil {
		sess = &fakeSessionRepo{}
	}
	return &Service{
		Repo:     repo,
		Sessions: sess,
		Clock:    fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
}

// result helper with just the fields aggregation reads
func aggResult(session string, index int, confidence, clarity float64, pace, fillers int, emotion string) *analysis.Result {
	return &analysis.Result{
		SessionID:        session,
		ResponseIndex:    index,
		ConfidenceScore:  confidence,
		ClarityScore:     clarity,
		SpeechPace:       pace,
		FillerWordsCount: fillers,
		EmotionDetected:  emotion,
	}
}

func TestAnalyzePersistsResult(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	svc := newTestService(repo, nil)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{
		SessionID:     "s1",
		ResponseIndex: 0,
		AudioURL:      "http://store/s1/response-0.wav",
		Transcript:    "I definitely achieved great results",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved record, got %d", len(repo.saved))
	}
	if res.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if res.SessionID != "s1" || res.ResponseIndex != 0 {
		t.Fatalf("session fields not carried: %+v", res)
	}
	if len(res.Recommendations) == 0 {
		t.Fatalf("recommendations must never be empty")
	}
}

func TestAnalyzeSaveFailure(t *testing.T) {
	repo := &fakeAnalysisRepo{saveErr: errors.New("connection refused")}
	svc := newTestService(repo, nil)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{SessionID: "s1", Transcript: "hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "failed to save voice analysis") {
		t.Fatalf("unexpected error message: %v", err)
	}
	if res == nil {
		t.Fatalf("computed result should still be returned")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	svc := newTestService(nil, nil)
	cmd := AnalyzeCommand{
		SessionID:     "s1",
		ResponseIndex: 2,
		Transcript:    "Um, I think I did well, actually the project was a great success and I definitely improved.",
	}

	a, err := svc.Analyze(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	b, err := svc.Analyze(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	// only the assigned id may differ
	a.ID, b.ID = "", ""
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("analyze is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestSessionAnalyticsEmptySession(t *testing.T) {
	svc := newTestService(nil, nil)

	got, err := svc.SessionAnalytics(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Analyses == nil || len(got.Analyses) != 0 {
		t.Fatalf("expected empty analyses slice, got %v", got.Analyses)
	}
	want := SessionSummary{
		DominantEmotion:    "unknown",
		OverallImprovement: "No data available",
	}
	if got.Summary != want {
		t.Fatalf("unexpected summary: %+v", got.Summary)
	}
}

func TestSessionAnalyticsAverages(t *testing.T) {
	repo := &fakeAnalysisRepo{bySession: map[string][]*analysis.Result{
		"s1": {
			aggResult("s1", 0, 60, 70, 140, 3, "calm"),
			aggResult("s1", 1, 80, 90, 160, 2, "calm"),
		},
	}}
	svc := newTestService(repo, nil)

	got, err := svc.SessionAnalytics(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := got.Summary
	if s.AverageConfidence != 70 || s.AverageClarity != 80 || s.AverageSpeechPace != 150 {
		t.Fatalf("wrong averages: %+v", s)
	}
	if s.TotalFillerWords != 5 {
		t.Fatalf("wrong filler total: %d", s.TotalFillerWords)
	}
	if s.DominantEmotion != "calm" {
		t.Fatalf("wrong dominant emotion: %s", s.DominantEmotion)
	}
}

func TestTrendBoundary(t *testing.T) {
	tests := []struct {
		name        string
		confidences []float64
		want        string
	}{
		{"eleven points up", []float64{60, 60, 71, 71}, "Strong improvement as interview progressed"},
		{"exactly ten points up", []float64{60, 60, 70, 70}, "Consistent performance throughout"},
		{"eleven points down", []float64{71, 71, 60, 60}, "Performance declined in later responses"},
		{"single response", []float64{80}, "Consistent performance throughout"},
	}
	for _, tt := range tests {
		list := make([]*analysis.Result, 0, len(tt.confidences))
		for i, c := range tt.confidences {
			list = append(list, aggResult("s1", i, c, 70, 150, 0, "calm"))
		}
		repo := &fakeAnalysisRepo{bySession: map[string][]*analysis.Result{"s1": list}}
		svc := newTestService(repo, nil)

		got, err := svc.SessionAnalytics(context.Background(), "s1")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got.Summary.OverallImprovement != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got.Summary.OverallImprovement, tt.want)
		}
	}
}

func TestDominantEmotionTieBreak(t *testing.T) {
	repo := &fakeAnalysisRepo{bySession: map[string][]*analysis.Result{
		"s1": {
			aggResult("s1", 0, 70, 70, 150, 0, "calm"),
			aggResult("s1", 1, 70, 70, 150, 0, "confident"),
			aggResult("s1", 2, 70, 70, 150, 0, "confident"),
			aggResult("s1", 3, 70, 70, 150, 0, "calm"),
		},
	}}
	svc := newTestService(repo, nil)

	got, err := svc.SessionAnalytics(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// two-two tie: the emotion seen first wins
	if got.Summary.DominantEmotion != "calm" {
		t.Fatalf("tie should break to first-seen emotion, got %s", got.Summary.DominantEmotion)
	}
}

func TestCompareNoHistory(t *testing.T) {
	repo := &fakeAnalysisRepo{bySession: map[string][]*analysis.Result{
		"s1": {aggResult("s1", 0, 80, 80, 150, 0, "confident")},
	}}
	svc := newTestService(repo, &fakeSessionRepo{})

	got, err := svc.ComparePerformance(context.Background(), "u1", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HistoricalAverage != nil {
		t.Fatalf("expected nil historical average, got %+v", got.HistoricalAverage)
	}
	if got.ImprovementPercentage != 0 {
		t.Fatalf("expected 0%% improvement, got %d", got.ImprovementPercentage)
	}
	if len(got.AreasImproved) != 0 || len(got.AreasDeclined) != 0 {
		t.Fatalf("expected empty classification lists: %+v", got)
	}
	if got.AreasImproved == nil || got.AreasDeclined == nil {
		t.Fatalf("classification lists must serialize as [], not null")
	}
}

func TestCompareWithHistory(t *testing.T) {
	repo := &fakeAnalysisRepo{bySession: map[string][]*analysis.Result{
		"s1": {aggResult("s1", 0, 80, 80, 150, 0, "confident")},
		"h1": {aggResult("h1", 0, 60, 80, 100, 0, "calm")},
	}}
	sess := &fakeSessionRepo{completed: []string{"h1"}}
	svc := newTestService(repo, sess)

	got, err := svc.ComparePerformance(context.Background(), "u1", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HistoricalAverage == nil {
		t.Fatalf("expected historical average")
	}
	if got.HistoricalAverage.Confidence != 60 || got.HistoricalAverage.Pace != 100 {
		t.Fatalf("wrong historical average: %+v", got.HistoricalAverage)
	}
	// (80-60)/60 * 100 = 33.3 -> 33
	if got.ImprovementPercentage != 33 {
		t.Fatalf("wrong improvement percentage: %d", got.ImprovementPercentage)
	}
	// confidence up by 20, clarity unchanged, pace distance 10 vs 40
	if !reflect.DeepEqual(got.AreasImproved, []string{"Confidence", "Speech Pace"}) {
		t.Fatalf("wrong improved areas: %v", got.AreasImproved)
	}
	if len(got.AreasDeclined) != 0 {
		t.Fatalf("expected no declined areas: %v", got.AreasDeclined)
	}
}

func TestCompareDeclined(t *testing.T) {
	repo := &fakeAnalysisRepo{bySession: map[string][]*analysis.Result{
		"s1": {aggResult("s1", 0, 50, 60, 190, 0, "uncertain")},
		"h1": {aggResult("h1", 0, 70, 80, 145, 0, "confident")},
	}}
	sess := &fakeSessionRepo{completed: []string{"h1"}}
	svc := newTestService(repo, sess)

	got, err := svc.ComparePerformance(context.Background(), "u1", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (50-70)/70 * 100 = -28.57 -> -29
	if got.ImprovementPercentage != -29 {
		t.Fatalf("wrong improvement percentage: %d", got.ImprovementPercentage)
	}
	// pace distance 50 vs 5, beyond the 10 point tolerance
	if !reflect.DeepEqual(got.AreasDeclined, []string{"Confidence", "Clarity", "Speech Pace"}) {
		t.Fatalf("wrong declined areas: %v", got.AreasDeclined)
	}
	if len(got.AreasImproved) != 0 {
		t.Fatalf("expected no improved areas: %v", got.AreasImproved)
	}
}

func TestCompareHistoryLimit(t *testing.T) {
	repo := &fakeAnalysisRepo{bySession: map[string][]*analysis.Result{
		"s1": {aggResult("s1", 0, 80, 80, 150, 0, "confident")},
	}}
	sess := &fakeSessionRepo{}
	for i := 0; i < 15; i++ {
		id := "h" + string(rune('a'+i))
		sess.completed = append(sess.completed, id)
		repo.bySession[id] = []*analysis.Result{aggResult(id, 0, 60, 60, 140, 0, "calm")}
	}
	svc := newTestService(repo, sess)

	got, err := svc.ComparePerformance(context.Background(), "u1", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HistoricalAverage == nil {
		t.Fatalf("expected historical average")
	}
}

func TestSessionLifecycle(t *testing.T) {
	sess := &fakeSessionRepo{}
	svc := newTestService(nil, sess)

	started, err := svc.StartSession(context.Background(), "u1", "backend engineer")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if started.Status != sessions.StatusActive {
		t.Fatalf("expected active status, got %s", started.Status)
	}

	completed, err := svc.CompleteSession(context.Background(), "u1", started.ID)
	if err != nil {
		t.Fatalf("complete session: %v", err)
	}
	if completed.Status != sessions.StatusCompleted {
		t.Fatalf("expected completed status, got %s", completed.Status)
	}
	if completed.CompletedAt.IsZero() {
		t.Fatalf("expected completed_at to be set")
	}
}
