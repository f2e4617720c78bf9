package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appcoach "github.com/prepwise/voicelytics/internal/application/coach"
	appvoice "github.com/prepwise/voicelytics/internal/application/voice"
	domai "github.com/prepwise/voicelytics/internal/domain/ai"
	"github.com/prepwise/voicelytics/internal/domain/sessions"
	"github.com/prepwise/voicelytics/internal/middleware"
)

// 32 MB cap on uploaded recordings
const maxAudioUploadBytes = 32 << 20

type Router struct {
	voiceSvc *appvoice.Service
	coachSvc *appcoach.Service
}

func NewRouter(voiceSvc *appvoice.Service, coachSvc *appcoach.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{voiceSvc: voiceSvc, coachSvc: coachSvc}
	mux := chi.NewRouter()

	// browser clients (the web app) call this API directly
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{user}", func(rt chi.Router) {
		rt.Post("/sessions", r.wrap(r.handleStartSession))
		rt.Post("/sessions/{session}/complete", r.wrap(r.handleCompleteSession))
		rt.Post("/sessions/{session}/responses", r.wrap(r.handleAnalyze))
		rt.Post("/sessions/{session}/responses/audio", r.wrap(r.handleAnalyzeWithAudio))
		rt.Get("/sessions/{session}/analytics", r.wrap(r.handleAnalytics))
		rt.Get("/sessions/{session}/comparison", r.wrap(r.handleComparison))
		rt.Post("/ai/feedback", r.wrap(r.handleCoach))
		rt.Get("/ai/feedback", r.wrap(r.handleCoachList))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks caller errors so wrap can answer 400 instead of 500
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequest
			if errors.As(err, &br) {
				http.Error(w, br.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func pathIDs(req *http.Request) (user, session string, err error) {
	user = chi.URLParam(req, "user")
	session = chi.URLParam(req, "session")
	if err := middleware.ValidateUserID(user); err != nil {
		return "", "", badRequest{err}
	}
	if err := middleware.ValidateSessionID(session); err != nil {
		return "", "", badRequest{err}
	}
	return user, session, nil
}

// POST /v1/{user}/sessions
// Body: {"role": "<optional>"}
func (r *Router) handleStartSession(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	if err := middleware.ValidateUserID(user); err != nil {
		return badRequest{err}
	}

	var body struct {
		Role string `json:"role"`
	}
	if req.Body != nil && req.ContentLength != 0 {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return badRequest{err}
		}
	}

	sess, err := r.voiceSvc.StartSession(req.Context(), user, middleware.SanitizeString(body.Role))
	if err != nil {
		return err
	}
	return writeJSON(w, sess)
}

// POST /v1/{user}/sessions/{session}/complete
func (r *Router) handleCompleteSession(w http.ResponseWriter, req *http.Request) error {
	user, session, err := pathIDs(req)
	if err != nil {
		return err
	}

	sess, err := r.voiceSvc.CompleteSession(req.Context(), user, sessions.SessionID(session))
	if err != nil {
		return err
	}
	return writeJSON(w, sess)
}

// POST /v1/{user}/sessions/{session}/responses
// Body: {"response_index": 0, "audio_url": "<optional>", "transcript": "..."}
// Analysis is synchronous; the scored record is returned directly.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	_, session, err := pathIDs(req)
	if err != nil {
		return err
	}

	var body struct {
		ResponseIndex int    `json:"response_index"`
		AudioURL      string `json:"audio_url"`
		Transcript    string `json:"transcript"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateResponseIndex(body.ResponseIndex); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateTranscript(body.Transcript); err != nil {
		return badRequest{err}
	}

	middleware.IncrementAnalyses()
	res, err := r.voiceSvc.Analyze(req.Context(), appvoice.AnalyzeCommand{
		SessionID:     session,
		ResponseIndex: body.ResponseIndex,
		AudioURL:      body.AudioURL,
		Transcript:    body.Transcript,
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, res)
}

// POST /v1/{user}/sessions/{session}/responses/audio
// multipart/form-data: response_index, transcript, audio (file)
// The recording is stored first; its URL rides along on the analysis record.
func (r *Router) handleAnalyzeWithAudio(w http.ResponseWriter, req *http.Request) error {
	_, session, err := pathIDs(req)
	if err != nil {
		return err
	}

	if err := req.ParseMultipartForm(maxAudioUploadBytes); err != nil {
		return badRequest{fmt.Errorf("invalid multipart form: %w", err)}
	}
	index, err := strconv.Atoi(req.FormValue("response_index"))
	if err != nil {
		return badRequest{fmt.Errorf("response_index is required")}
	}
	if err := middleware.ValidateResponseIndex(index); err != nil {
		return badRequest{err}
	}
	transcript := req.FormValue("transcript")
	if err := middleware.ValidateTranscript(transcript); err != nil {
		return badRequest{err}
	}

	file, header, err := req.FormFile("audio")
	if err != nil {
		return badRequest{fmt.Errorf("audio file is required")}
	}
	defer file.Close()

	audioURL, err := r.voiceSvc.UploadAudio(req.Context(), file, header.Size, session, index, header.Header.Get("Content-Type"))
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	res, err := r.voiceSvc.Analyze(req.Context(), appvoice.AnalyzeCommand{
		SessionID:     session,
		ResponseIndex: index,
		AudioURL:      audioURL,
		Transcript:    transcript,
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSON(w, res)
}

// GET /v1/{user}/sessions/{session}/analytics
func (r *Router) handleAnalytics(w http.ResponseWriter, req *http.Request) error {
	_, session, err := pathIDs(req)
	if err != nil {
		return err
	}

	analytics, err := r.voiceSvc.SessionAnalytics(req.Context(), session)
	if err != nil {
		return err
	}
	return writeJSON(w, analytics)
}

// GET /v1/{user}/sessions/{session}/comparison
func (r *Router) handleComparison(w http.ResponseWriter, req *http.Request) error {
	user, session, err := pathIDs(req)
	if err != nil {
		return err
	}

	comparison, err := r.voiceSvc.ComparePerformance(req.Context(), user, session)
	if err != nil {
		return err
	}
	return writeJSON(w, comparison)
}

// POST /v1/{user}/ai/feedback
// Body: {"session_id": "<id>"}
// The server aggregates the session and runs AI coaching on the summary.
func (r *Router) handleCoach(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	if err := middleware.ValidateUserID(user); err != nil {
		return badRequest{err}
	}

	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateSessionID(body.SessionID); err != nil {
		return badRequest{err}
	}

	analytics, err := r.voiceSvc.SessionAnalytics(req.Context(), body.SessionID)
	if err != nil {
		return err
	}
	summaryJSON, err := json.Marshal(analytics.Summary)
	if err != nil {
		return err
	}

	f, err := r.coachSvc.CoachAndStore(req.Context(), user, body.SessionID, string(summaryJSON))
	if err != nil {
		return err
	}
	return writeJSON(w, f)
}

// GET /v1/{user}/ai/feedback?page=&page_size=
func (r *Router) handleCoachList(w http.ResponseWriter, req *http.Request) error {
	user := chi.URLParam(req, "user")
	if err := middleware.ValidateUserID(user); err != nil {
		return badRequest{err}
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.coachSvc.ListFeedback(req.Context(), user, middleware.ValidatePage(page), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}
