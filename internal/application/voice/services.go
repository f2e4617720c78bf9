package voice

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/prepwise/voicelytics/internal/application"
	"github.com/prepwise/voicelytics/internal/domain/analysis"
	"github.com/prepwise/voicelytics/internal/domain/sessions"
)

// Service implements use-cases untuk voice analysis
// Service is stateless and safe for concurrent use; every call works on data
// freshly fetched from the repositories.
type Service struct {
	Repo     analysis.Repository
	Sessions sessions.Repository
	Audio    analysis.AudioStore
	Clock    application.Clock
}

//
// ==== USE CASES ====
//

// Command untuk analyze satu response
type AnalyzeCommand struct {
	SessionID     string
	ResponseIndex int
	AudioURL      string
	Transcript    string
}

// SessionSummary is the aggregate over all analyses of one session.
type SessionSummary struct {
	AverageConfidence  int    `json:"average_confidence"`
	AverageClarity     int    `json:"average_clarity"`
	TotalFillerWords   int    `json:"total_filler_words"`
	AverageSpeechPace  int    `json:"average_speech_pace"`
	DominantEmotion    string `json:"dominant_emotion"`
	OverallImprovement string `json:"overall_improvement"`
}

type SessionAnalytics struct {
	Analyses []*analysis.Result `json:"analyses"`
	Summary  SessionSummary     `json:"summary"`
}

// HistoricalAverage: per-dimension mean across the user's other completed
// sessions (an average of session averages).
type HistoricalAverage struct {
	Confidence float64 `json:"confidence"`
	Clarity    float64 `json:"clarity"`
	Pace       float64 `json:"pace"`
}

type PerformanceComparison struct {
	CurrentSession        SessionSummary     `json:"current_session"`
	HistoricalAverage     *HistoricalAverage `json:"historical_average"`
	ImprovementPercentage int                `json:"improvement_percentage"`
	AreasImproved         []string           `json:"areas_improved"`
	AreasDeclined         []string           `json:"areas_declined"`
}

// Analyze scores a transcript and persists the result. The computation is
// deterministic for identical input; only the persistence call can fail.
// On persistence failure the computed result is still returned with the error.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*analysis.Result, error) {
	tone := analyzeTone(cmd.Transcript)
	confidence := confidenceScore(cmd.Transcript, tone)
	metrics := speechMetrics(cmd.Transcript)
	fillers := countFillerWords(cmd.Transcript)
	clarity := clarityScore(cmd.Transcript, metrics)

	res := &analysis.Result{
		ID:                 analysis.ResultID(uuid.New().String()),
		SessionID:          cmd.SessionID,
		ResponseIndex:      cmd.ResponseIndex,
		AudioURL:           cmd.AudioURL,
		Transcript:         cmd.Transcript,
		ToneAnalysis:       tone,
		ConfidenceScore:    confidence,
		SpeechPace:         metrics.WordsPerMinute,
		FillerWordsCount:   fillers,
		ClarityScore:       clarity,
		EmotionDetected:    detectEmotion(tone),
		VolumeConsistency:  estimateVolumeConsistency(cmd.Transcript),
		PronunciationScore: estimatePronunciationScore(cmd.Transcript),
		Recommendations:    buildRecommendations(tone, confidence, metrics, fillers, clarity),
		AnalyzedAt:         s.Clock.Now(),
	}

	if err := s.Repo.Save(ctx, res); err != nil {
		return res, fmt.Errorf("failed to save voice analysis: %w", err)
	}
	return res, nil
}

// audio content types yang didukung untuk upload rekaman
var audioExtensions = map[string]string{
	"audio/wav":  ".wav",
	"audio/wave": ".wav",
	"audio/mpeg": ".mp3",
	"audio/webm": ".webm",
	"audio/ogg":  ".ogg",
}

// UploadAudio stores a response recording and returns its URL. The URL is an
// opaque reference on the analysis; the engine never reads the audio back.
func (s *Service) UploadAudio(ctx context.Context, r io.Reader, size int64, sessionID string, responseIndex int, contentType string) (string, error) {
	ext, ok := audioExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported audio content type: %s", contentType)
	}
	key := fmt.Sprintf("%s/response-%d%s", sessionID, responseIndex, ext)
	url, err := s.Audio.Upload(ctx, r, size, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}
	return url, nil
}

// SessionAnalytics returns all analyses for a session plus the aggregate
// summary. An empty session is not an error: it yields a zeroed summary with
// "unknown" emotion.
func (s *Service) SessionAnalytics(ctx context.Context, sessionID string) (SessionAnalytics, error) {
	list, err := s.Repo.ListBySession(ctx, sessionID)
	if err != nil {
		return SessionAnalytics{}, fmt.Errorf("failed to fetch voice analytics: %w", err)
	}
	if len(list) == 0 {
		return SessionAnalytics{
			Analyses: []*analysis.Result{},
			Summary: SessionSummary{
				DominantEmotion:    analysis.EmotionUnknown,
				OverallImprovement: "No data available",
			},
		}, nil
	}

	var confSum, claritySum, paceSum float64
	totalFillers := 0
	for _, a := range list {
		confSum += a.ConfidenceScore
		claritySum += a.ClarityScore
		paceSum += float64(a.SpeechPace)
		totalFillers += a.FillerWordsCount
	}
	n := float64(len(list))

	// trend: compare mean confidence of the first ceil-half vs the rest
	half := (len(list) + 1) / 2
	firstHalf := list[:half]
	secondHalf := list[half:]

	improvement := "Consistent performance throughout"
	if len(secondHalf) > 0 {
		firstAvg := meanConfidence(firstHalf)
		secondAvg := meanConfidence(secondHalf)
		if secondAvg > firstAvg+10 {
			improvement = "Strong improvement as interview progressed"
		} else if secondAvg < firstAvg-10 {
			improvement = "Performance declined in later responses"
		}
	}

	return SessionAnalytics{
		Analyses: list,
		Summary: SessionSummary{
			AverageConfidence:  int(math.Round(confSum / n)),
			AverageClarity:     int(math.Round(claritySum / n)),
			TotalFillerWords:   totalFillers,
			AverageSpeechPace:  int(math.Round(paceSum / n)),
			DominantEmotion:    dominantEmotion(list),
			OverallImprovement: improvement,
		},
	}, nil
}

func meanConfidence(list []*analysis.Result) float64 {
	sum := 0.0
	for _, a := range list {
		sum += a.ConfidenceScore
	}
	return sum / float64(len(list))
}

// dominantEmotion picks the most frequent emotion label; ties go to the
// emotion seen first in response order.
func dominantEmotion(list []*analysis.Result) string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, a := range list {
		if _, ok := firstSeen[a.EmotionDetected]; !ok {
			firstSeen[a.EmotionDetected] = i
		}
		counts[a.EmotionDetected]++
	}

	best := ""
	for emotion, c := range counts {
		if best == "" ||
			c > counts[best] ||
			(c == counts[best] && firstSeen[emotion] < firstSeen[best]) {
			best = emotion
		}
	}
	return best
}

// ComparePerformance compares the session's aggregate against the mean of up
// to 10 of the user's other completed sessions. Without history it returns
// the current summary with a nil historical average and no classifications.
func (s *Service) ComparePerformance(ctx context.Context, userID, sessionID string) (PerformanceComparison, error) {
	current, err := s.SessionAnalytics(ctx, sessionID)
	if err != nil {
		return PerformanceComparison{}, err
	}

	ids, err := s.Sessions.CompletedIDs(ctx, userID, sessionID, 10)
	if err != nil {
		return PerformanceComparison{}, fmt.Errorf("failed to fetch user sessions: %w", err)
	}
	if len(ids) == 0 {
		return PerformanceComparison{
			CurrentSession: current.Summary,
			AreasImproved:  []string{},
			AreasDeclined:  []string{},
		}, nil
	}

	var confSum, claritySum, paceSum float64
	for _, id := range ids {
		sa, err := s.SessionAnalytics(ctx, id)
		if err != nil {
			return PerformanceComparison{}, err
		}
		confSum += float64(sa.Summary.AverageConfidence)
		claritySum += float64(sa.Summary.AverageClarity)
		paceSum += float64(sa.Summary.AverageSpeechPace)
	}
	n := float64(len(ids))
	hist := &HistoricalAverage{
		Confidence: confSum / n,
		Clarity:    claritySum / n,
		Pace:       paceSum / n,
	}

	cur := current.Summary
	improvementPct := 0
	if hist.Confidence != 0 {
		improvementPct = int(math.Round((float64(cur.AverageConfidence) - hist.Confidence) / hist.Confidence * 100))
	}

	improved := []string{}
	declined := []string{}

	if float64(cur.AverageConfidence) > hist.Confidence+5 {
		improved = append(improved, "Confidence")
	} else if float64(cur.AverageConfidence) < hist.Confidence-5 {
		declined = append(declined, "Confidence")
	}

	if float64(cur.AverageClarity) > hist.Clarity+5 {
		improved = append(improved, "Clarity")
	} else if float64(cur.AverageClarity) < hist.Clarity-5 {
		declined = append(declined, "Clarity")
	}

	// pace is judged by distance from the 140 wpm target
	curDist := math.Abs(float64(cur.AverageSpeechPace) - 140)
	histDist := math.Abs(hist.Pace - 140)
	if curDist < histDist {
		improved = append(improved, "Speech Pace")
	} else if curDist > histDist+10 {
		declined = append(declined, "Speech Pace")
	}

	return PerformanceComparison{
		CurrentSession:        cur,
		HistoricalAverage:     hist,
		ImprovementPercentage: improvementPct,
		AreasImproved:         improved,
		AreasDeclined:         declined,
	}, nil
}

// StartSession creates a new active interview session for the user.
func (s *Service) StartSession(ctx context.Context, userID, role string) (*sessions.Session, error) {
	sess := &sessions.Session{
		ID:        sessions.SessionID(uuid.New().String()),
		UserID:    userID,
		Role:      role,
		Status:    sessions.StatusActive,
		StartedAt: s.Clock.Now(),
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// CompleteSession marks a session completed so it counts toward the user's
// history in ComparePerformance.
func (s *Service) CompleteSession(ctx context.Context, userID string, id sessions.SessionID) (*sessions.Session, error) {
	sess, err := s.Sessions.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	sess.Status = sessions.StatusCompleted
	sess.CompletedAt = s.Clock.Now()
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}
