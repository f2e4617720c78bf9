package mysql

import (
	"context"
	"database/sql"

	domain "github.com/prepwise/voicelytics/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save insert voice analysis record. (session_id, response_index) is unique;
// a re-analysis of the same response overwrites the previous scores.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Result) error {
	const q = `
INSERT INTO voice_analysis
(id, session_id, response_index, audio_url, transcript,
 primary_tone, tone_confidence, emotional_valence, energy_level, formality_score, enthusiasm_score,
 nervousness_indicators, positive_indicators,
 confidence_score, speech_pace, filler_words_count, clarity_score, emotion_detected,
 volume_consistency, pronunciation_score, recommendations, analyzed_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 audio_url=VALUES(audio_url), transcript=VALUES(transcript),
 primary_tone=VALUES(primary_tone), tone_confidence=VALUES(tone_confidence),
 emotional_valence=VALUES(emotional_valence), energy_level=VALUES(energy_level),
 formality_score=VALUES(formality_score), enthusiasm_score=VALUES(enthusiasm_score),
 nervousness_indicators=VALUES(nervousness_indicators), positive_indicators=VALUES(positive_indicators),
 confidence_score=VALUES(confidence_score), speech_pace=VALUES(speech_pace),
 filler_words_count=VALUES(filler_words_count), clarity_score=VALUES(clarity_score),
 emotion_detected=VALUES(emotion_detected), volume_consistency=VALUES(volume_consistency),
 pronunciation_score=VALUES(pronunciation_score), recommendations=VALUES(recommendations);
`
	sessionID := stringOrDash(a.SessionID)
	emotion := stringOrDash(a.EmotionDetected)
	tone := stringOrDash(string(a.ToneAnalysis.PrimaryTone))

	_, err := r.db.ExecContext(ctx, q,
		a.ID, sessionID, a.ResponseIndex, a.AudioURL, a.Transcript,
		tone, a.ToneAnalysis.ToneConfidence, a.ToneAnalysis.EmotionalValence,
		a.ToneAnalysis.EnergyLevel, a.ToneAnalysis.FormalityScore, a.ToneAnalysis.EnthusiasmScore,
		jsonList(a.ToneAnalysis.NervousnessIndicators), jsonList(a.ToneAnalysis.PositiveIndicators),
		a.ConfidenceScore, a.SpeechPace, a.FillerWordsCount, a.ClarityScore, emotion,
		a.VolumeConsistency, a.PronunciationScore, jsonList(a.Recommendations), a.AnalyzedAt,
	)
	return err
}

// ListBySession returns all analyses of one session ordered by response_index
func (r *AnalysisRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Result, error) {
	const q = `
SELECT id, session_id, response_index, audio_url, transcript,
       primary_tone, tone_confidence, emotional_valence, energy_level, formality_score, enthusiasm_score,
       nervousness_indicators, positive_indicators,
       confidence_score, speech_pace, filler_words_count, clarity_score, emotion_detected,
       volume_consistency, pronunciation_score, recommendations, analyzed_at
FROM voice_analysis
WHERE session_id=? ORDER BY response_index ASC;
`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Result
	for rows.Next() {
		a, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanResult(rows *sql.Rows) (*domain.Result, error) {
	var a domain.Result
	var nervous, positive, recs string
	if err := rows.Scan(
		&a.ID, &a.SessionID, &a.ResponseIndex, &a.AudioURL, &a.Transcript,
		&a.ToneAnalysis.PrimaryTone, &a.ToneAnalysis.ToneConfidence, &a.ToneAnalysis.EmotionalValence,
		&a.ToneAnalysis.EnergyLevel, &a.ToneAnalysis.FormalityScore, &a.ToneAnalysis.EnthusiasmScore,
		&nervous, &positive,
		&a.ConfidenceScore, &a.SpeechPace, &a.FillerWordsCount, &a.ClarityScore, &a.EmotionDetected,
		&a.VolumeConsistency, &a.PronunciationScore, &recs, &a.AnalyzedAt,
	); err != nil {
		return nil, err
	}
	a.ToneAnalysis.NervousnessIndicators = parseList(nervous)
	a.ToneAnalysis.PositiveIndicators = parseList(positive)
	a.Recommendations = parseList(recs)
	return &a, nil
}
