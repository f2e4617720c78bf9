package postgres

import (
	"context"
	"database/sql"

	domain "github.com/prepwise/voicelytics/internal/domain/analysis"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

// Save insert voice analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Result) error {
	const q = `
INSERT INTO voice_analysis
(id, session_id, response_index, audio_url, transcript,
 primary_tone, tone_confidence, emotional_valence, energy_level, formality_score, enthusiasm_score,
 nervousness_indicators, positive_indicators,
 confidence_score, speech_pace, filler_words_count, clarity_score, emotion_detected,
 volume_consistency, pronunciation_score, recommendations, analyzed_at)
VALUES ($1,$2,$3,$4,$5,
        $6,$7,$8,$9,$10,$11,
        $12,$13,
        $14,$15,$16,$17,$18,
        $19,$20,$21,$22)
ON CONFLICT (session_id, response_index) DO UPDATE SET
 audio_url = EXCLUDED.audio_url,
 transcript = EXCLUDED.transcript,
 primary_tone = EXCLUDED.primary_tone,
 tone_confidence = EXCLUDED.tone_confidence,
 emotional_valence = EXCLUDED.emotional_valence,
 energy_level = EXCLUDED.energy_level,
 formality_score = EXCLUDED.formality_score,
 enthusiasm_score = EXCLUDED.enthusiasm_score,
 nervousness_indicators = EXCLUDED.nervousness_indicators,
 positive_indicators = EXCLUDED.positive_indicators,
 confidence_score = EXCLUDED.confidence_score,
 speech_pace = EXCLUDED.speech_pace,
 filler_words_count = EXCLUDED.filler_words_count,
 clarity_score = EXCLUDED.clarity_score,
 emotion_detected = EXCLUDED.emotion_detected,
 volume_consistency = EXCLUDED.volume_consistency,
 pronunciation_score = EXCLUDED.pronunciation_score,
 recommendations = EXCLUDED.recommendations;`

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
WHERE session_id=$1
ORDER BY response_index ASC;`

	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Result
	for rows.Next() {
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
		out = append(out, &a)
	}
	return out, rows.Err()
}
