package analysis

import (
	"time"
)

// ID tipe untuk Result
type ResultID string

// Tone enum
type Tone string

const (
	ToneNeutral      Tone = "neutral"
	TonePositive     Tone = "positive"
	ToneNegative     Tone = "negative"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneNervous      Tone = "nervous"
)

// Emotion labels, distinct from Tone: the tone is the delivery style,
// the emotion is the single label surfaced in summaries.
const (
	EmotionEnthusiastic = "enthusiastic"
	EmotionNervous      = "nervous"
	EmotionConfident    = "confident"
	EmotionUncertain    = "uncertain"
	EmotionEnergetic    = "energetic"
	EmotionCalm         = "calm"
	EmotionUnknown      = "unknown"
)

// ToneAnalysis value object, embedded di Result
type ToneAnalysis struct {
	PrimaryTone           Tone     `json:"primary_tone"`
	ToneConfidence        float64  `json:"tone_confidence"`
	EmotionalValence      float64  `json:"emotional_valence"`
	EnergyLevel           float64  `json:"energy_level"`
	FormalityScore        float64  `json:"formality_score"`
	EnthusiasmScore       float64  `json:"enthusiasm_score"`
	NervousnessIndicators []string `json:"nervousness_indicators"`
	PositiveIndicators    []string `json:"positive_indicators"`
}

// Aggregate Root: Result
//
// One Result per candidate response within a session. Scores are clamped to
// [0,100]. Volume, pronunciation and pace are text-derived proxy metrics
// estimated from the transcript, not actual acoustic measurements.
type Result struct {
	ID                 ResultID     `json:"id"`
	SessionID          string       `json:"session_id"`
	ResponseIndex      int          `json:"response_index"`
	AudioURL           string       `json:"audio_url,omitempty"`
	Transcript         string       `json:"transcript"`
	ToneAnalysis       ToneAnalysis `json:"tone_analysis"`
	ConfidenceScore    float64      `json:"confidence_score"`
	SpeechPace         int          `json:"speech_pace"`
	FillerWordsCount   int          `json:"filler_words_count"`
	ClarityScore       float64      `json:"clarity_score"`
	EmotionDetected    string       `json:"emotion_detected"`
	VolumeConsistency  float64      `json:"volume_consistency"`
	PronunciationScore float64      `json:"pronunciation_score"`
	Recommendations    []string     `json:"recommendations"`
	AnalyzedAt         time.Time    `json:"analyzed_at"`
}
