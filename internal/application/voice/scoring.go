package voice

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/prepwise/voicelytics/internal/domain/analysis"
)

// Rule-based scoring over transcript text. Volume, pronunciation and pace
// are proxy metrics estimated from the transcript alone — there is no
// acoustic signal in this service.

var fillerWords = []string{
	"um", "uh", "like", "you know", "actually", "basically", "literally",
	"sort of", "kind of", "i mean", "right", "okay", "so", "well",
}

var (
	highConfidenceKeywords = []string{"definitely", "certainly", "confident", "sure", "absolutely", "clearly", "obviously"}
	lowConfidenceKeywords  = []string{"maybe", "perhaps", "i think", "i guess", "probably", "might", "could be", "not sure"}
)

var (
	positiveWords     = []string{"excellent", "great", "good", "effective", "successful", "achieved", "improved", "optimized"}
	negativeWords     = []string{"difficult", "challenging", "problem", "issue", "failed", "struggled"}
	enthusiasticWords = []string{"excited", "passionate", "love", "amazing", "fantastic", "incredible"}
	nervousIndicators = []string{"um", "uh", "sorry", "i mean", "actually", "just"}
)

var (
	formalWords   = []string{"therefore", "however", "furthermore", "consequently", "moreover", "nevertheless"}
	informalWords = []string{"gonna", "wanna", "yeah", "yep", "nope", "stuff", "things", "guys"}
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	pauseMarkerRe   = regexp.MustCompile(`[,;]|\.{2,}|\s{2,}`)
	contractionRe   = regexp.MustCompile(`\w+'\w+`)
	properNounRe    = regexp.MustCompile(`[A-Z][a-z]+`)
)

// whole-word matchers, one per filler phrase
var fillerRes = compileFillerRes()

func compileFillerRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(fillerWords))
	for _, f := range fillerWords {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(f)+`\b`))
	}
	return res
}

// SpeechMetrics is ephemeral: computed per transcript, folded into the
// result, never persisted as-is.
type SpeechMetrics struct {
	WordsPerMinute       int
	PauseFrequency       float64
	AveragePauseDuration float64
	SentenceComplexity   float64
	VocabularyRichness   float64
}

func splitWords(transcript string) []string {
	return strings.Fields(strings.ToLower(transcript))
}

// splitSentences returns the raw segments between [.!?]+ runs, keeping
// surrounding whitespace, dropping blank segments.
func splitSentences(transcript string) []string {
	var out []string
	for _, s := range sentenceSplitRe.Split(transcript, -1) {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func countMatches(words, lexicon []string) int {
	n := 0
	for _, w := range words {
		if containsWord(lexicon, w) {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func analyzeTone(transcript string) analysis.ToneAnalysis {
	words := splitWords(transcript)
	sentences := splitSentences(transcript)
	wordCount := len(words)
	sentenceCount := len(sentences)

	positiveCount := countMatches(words, positiveWords)
	negativeCount := countMatches(words, negativeWords)
	enthusiasticCount := countMatches(words, enthusiasticWords)
	nervousCount := countMatches(words, nervousIndicators)

	// ratio terms are zero when the transcript has no words/sentences
	var valence float64
	if wordCount > 0 {
		valence = (float64(positiveCount-negativeCount) / float64(wordCount)) * 100
	}
	energyLevel := 50.0
	if sentenceCount > 0 {
		energyLevel = math.Min(100, (float64(enthusiasticCount)/float64(sentenceCount))*100+50)
	}
	var enthusiasmScore float64
	if wordCount > 0 {
		enthusiasmScore = math.Min(100, (float64(enthusiasticCount)/float64(wordCount))*1000)
	}

	// precedence matters: later checks win
	primaryTone := analysis.ToneNeutral
	if valence > 10 {
		primaryTone = analysis.TonePositive
	} else if valence < -10 {
		primaryTone = analysis.ToneNegative
	}
	if enthusiasmScore > 60 {
		primaryTone = analysis.ToneEnthusiastic
	}
	if float64(nervousCount) > float64(wordCount)*0.05 {
		primaryTone = analysis.ToneNervous
	}

	nervousFound := make([]string, 0)
	for _, w := range nervousIndicators {
		if containsWord(words, w) {
			nervousFound = append(nervousFound, w)
		}
	}
	positiveFound := make([]string, 0)
	for _, w := range positiveWords {
		if containsWord(words, w) {
			positiveFound = append(positiveFound, w)
		}
	}

	return analysis.ToneAnalysis{
		PrimaryTone:           primaryTone,
		ToneConfidence:        math.Min(100, math.Abs(valence)*2+50),
		EmotionalValence:      clamp(valence+50, 0, 100),
		EnergyLevel:           energyLevel,
		FormalityScore:        formalityScore(transcript),
		EnthusiasmScore:       enthusiasmScore,
		NervousnessIndicators: nervousFound,
		PositiveIndicators:    positiveFound,
	}
}

func confidenceScore(transcript string, tone analysis.ToneAnalysis) float64 {
	words := splitWords(transcript)
	wordCount := len(words)

	highCount := 0
	lowCount := 0
	for _, w := range words {
		for _, kw := range highConfidenceKeywords {
			if strings.Contains(w, kw) {
				highCount++
				break
			}
		}
		for _, kw := range lowConfidenceKeywords {
			if strings.Contains(w, kw) {
				lowCount++
				break
			}
		}
	}

	var fillerRatio float64
	if wordCount > 0 {
		fillerRatio = float64(countFillerWords(transcript)) / float64(wordCount)
	}
	sentenceCount := len(splitSentences(transcript))
	var avgWordsPerSentence float64
	if sentenceCount > 0 {
		avgWordsPerSentence = float64(wordCount) / float64(sentenceCount)
	}

	score := 70.0
	score += float64(highCount) * 5
	score -= float64(lowCount) * 5
	score -= fillerRatio * 100

	if avgWordsPerSentence > 15 && avgWordsPerSentence < 25 {
		score += 10
	}
	if tone.PrimaryTone == analysis.TonePositive || tone.PrimaryTone == analysis.ToneEnthusiastic {
		score += 10
	}
	if tone.PrimaryTone == analysis.ToneNervous {
		score -= 15
	}

	return clamp(score, 0, 100)
}

func speechMetrics(transcript string) SpeechMetrics {
	words := strings.Fields(transcript)
	sentences := splitSentences(transcript)
	wordCount := len(words)
	sentenceCount := len(sentences)

	// Duration is inferred from the word count at an assumed 150 wpm, so the
	// estimate collapses back to ~150 for any transcript longer than the
	// 0.5-minute floor. A true pacing metric needs a measured duration the
	// transcript does not carry.
	var wordsPerMinute float64
	if wordCount > 0 {
		estimatedMinutes := math.Max(float64(wordCount)/150, 0.5)
		wordsPerMinute = float64(wordCount) / estimatedMinutes
	}

	pauseMarkers := pauseMarkerRe.FindAllString(transcript, -1)
	var pauseFrequency float64
	if sentenceCount > 0 {
		pauseFrequency = float64(len(pauseMarkers)) / float64(sentenceCount)
	}

	unique := make(map[string]struct{}, wordCount)
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}
	var vocabularyRichness float64
	if wordCount > 0 {
		vocabularyRichness = (float64(len(unique)) / float64(wordCount)) * 100
	}

	var sentenceComplexity float64
	if sentenceCount > 0 {
		avgWordsPerSentence := float64(wordCount) / float64(sentenceCount)
		sentenceComplexity = math.Min(100, (avgWordsPerSentence/20)*100)
	}

	return SpeechMetrics{
		WordsPerMinute:       int(math.Round(wordsPerMinute)),
		PauseFrequency:       pauseFrequency,
		AveragePauseDuration: 1.5,
		SentenceComplexity:   sentenceComplexity,
		VocabularyRichness:   vocabularyRichness,
	}
}

func countFillerWords(transcript string) int {
	text := strings.ToLower(transcript)
	n := 0
	for _, re := range fillerRes {
		n += len(re.FindAllString(text, -1))
	}
	return n
}

func clarityScore(transcript string, m SpeechMetrics) float64 {
	score := 70.0

	if m.WordsPerMinute >= 120 && m.WordsPerMinute <= 160 {
		score += 15
	} else if m.WordsPerMinute < 100 || m.WordsPerMinute > 180 {
		score -= 10
	}

	score += math.Min(15, m.VocabularyRichness/2)

	if m.SentenceComplexity > 30 && m.SentenceComplexity < 70 {
		score += 10
	}

	wordCount := len(strings.Fields(transcript))
	if wordCount > 0 {
		fillerRatio := float64(countFillerWords(transcript)) / float64(wordCount)
		score -= fillerRatio * 100
	}

	return clamp(score, 0, 100)
}

func formalityScore(transcript string) float64 {
	words := splitWords(transcript)
	formalCount := countMatches(words, formalWords)
	informalCount := countMatches(words, informalWords)
	contractions := contractionRe.FindAllString(transcript, -1)

	score := 50.0
	score += float64(formalCount) * 10
	score -= float64(informalCount) * 10
	score -= float64(len(contractions)) * 2

	return clamp(score, 0, 100)
}

func detectEmotion(tone analysis.ToneAnalysis) string {
	switch {
	case tone.EnthusiasmScore > 70:
		return analysis.EmotionEnthusiastic
	case len(tone.NervousnessIndicators) > 5:
		return analysis.EmotionNervous
	case tone.EmotionalValence > 60:
		return analysis.EmotionConfident
	case tone.EmotionalValence < 40:
		return analysis.EmotionUncertain
	case tone.EnergyLevel > 70:
		return analysis.EmotionEnergetic
	default:
		return analysis.EmotionCalm
	}
}

// estimateVolumeConsistency: proxy over the variance of sentence lengths
func estimateVolumeConsistency(transcript string) float64 {
	sentences := splitSentences(transcript)
	lengths := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		lengths = append(lengths, float64(len(s)))
	}
	return math.Round(math.Max(0, 100-variance(lengths)/10))
}

// estimatePronunciationScore: proxy over word length and capitalization
func estimatePronunciationScore(transcript string) float64 {
	words := strings.Fields(transcript)
	complexWords := 0
	for _, w := range words {
		if len(w) > 8 {
			complexWords++
		}
	}

	score := 85.0
	if len(words) > 0 && float64(complexWords)/float64(len(words)) > 0.2 {
		score += 10
	}
	if len(properNounRe.FindAllString(transcript, -1)) > 0 {
		score += 5
	}

	return math.Min(100, score)
}

func variance(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	mean := 0.0
	for _, n := range nums {
		mean += n
	}
	mean /= float64(len(nums))

	sum := 0.0
	for _, n := range nums {
		sum += (n - mean) * (n - mean)
	}
	return sum / float64(len(nums))
}

// buildRecommendations: fixed checklist, order is part of the contract
func buildRecommendations(tone analysis.ToneAnalysis, confidence float64, m SpeechMetrics, fillerCount int, clarity float64) []string {
	var recs []string

	if confidence < 60 {
		recs = append(recs, `Practice speaking with more assertive language. Replace phrases like "I think" with "I believe" or "I'm confident that".`)
	}
	if fillerCount > 5 {
		recs = append(recs, fmt.Sprintf(`Reduce filler words (found %d). Pause briefly instead of using "um" or "like".`, fillerCount))
	}
	if m.WordsPerMinute < 120 {
		recs = append(recs, "Increase your speaking pace slightly. Aim for 130-150 words per minute for better engagement.")
	} else if m.WordsPerMinute > 170 {
		recs = append(recs, "Slow down your speaking pace. Take brief pauses between key points for emphasis.")
	}
	if len(tone.NervousnessIndicators) > 5 {
		recs = append(recs, "Practice deep breathing before responses. Your tone shows some nervousness indicators.")
	}
	if tone.EnthusiasmScore < 40 {
		recs = append(recs, "Show more enthusiasm in your responses. Vary your tone to emphasize key achievements.")
	}
	if clarity < 70 {
		recs = append(recs, "Improve clarity by organizing thoughts before speaking. Use the STAR method for structured responses.")
	}
	if m.VocabularyRichness < 40 {
		recs = append(recs, "Expand your vocabulary usage. Use more varied and precise technical terms.")
	}
	if tone.FormalityScore < 50 {
		recs = append(recs, "Maintain professional language. Avoid contractions and informal expressions in interviews.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Excellent voice delivery! Maintain this level of confidence and clarity.")
	}
	return recs
}
