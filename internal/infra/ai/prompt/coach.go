package prompt

import (
	"fmt"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior interview coach. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Base every observation strictly on the metrics provided; do not invent transcript content.
- strengths and improvements are arrays of short, concrete items (max 5 each).
- overall_assessment is 2-3 sentences in second person.
- practice_plan is an ordered list of exercises the candidate can do before the next session.

Schema (example with empty values):
{
  "overall_assessment": "<string>",
  "strengths": ["<string>"],
  "improvements": ["<string>"],
  "practice_plan": ["<string>"],
  "encouragement": "<string>"
}`
}

// GetUserPrompt builds a compact user message around the aggregated session metrics.
func GetUserPrompt(summaryJSON string) string {
	return fmt.Sprintf("Here are the aggregated voice metrics for one interview session. Respond with the JSON per schema. Metrics: %s", summaryJSON)
}

// CoachingNote is a sample structure that matches the schema used by the system prompt.
type CoachingNote struct {
	OverallAssessment string   `json:"overall_assessment"`
	Strengths         []string `json:"strengths"`
	Improvements      []string `json:"improvements"`
	PracticePlan      []string `json:"practice_plan"`
	Encouragement     string   `json:"encouragement"`
}
