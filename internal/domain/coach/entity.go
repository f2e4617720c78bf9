package coach

import "time"

// FeedbackID identifier type
type FeedbackID string

// Feedback represents an AI coaching result stored for auditing and retrieval
type Feedback struct {
	ID        FeedbackID `json:"id"`
	UserID    string     `json:"user_id"`
	SessionID string     `json:"session_id"`
	Result    string     `json:"result"` // JSON string from AI
	CreatedAt time.Time  `json:"created_at"`
}
