package sessions

import "time"

// ID tipe untuk Session
type SessionID string

// Status enum
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Session: one complete interview attempt containing an ordered sequence
// of responses.
type Session struct {
	ID          SessionID `json:"id"`
	UserID      string    `json:"user_id"`
	Role        string    `json:"role,omitempty"`
	Status      Status    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}
