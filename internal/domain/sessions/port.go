package sessions

import "context"

// Repository port untuk session lifecycle
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, userID string, id SessionID) (*Session, error)
	// CompletedIDs returns up to limit completed session ids for the user,
	// excluding the given session.
	CompletedIDs(ctx context.Context, userID, excludeSessionID string, limit int) ([]string, error)
}
