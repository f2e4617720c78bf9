package coach

import "context"

// Repository port for persisting and querying coaching feedback
type Repository interface {
	Save(ctx context.Context, f *Feedback) error
	Paginate(ctx context.Context, userID string, page, pageSize int) ([]*Feedback, error)
	LatestBySession(ctx context.Context, userID, sessionID string) (*Feedback, error)
}
