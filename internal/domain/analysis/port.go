package analysis

import (
	"context"
	"io"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, r *Result) error
	// ListBySession returns all results for a session ordered by
	// response_index ascending.
	ListBySession(ctx context.Context, sessionID string) ([]*Result, error)
}

// AudioStore port (interface untuk penyimpanan rekaman audio)
type AudioStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error)
}
