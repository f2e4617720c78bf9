package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/prepwise/voicelytics/internal/domain/coach"
)

type FeedbackRepository struct{ db *sql.DB }

func NewFeedbackRepository(db *sql.DB) *FeedbackRepository { return &FeedbackRepository{db: db} }

// Save inserts a coaching feedback record
func (r *FeedbackRepository) Save(ctx context.Context, f *domain.Feedback) error {
	const q = `
INSERT INTO coach_feedback
  (id, user_id, session_id, result_json, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
 user_id = EXCLUDED.user_id,
 session_id = EXCLUDED.session_id,
 result_json = EXCLUDED.result_json;`

	user := stringOrDash(f.UserID)
	session := stringOrDash(f.SessionID)
	result := f.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, f.ID, user, session, result, createdAt)
	return err
}

// Paginate returns a page of feedback records ordered by created_at desc
func (r *FeedbackRepository) Paginate(ctx context.Context, userID string, page, pageSize int) ([]*domain.Feedback, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, user_id, session_id, result_json, created_at
FROM coach_feedback
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;`

	rows, err := r.db.QueryContext(ctx, q, userID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.SessionID, &f.Result, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// LatestBySession returns the newest feedback for a session
func (r *FeedbackRepository) LatestBySession(ctx context.Context, userID, sessionID string) (*domain.Feedback, error) {
	const q = `
SELECT id, user_id, session_id, result_json, created_at
FROM coach_feedback
WHERE user_id=$1 AND session_id=$2
ORDER BY created_at DESC, id DESC
LIMIT 1;`

	row := r.db.QueryRowContext(ctx, q, userID, sessionID)
	var f domain.Feedback
	if err := row.Scan(&f.ID, &f.UserID, &f.SessionID, &f.Result, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
