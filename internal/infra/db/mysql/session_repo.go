package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/prepwise/voicelytics/internal/domain/sessions"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save insert/update interview session
func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) error {
	const q = `
INSERT INTO interview_sessions
(id, user_id, role, status, started_at, completed_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status), completed_at=VALUES(completed_at);
`
	user := stringOrDash(s.UserID)
	status := stringOrDash(string(s.Status))
	started := s.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	var completed sql.NullTime
	if !s.CompletedAt.IsZero() {
		completed = sql.NullTime{Time: s.CompletedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, q, s.ID, user, s.Role, status, started, completed)
	return err
}

// Get by ID + user
func (r *SessionRepository) Get(ctx context.Context, userID string, id domain.SessionID) (*domain.Session, error) {
	const q = `
SELECT id, user_id, role, status, started_at, completed_at
FROM interview_sessions
WHERE user_id=? AND id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, userID, id)

	var s domain.Session
	var completed sql.NullTime
	if err := row.Scan(&s.ID, &s.UserID, &s.Role, &s.Status, &s.StartedAt, &completed); err != nil {
		return nil, err
	}
	if completed.Valid {
		s.CompletedAt = completed.Time
	}
	return &s, nil
}

// CompletedIDs returns ids of completed sessions for the user, excluding the
// given session, capped at limit
func (r *SessionRepository) CompletedIDs(ctx context.Context, userID, excludeSessionID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT id
FROM interview_sessions
WHERE user_id=? AND id<>? AND status='completed'
ORDER BY started_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, userID, excludeSessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
