package coach

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prepwise/voicelytics/internal/application"
	"github.com/prepwise/voicelytics/internal/domain/ai"
	"github.com/prepwise/voicelytics/internal/domain/coach"
)

// Service generates AI coaching feedback from an aggregated session summary
// and stores it for retrieval. The rule-based scoring never depends on this;
// feedback is a layer on top of the deterministic analytics.
type Service struct {
	Client ai.Client
	Repo   coach.Repository
	Clock  application.Clock
}

// CoachAndStore calls the AI client with the summary JSON and persists the
// returned feedback document.
func (s *Service) CoachAndStore(ctx context.Context, userID, sessionID, summaryJSON string) (*coach.Feedback, error) {
	result, err := s.Client.Coach(ctx, summaryJSON)
	if err != nil {
		return nil, err
	}

	f := &coach.Feedback{
		ID:        coach.FeedbackID(uuid.New().String()),
		UserID:    userID,
		SessionID: sessionID,
		Result:    result,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save coaching feedback: %w", err)
	}
	return f, nil
}

// ListFeedback returns a page of stored feedback for the user
func (s *Service) ListFeedback(ctx context.Context, userID string, page, pageSize int) ([]*coach.Feedback, error) {
	return s.Repo.Paginate(ctx, userID, page, pageSize)
}

// LatestBySession returns the newest feedback for one session
func (s *Service) LatestBySession(ctx context.Context, userID, sessionID string) (*coach.Feedback, error) {
	return s.Repo.LatestBySession(ctx, userID, sessionID)
}
