package ai

import "context"

// Client generates coaching feedback from a session summary. The summary is
// the JSON-encoded output of the rule-based aggregator; the client must
// return a single JSON object.
type Client interface {
	Coach(ctx context.Context, summaryJSON string) (string, error)
}
