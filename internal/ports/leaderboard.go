package ports

import "context"

// ScoreRecord is a final session result submitted to the leaderboard.
type ScoreRecord struct {
	UserID   string
	Username string
	Score    int64
	// Subscore breaks ties; lines cleared.
	Subscore int64
	Metadata map[string]interface{}
}

// LeaderboardPort defines the interface for publishing high scores.
type LeaderboardPort interface {
	// EnsureLeaderboard creates the leaderboard if it does not exist yet.
	EnsureLeaderboard(ctx context.Context) error

	// SubmitScore records a finished session. Only the best score per user is kept.
	SubmitScore(ctx context.Context, record ScoreRecord) error
}
