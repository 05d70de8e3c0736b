package nakama

import (
	"context"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"

	"blockblast/internal/ports"
)

// leaderboardAPI is the subset of runtime.NakamaModule the adapter needs.
type leaderboardAPI interface {
	LeaderboardCreate(ctx context.Context, id string, authoritative bool, sortOrder, operator, resetSchedule string, metadata map[string]interface{}, enableRanks bool) error
	LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*api.LeaderboardRecord, error)
}

// NakamaLeaderboardAdapter implements ports.LeaderboardPort using a Nakama leaderboard.
type NakamaLeaderboardAdapter struct {
	nk            leaderboardAPI
	id            string
	resetSchedule string
}

// NewNakamaLeaderboardAdapter creates a new leaderboard adapter.
func NewNakamaLeaderboardAdapter(nk leaderboardAPI, id, resetSchedule string) *NakamaLeaderboardAdapter {
	return &NakamaLeaderboardAdapter{
		nk:            nk,
		id:            id,
		resetSchedule: resetSchedule,
	}
}

// EnsureLeaderboard creates an authoritative, descending, best-score leaderboard.
// Nakama treats creating an existing leaderboard as a no-op.
func (a *NakamaLeaderboardAdapter) EnsureLeaderboard(ctx context.Context) error {
	metadata := map[string]interface{}{"game": GameName}
	if err := a.nk.LeaderboardCreate(ctx, a.id, true, "desc", "best", a.resetSchedule, metadata, true); err != nil {
		return fmt.Errorf("failed to create leaderboard %s: %w", a.id, err)
	}
	return nil
}

// SubmitScore writes a final score. Zero scores are skipped.
func (a *NakamaLeaderboardAdapter) SubmitScore(ctx context.Context, record ports.ScoreRecord) error {
	if record.UserID == "" {
		return fmt.Errorf("userID is required")
	}
	if record.Score <= 0 {
		return nil
	}
	if _, err := a.nk.LeaderboardRecordWrite(ctx, a.id, record.UserID, record.Username, record.Score, record.Subscore, record.Metadata, nil); err != nil {
		return fmt.Errorf("failed to write leaderboard record for user %s: %w", record.UserID, err)
	}
	return nil
}
