package ports

import "context"

// GameResult summarises one finished session for a user.
type GameResult struct {
	UserID       string
	Score        int
	LinesCleared int
	Moves        int
	BestCombo    int
}

// PlayerStats are lifetime totals kept per user.
type PlayerStats struct {
	GamesPlayed int64 `json:"games_played"`
	BestScore   int64 `json:"best_score"`
	TotalScore  int64 `json:"total_score"`
	TotalLines  int64 `json:"total_lines"`
	TotalMoves  int64 `json:"total_moves"`
	BestCombo   int   `json:"best_combo"`
}

// Add folds a result into the totals.
func (s PlayerStats) Add(r GameResult) PlayerStats {
	s.GamesPlayed++
	s.TotalScore += int64(r.Score)
	s.TotalLines += int64(r.LinesCleared)
	s.TotalMoves += int64(r.Moves)
	s.BestScore = max(s.BestScore, int64(r.Score))
	s.BestCombo = max(s.BestCombo, r.BestCombo)
	return s
}

// StatsPort persists per-user lifetime statistics.
type StatsPort interface {
	// RecordGame merges a result into the user's stats and returns the new totals.
	RecordGame(ctx context.Context, result GameResult) (PlayerStats, error)
}
