package internal

import (
	"sort"

	"blockblast/internal/domain"
)

// PhaseWeights tune board scoring for a specific phase.
type PhaseWeights struct {
	PointsWeight    float64
	FilledWeight    float64
	HoleWeight      float64
	NearFullWeight  float64
	RoughnessWeight float64
	LargeFitWeight  float64
	ClearBonus      float64
}

// BotTuning defines phase weights and search limits for a bot difficulty.
type BotTuning struct {
	Open           PhaseWeights
	Crowded        PhaseWeights
	Critical       PhaseWeights
	DeadEndPenalty float64
	BeamWidth      int
	// MaxDepth caps how many pieces a search places; 0 means no cap.
	MaxDepth int
}

// ForPhase returns the weights that match the supplied phase.
func (t BotTuning) ForPhase(phase BoardPhase) PhaseWeights {
	switch phase {
	case PhaseOpen:
		return t.Open
	case PhaseCritical:
		return t.Critical
	default:
		return t.Crowded
	}
}

// ScoreProfile weighs a board profile. Points are scored separately.
func ScoreProfile(p BoardProfile, w PhaseWeights) float64 {
	return w.FilledWeight*float64(p.Filled) +
		w.HoleWeight*float64(p.Holes) +
		w.NearFullWeight*float64(p.NearFullLines) +
		w.RoughnessWeight*float64(p.Roughness) +
		w.LargeFitWeight*float64(p.LargeFits)
}

// ScoredMove holds a candidate with its computed score and simulated outcome.
// Score is Reward plus Board.
type ScoredMove struct {
	Candidate Candidate
	Outcome   Outcome
	Reward    float64
	Board     float64
	Score     float64
}

// BoardEvaluator scores a grid. Higher is better.
type BoardEvaluator func(domain.Grid) float64

// Reward returns the immediate value of an outcome reached from before.
func Reward(before domain.Grid, o Outcome, tuning BotTuning) float64 {
	w := tuning.ForPhase(DetectPhase(before.Filled()))
	return w.PointsWeight*float64(o.Points) + w.ClearBonus*float64(o.Lines)
}

// BuildScoredMoves simulates and scores each candidate, best first. Ties keep
// generation order. A nil eval uses EvaluateBoard with tuning.
func BuildScoredMoves(grid domain.Grid, candidates []Candidate, policy domain.ScoringPolicy, tuning BotTuning, eval BoardEvaluator) []ScoredMove {
	if eval == nil {
		eval = func(g domain.Grid) float64 { return EvaluateBoard(g, tuning) }
	}
	scored := make([]ScoredMove, 0, len(candidates))
	for _, c := range candidates {
		o := Apply(grid, c, policy)
		reward := Reward(grid, o, tuning)
		board := eval(o.Grid)
		scored = append(scored, ScoredMove{
			Candidate: c,
			Outcome:   o,
			Reward:    reward,
			Board:     board,
			Score:     reward + board,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
