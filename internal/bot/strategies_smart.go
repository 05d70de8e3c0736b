package bot

import (
	"math"

	"github.com/kamstrup/intmap"

	"blockblast/internal/bot/internal"
	"blockblast/internal/domain"
)

const smartCacheLimit = 1 << 16

// boardCache maps a board's occupancy to its evaluation, keyed on the low
// word first and the high word second so no two boards share an entry.
type boardCache struct {
	byLow *intmap.Map[uint64, *intmap.Map[uint64, float64]]
	size  int
}

func newBoardCache() *boardCache {
	return &boardCache{byLow: intmap.New[uint64, *intmap.Map[uint64, float64]](1024)}
}

func (c *boardCache) Get(lo, hi uint64) (float64, bool) {
	byHigh, ok := c.byLow.Get(lo)
	if !ok {
		return 0, false
	}
	return byHigh.Get(hi)
}

func (c *boardCache) Put(lo, hi uint64, v float64) {
	byHigh, ok := c.byLow.Get(lo)
	if !ok {
		byHigh = intmap.New[uint64, float64](4)
		c.byLow.Put(lo, byHigh)
	}
	if _, exists := byHigh.Get(hi); !exists {
		c.size++
	}
	byHigh.Put(hi, v)
}

func (c *boardCache) Len() int {
	return c.size
}

func (c *boardCache) Clear() {
	c.byLow.Clear()
	c.size = 0
}

// SmartBot searches every order of the remaining batch, keeping the best
// BeamWidth placements per level and placing at most MaxDepth pieces.
// Board evaluations are cached by occupancy.
type SmartBot struct {
	cache *boardCache
}

func NewSmartBot() *SmartBot {
	return &SmartBot{cache: newBoardCache()}
}

func (b *SmartBot) CalculateMove(game *domain.Game) (Move, error) {
	if game == nil || game.Phase != domain.PhasePlaying {
		return Move{}, ErrNoMove
	}
	if b.cache == nil {
		b.cache = newBoardCache()
	}
	if b.cache.Len() > smartCacheLimit {
		b.cache.Clear()
	}

	policy := game.Policy()
	scored := internal.BuildScoredMoves(game.Grid, internal.GetCandidates(game.Grid, game.Pieces), policy, smartBotTuning, b.evaluate)
	if len(scored) == 0 {
		return Move{}, ErrNoMove
	}

	best := math.Inf(-1)
	var choice internal.Candidate
	for _, sm := range beam(scored, smartBotTuning.BeamWidth) {
		rest := internal.Without(game.Pieces, sm.Candidate.PieceIndex)
		value := sm.Reward + b.search(sm.Outcome.Grid, rest, policy, 1)
		if value > best {
			best = value
			choice = sm.Candidate
		}
	}
	return toMove(choice), nil
}

// search returns the best value reachable by placing the remaining pieces.
// depth counts the pieces already placed on the way to grid. Past MaxDepth
// the board is scored as it stands, with the dead-end penalty applied when
// none of the remaining pieces fit.
func (b *SmartBot) search(grid domain.Grid, pieces []domain.Piece, policy domain.ScoringPolicy, depth int) float64 {
	if len(pieces) == 0 {
		return b.evaluate(grid)
	}
	if limit := smartBotTuning.MaxDepth; limit > 0 && depth >= limit {
		for _, p := range pieces {
			if domain.HasLegalOrigin(grid, p) {
				return b.evaluate(grid)
			}
		}
		return b.evaluate(grid) + smartBotTuning.DeadEndPenalty
	}

	scored := internal.BuildScoredMoves(grid, internal.GetCandidates(grid, pieces), policy, smartBotTuning, b.evaluate)
	if len(scored) == 0 {
		return b.evaluate(grid) + smartBotTuning.DeadEndPenalty
	}

	best := math.Inf(-1)
	for _, sm := range beam(scored, smartBotTuning.BeamWidth) {
		value := sm.Reward + b.search(sm.Outcome.Grid, internal.Without(pieces, sm.Candidate.PieceIndex), policy, depth+1)
		best = max(best, value)
	}
	return best
}

func (b *SmartBot) evaluate(grid domain.Grid) float64 {
	lo, hi := internal.BoardBits(grid)
	if v, ok := b.cache.Get(lo, hi); ok {
		return v
	}
	v := internal.EvaluateBoard(grid, smartBotTuning)
	b.cache.Put(lo, hi, v)
	return v
}

func beam(scored []internal.ScoredMove, width int) []internal.ScoredMove {
	if width > 0 && len(scored) > width {
		return scored[:width]
	}
	return scored
}
