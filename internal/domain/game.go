package domain

// RejectReason explains why a placement was refused.
type RejectReason string

const (
	RejectNotPlaying      RejectReason = "not_playing"
	RejectUnknownPiece    RejectReason = "unknown_piece"
	RejectIllegalPosition RejectReason = "illegal_position"
)

// Placement is the outcome of Game.PlacePiece.
// When Accepted is false only Reason, Piece, X and Y are meaningful.
type Placement struct {
	Accepted     bool
	Reason       RejectReason
	Piece        Piece
	X            int
	Y            int
	Cleared      []ClearedLine
	ClearedCells []ClearedCell
	Points       int
	Refilled     bool
	GameOver     bool
}

// Game is an explicitly owned Block Blast session.
// It is not safe for concurrent use.
type Game struct {
	Phase        Phase
	Grid         Grid
	Score        int
	LinesCleared int
	Pieces       []Piece

	// Moves counts successful placements since the last start.
	Moves int
	// BestCombo is the largest number of lines cleared by a single placement.
	BestCombo int

	catalog       *Catalog
	policy        ScoringPolicy
	batchSize     int
	allowRotation bool
}

// GameOption customises a Game at construction.
type GameOption func(*Game)

// WithBatchSize overrides the number of pieces issued per batch.
func WithBatchSize(n int) GameOption {
	return func(g *Game) {
		if n > 0 {
			g.batchSize = n
		}
	}
}

// WithRotation enables Game.RotatePiece.
func WithRotation(enabled bool) GameOption {
	return func(g *Game) {
		g.allowRotation = enabled
	}
}

// NewGame returns a session in the ready phase. A nil catalog gets a time-seeded one
// and a nil policy selects ComboScoring.
func NewGame(catalog *Catalog, policy ScoringPolicy, opts ...GameOption) *Game {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	if policy == nil {
		policy = ComboScoring{}
	}
	g := &Game{
		Phase:     PhaseReady,
		catalog:   catalog,
		policy:    policy,
		batchSize: BatchSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start resets every field and deals a fresh batch. It is valid from any phase.
func (g *Game) Start() {
	g.Phase = PhasePlaying
	g.Grid = NewGrid()
	g.Score = 0
	g.LinesCleared = 0
	g.Moves = 0
	g.BestCombo = 0
	g.Pieces = g.catalog.GeneratePieces(g.batchSize)
}

// Restart is an alias of Start.
func (g *Game) Restart() {
	g.Start()
}

// BatchSize returns the number of pieces issued per refill.
func (g *Game) BatchSize() int {
	return g.batchSize
}

// Policy returns the scoring policy the game was built with.
func (g *Game) Policy() ScoringPolicy {
	return g.policy
}

// RotationEnabled reports whether RotatePiece is allowed.
func (g *Game) RotationEnabled() bool {
	return g.allowRotation
}

// PieceByID returns the active piece with the given id.
func (g *Game) PieceByID(id string) (Piece, bool) {
	if i := g.pieceIndex(id); i >= 0 {
		return g.Pieces[i], true
	}
	return Piece{}, false
}

func (g *Game) pieceIndex(id string) int {
	for i, p := range g.Pieces {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// PlacePiece places the active piece with piece.ID at (x, y).
// The active copy of the piece is used; the caller's blocks are ignored.
// A rejected placement leaves the game untouched.
func (g *Game) PlacePiece(piece Piece, x, y int) Placement {
	result := Placement{Piece: piece, X: x, Y: y}

	if g.Phase != PhasePlaying {
		result.Reason = RejectNotPlaying
		return result
	}
	idx := g.pieceIndex(piece.ID)
	if idx < 0 {
		result.Reason = RejectUnknownPiece
		return result
	}
	active := g.Pieces[idx]
	result.Piece = active
	if !CanPlace(g.Grid, active, x, y) {
		result.Reason = RejectIllegalPosition
		return result
	}

	placed := Place(g.Grid, active, x, y)
	cleared, next := ClearLines(placed)
	points := g.policy.Score(cleared, active.Size())

	result.Accepted = true
	result.Cleared = cleared
	result.ClearedCells = ClearedCells(placed, cleared)
	result.Points = points

	g.Grid = next
	g.Score += points
	g.LinesCleared += len(cleared)
	g.Moves++
	g.BestCombo = max(g.BestCombo, len(cleared))

	g.Pieces = append(g.Pieces[:idx:idx], g.Pieces[idx+1:]...)
	if len(g.Pieces) == 0 {
		g.Pieces = g.catalog.GeneratePieces(g.batchSize)
		result.Refilled = true
	}

	if !g.HasValidMove() {
		g.Phase = PhaseGameOver
		result.GameOver = true
	}

	return result
}

// HasValidMove reports whether any active piece fits at any of the N² origins.
func (g *Game) HasValidMove() bool {
	for _, p := range g.Pieces {
		if HasLegalOrigin(g.Grid, p) {
			return true
		}
	}
	return false
}

// RotatePiece replaces the active piece with its quarter-turn rotation.
// It fails when rotation is disabled, the game is not playing or the id is unknown.
func (g *Game) RotatePiece(id string) (Piece, bool) {
	if !g.allowRotation || g.Phase != PhasePlaying {
		return Piece{}, false
	}
	idx := g.pieceIndex(id)
	if idx < 0 {
		return Piece{}, false
	}
	rotated := RotatePiece(g.Pieces[idx])
	pieces := make([]Piece, len(g.Pieces))
	copy(pieces, g.Pieces)
	pieces[idx] = rotated
	g.Pieces = pieces
	return rotated, true
}

// Snapshot is a read-only copy of the session for renderers.
type Snapshot struct {
	Phase        Phase
	Grid         Grid
	Score        int
	LinesCleared int
	Pieces       []Piece
	Moves        int
	BestCombo    int
}

// Snapshot returns a deep copy of the observable state.
func (g *Game) Snapshot() Snapshot {
	pieces := make([]Piece, len(g.Pieces))
	for i, p := range g.Pieces {
		pieces[i] = p.Clone()
	}
	return Snapshot{
		Phase:        g.Phase,
		Grid:         g.Grid,
		Score:        g.Score,
		LinesCleared: g.LinesCleared,
		Pieces:       pieces,
		Moves:        g.Moves,
		BestCombo:    g.BestCombo,
	}
}
