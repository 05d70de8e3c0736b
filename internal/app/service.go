package app

import (
	"math/rand"
	"time"

	"blockblast/internal/domain"
)

// Service contains Block Blast use-cases operating on domain state.
type Service struct {
	rng      *rand.Rand
	policy   domain.ScoringPolicy
	gameOpts []domain.GameOption
}

// Option customises a Service.
type Option func(*Service)

// WithScoringPolicy selects the scoring policy for new games.
func WithScoringPolicy(p domain.ScoringPolicy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithBatchSize overrides the number of pieces dealt per batch.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		s.gameOpts = append(s.gameOpts, domain.WithBatchSize(n))
	}
}

// WithRotation allows players to rotate active pieces.
func WithRotation(enabled bool) Option {
	return func(s *Service) {
		s.gameOpts = append(s.gameOpts, domain.WithRotation(enabled))
	}
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, opts ...Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Service{rng: rng, policy: domain.ComboScoring{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartGame creates a session and deals the first batch.
// Each game gets its own catalog drawn from the service rng.
func (s *Service) StartGame() (*domain.Game, []Event) {
	catalog := domain.NewCatalog(rand.New(rand.NewSource(s.rng.Int63())))
	game := domain.NewGame(catalog, s.policy, s.gameOpts...)
	game.Start()
	return game, []Event{startedEvent(game)}
}

// RestartGame resets an existing session from any phase.
func (s *Service) RestartGame(game *domain.Game) []Event {
	game.Restart()
	return []Event{startedEvent(game)}
}

// PlacePiece places the active piece pieceID at (x, y) and returns the resulting events.
// A rejected placement yields a single placement_rejected event.
func (s *Service) PlacePiece(game *domain.Game, pieceID string, x, y int) (bool, []Event) {
	placed := game.PlacePiece(domain.Piece{ID: pieceID}, x, y)
	if !placed.Accepted {
		return false, []Event{{
			Kind: EventPlacementRejected,
			Payload: PlacementRejectedPayload{
				PieceID: pieceID,
				X:       x,
				Y:       y,
				Reason:  placed.Reason,
			},
		}}
	}

	events := []Event{{
		Kind: EventPiecePlaced,
		Payload: PiecePlacedPayload{
			Piece:  placed.Piece,
			X:      placed.X,
			Y:      placed.Y,
			Points: placed.Points,
			Score:  game.Score,
		},
	}}

	if len(placed.Cleared) > 0 {
		events = append(events, Event{
			Kind: EventLinesCleared,
			Payload: LinesClearedPayload{
				Lines:        placed.Cleared,
				Cells:        placed.ClearedCells,
				Effect:       EffectTierFor(len(placed.Cleared)),
				LinesCleared: game.LinesCleared,
			},
		})
	}

	if placed.Refilled {
		events = append(events, Event{
			Kind:    EventPiecesRefilled,
			Payload: PiecesRefilledPayload{Pieces: game.Snapshot().Pieces},
		})
	}

	if placed.GameOver {
		events = append(events, Event{
			Kind: EventGameOver,
			Payload: GameOverPayload{
				Score:        game.Score,
				LinesCleared: game.LinesCleared,
				Moves:        game.Moves,
				BestCombo:    game.BestCombo,
			},
		})
	}

	return true, events
}

// RotatePiece turns the active piece pieceID a quarter turn clockwise.
func (s *Service) RotatePiece(game *domain.Game, pieceID string) (bool, []Event) {
	rotated, ok := game.RotatePiece(pieceID)
	if !ok {
		return false, nil
	}
	return true, []Event{{
		Kind:    EventPieceRotated,
		Payload: PieceRotatedPayload{Piece: rotated.Clone()},
	}}
}

func startedEvent(game *domain.Game) Event {
	snap := game.Snapshot()
	return Event{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Phase: snap.Phase, Pieces: snap.Pieces},
	}
}
