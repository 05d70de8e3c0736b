package app

import "blockblast/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted       EventKind = "game_started"
	EventPiecePlaced       EventKind = "piece_placed"
	EventLinesCleared      EventKind = "lines_cleared"
	EventPiecesRefilled    EventKind = "pieces_refilled"
	EventGameOver          EventKind = "game_over"
	EventPlacementRejected EventKind = "placement_rejected"
	EventPieceRotated      EventKind = "piece_rotated"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

// EffectTier names the client effect for a clear of a given size.
type EffectTier string

const (
	EffectSparkles  EffectTier = "sparkles"
	EffectBlastWave EffectTier = "blast_wave"
	EffectLightning EffectTier = "lightning"
)

// EffectTierFor returns the effect for clearing n lines at once.
func EffectTierFor(n int) EffectTier {
	switch {
	case n >= LightningLines:
		return EffectLightning
	case n >= BlastWaveLines:
		return EffectBlastWave
	default:
		return EffectSparkles
	}
}

type GameStartedPayload struct {
	Phase  domain.Phase
	Pieces []domain.Piece
}

type PiecePlacedPayload struct {
	Piece  domain.Piece
	X      int
	Y      int
	Points int
	Score  int
}

type LinesClearedPayload struct {
	Lines        []domain.ClearedLine
	Cells        []domain.ClearedCell
	Effect       EffectTier
	LinesCleared int
}

type PiecesRefilledPayload struct {
	Pieces []domain.Piece
}

type GameOverPayload struct {
	Score        int
	LinesCleared int
	Moves        int
	BestCombo    int
}

type PlacementRejectedPayload struct {
	PieceID string
	X       int
	Y       int
	Reason  domain.RejectReason
}

type PieceRotatedPayload struct {
	Piece domain.Piece
}
