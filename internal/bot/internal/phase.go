package internal

import "blockblast/internal/domain"

// BoardPhase describes how crowded the board is.
type BoardPhase int

const (
	// PhaseOpen indicates less than a third of the board is filled.
	PhaseOpen BoardPhase = iota
	// PhaseCrowded indicates the board is between a third and 60% full.
	PhaseCrowded
	// PhaseCritical indicates the board is at least 60% full.
	PhaseCritical
)

// DetectPhase infers the phase from the number of filled cells.
func DetectPhase(filled int) BoardPhase {
	total := domain.GridSize * domain.GridSize
	switch {
	case filled*3 < total:
		return PhaseOpen
	case filled*10 < total*6:
		return PhaseCrowded
	default:
		return PhaseCritical
	}
}
