package domain

import "fmt"

const (
	pointsPerLine = 100
	pointsPerCell = 10
	flatBonusRate = 50
)

// ScoringPolicy converts a placement into a point delta.
type ScoringPolicy interface {
	Score(lines []ClearedLine, pieceSize int) int
}

// ComboScoring awards 100 per line, 10 per placed cell and, when more than one
// line clears at once, a bonus of 100·L·L.
type ComboScoring struct{}

// Score implements ScoringPolicy.
func (ComboScoring) Score(lines []ClearedLine, pieceSize int) int {
	n := len(lines)
	score := n*pointsPerLine + max(pieceSize, 0)*pointsPerCell
	if n > 1 {
		score += n * pointsPerLine * n
	}
	return score
}

// FlatBonusScoring awards 100 per line, 10 per placed cell and a multi-line bonus of 50·L.
type FlatBonusScoring struct{}

// Score implements ScoringPolicy.
func (FlatBonusScoring) Score(lines []ClearedLine, pieceSize int) int {
	n := len(lines)
	score := n*pointsPerLine + max(pieceSize, 0)*pointsPerCell
	if n > 1 {
		score += n * flatBonusRate
	}
	return score
}

const (
	ScoringCombo = "combo"
	ScoringFlat  = "flat"
)

// ScoringPolicyByName resolves a configured policy name. An empty name selects combo scoring.
func ScoringPolicyByName(name string) (ScoringPolicy, error) {
	switch name {
	case "", ScoringCombo:
		return ComboScoring{}, nil
	case ScoringFlat:
		return FlatBonusScoring{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring policy: %s", name)
	}
}
