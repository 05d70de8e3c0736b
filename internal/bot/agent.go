package bot

import (
	"blockblast/internal/domain"
)

// Agent represents an autonomous player that can take over a session.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for the identity using the brain for its level.
func NewAgent(identity BotIdentity) (*Agent, error) {
	level, err := ParseBotLevel(identity.Difficulty)
	if err != nil {
		return nil, err
	}
	brain, err := NewBrain(level)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: identity.UserID, Name: identity.DisplayName, Strategy: brain}, nil
}

// Play asks the agent to calculate its move based on the current game state.
func (a *Agent) Play(game *domain.Game) (Move, error) {
	if game == nil || game.Phase != domain.PhasePlaying {
		return Move{}, ErrNoMove
	}
	return a.Strategy.CalculateMove(game)
}
