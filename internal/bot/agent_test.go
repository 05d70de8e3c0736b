package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockblast/internal/domain"
)

func TestParseBotLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    BotLevel
		wantErr bool
	}{
		{name: "easy", want: BotLevelEasy},
		{name: "", want: BotLevelGood},
		{name: "Good", want: BotLevelGood},
		{name: " smart ", want: BotLevelSmart},
		{name: "hard", want: BotLevelSmart},
		{name: "god", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseBotLevel(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestNewBrainUnknownLevel(t *testing.T) {
	_, err := NewBrain(BotLevel(9))
	assert.Error(t, err)
}

func TestNewAgent(t *testing.T) {
	agent, err := NewAgent(BotIdentity{UserID: "bot-1", DisplayName: "Blaster", Difficulty: "smart"})
	require.NoError(t, err)
	assert.Equal(t, "bot-1", agent.ID)
	assert.IsType(t, &SmartBot{}, agent.Strategy)

	_, err = NewAgent(BotIdentity{Difficulty: "god"})
	assert.Error(t, err)
}

func TestAgentPlay(t *testing.T) {
	agent := &Agent{ID: "bot", Strategy: &GoodBot{}}

	_, err := agent.Play(domain.NewGame(nil, nil))
	assert.ErrorIs(t, err, ErrNoMove)

	g := newGame(5)
	move, err := agent.Play(g)
	require.NoError(t, err)
	_, ok := g.PieceByID(move.PieceID)
	assert.True(t, ok)
}

func TestGetBotIdentity(t *testing.T) {
	t.Cleanup(func() { setIdentities(nil) })

	setIdentities(nil)
	def := GetBotIdentity(2, "easy")
	assert.Equal(t, "bot-2", def.UserID)
	assert.Equal(t, "easy", def.Difficulty)
	assert.False(t, IsBot("bot-2"))

	setIdentities([]BotIdentity{
		{UserID: "bot-a", DisplayName: "A", Difficulty: "smart"},
		{UserID: "bot-b", DisplayName: "B"},
	})
	assert.Equal(t, "bot-a", GetBotIdentity(2, "easy").UserID)
	assert.Equal(t, "smart", GetBotIdentity(0, "easy").Difficulty)
	assert.Equal(t, "good", GetBotIdentity(1, "good").Difficulty)
	assert.True(t, IsBot("bot-b"))
}
