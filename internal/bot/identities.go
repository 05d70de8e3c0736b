package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// BotIdentity is the public face of an autoplay agent.
type BotIdentity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "good", "smart"
}

var (
	botIdentities []BotIdentity
	botIDMap      map[string]bool
	loadOnce      sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var identities []BotIdentity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		setIdentities(identities)
	})
	return loadErr
}

func setIdentities(identities []BotIdentity) {
	botIdentities = identities
	botIDMap = make(map[string]bool, len(identities))
	for _, identity := range identities {
		if identity.UserID != "" {
			botIDMap[identity.UserID] = true
		}
	}
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
// difficulty fills in identities that do not name one.
func GetBotIdentity(index int, difficulty string) BotIdentity {
	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
			Difficulty:  difficulty,
		}
	}
	identity := botIdentities[index%len(botIdentities)]
	if identity.Difficulty == "" {
		identity.Difficulty = difficulty
	}
	return identity
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	if botIDMap == nil {
		return false
	}
	return botIDMap[userID]
}
