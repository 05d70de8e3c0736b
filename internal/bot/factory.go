package bot

import (
	"fmt"
	"strings"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelGood
	BotLevelSmart
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelEasy:
		return "easy"
	case BotLevelGood:
		return "good"
	case BotLevelSmart:
		return "smart"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseBotLevel maps a configured difficulty name to a level. Empty means good.
func ParseBotLevel(name string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "easy":
		return BotLevelEasy, nil
	case "", "good", "medium":
		return BotLevelGood, nil
	case "smart", "hard":
		return BotLevelSmart, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", name)
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return &EasyBot{}, nil
	case BotLevelGood:
		return &GoodBot{}, nil
	case BotLevelSmart:
		return NewSmartBot(), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
