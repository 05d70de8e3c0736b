package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"blockblast/internal/domain"
)

// ErrNotLoaded is returned when the configuration is read before LoadGameConfig ran.
var ErrNotLoaded = errors.New("game config not loaded")

// MaxBatchSize bounds batch_size; the smart bot searches one level per batch piece.
const MaxBatchSize = 5

type AutoplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	// IdleTicks is how long a player may stay idle before the bot takes over.
	IdleTicks int `mapstructure:"idle_ticks"`
	// MoveTicks is the delay between bot placements.
	MoveTicks int `mapstructure:"move_ticks"`
}

type LeaderboardConfig struct {
	ID            string `mapstructure:"id"`
	ResetSchedule string `mapstructure:"reset_schedule"`
}

type GameConfig struct {
	BatchSize     int               `mapstructure:"batch_size"`
	ScoringPolicy string            `mapstructure:"scoring_policy"`
	AllowRotation bool              `mapstructure:"allow_rotation"`
	HintEnabled   bool              `mapstructure:"hint_enabled"`
	HintLevel     string            `mapstructure:"hint_level"`
	TickRate      int               `mapstructure:"tick_rate"`
	Autoplay      AutoplayConfig    `mapstructure:"autoplay"`
	Leaderboard   LeaderboardConfig `mapstructure:"leaderboard"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("batch_size", domain.BatchSize)
	v.SetDefault("scoring_policy", domain.ScoringCombo)
	v.SetDefault("allow_rotation", false)
	v.SetDefault("hint_enabled", true)
	v.SetDefault("hint_level", "good")
	v.SetDefault("tick_rate", 5)
	v.SetDefault("autoplay.enabled", false)
	v.SetDefault("autoplay.level", "smart")
	v.SetDefault("autoplay.idle_ticks", 150)
	v.SetDefault("autoplay.move_ticks", 3)
	v.SetDefault("leaderboard.id", "blockblast_highscores")
	v.SetDefault("leaderboard.reset_schedule", "")
}

// Default returns the configuration used when no file is present.
func Default() *GameConfig {
	v := viper.New()
	setDefaults(v)
	var c GameConfig
	// Defaults alone always decode.
	_ = v.Unmarshal(&c)
	return &c
}

// Load reads a YAML configuration from path on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*GameConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read game config: %w", err)
		}
	}

	var c GameConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges and names.
func (c *GameConfig) Validate() error {
	if c.BatchSize <= 0 || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("invalid batch_size %d, want 1..%d", c.BatchSize, MaxBatchSize)
	}
	if c.TickRate <= 0 || c.TickRate > 60 {
		return fmt.Errorf("invalid tick_rate %d", c.TickRate)
	}
	if _, err := domain.ScoringPolicyByName(c.ScoringPolicy); err != nil {
		return fmt.Errorf("invalid scoring_policy: %w", err)
	}
	if c.Leaderboard.ID == "" {
		return errors.New("leaderboard.id must not be empty")
	}
	return nil
}

// ApplyEnv overrides values from Nakama runtime env entries prefixed with "blockblast_".
// Unparseable values are reported and leave the field unchanged.
func (c *GameConfig) ApplyEnv(env map[string]string) error {
	var errs []error
	setBool := func(key string, dst *bool) {
		raw, ok := env[key]
		if !ok {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
	setInt := func(key string, dst *int) {
		raw, ok := env[key]
		if !ok {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
	setString := func(key string, dst *string) {
		if raw, ok := env[key]; ok && raw != "" {
			*dst = strings.TrimSpace(raw)
		}
	}

	setString("blockblast_scoring_policy", &c.ScoringPolicy)
	setInt("blockblast_batch_size", &c.BatchSize)
	setBool("blockblast_allow_rotation", &c.AllowRotation)
	setBool("blockblast_hint_enabled", &c.HintEnabled)
	setBool("blockblast_autoplay", &c.Autoplay.Enabled)
	setString("blockblast_autoplay_level", &c.Autoplay.Level)
	setString("blockblast_leaderboard_id", &c.Leaderboard.ID)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return c.Validate()
}

// Policy resolves the configured scoring policy.
func (c *GameConfig) Policy() domain.ScoringPolicy {
	p, err := domain.ScoringPolicyByName(c.ScoringPolicy)
	if err != nil {
		return domain.ComboScoring{}
	}
	return p
}

// LoadGameConfig loads the global game configuration from the given path once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg, loadErr = Load(path)
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() (*GameConfig, error) {
	if cfg == nil {
		return nil, ErrNotLoaded
	}
	return cfg, nil
}
