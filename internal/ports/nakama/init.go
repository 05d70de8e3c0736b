package nakama

import (
	"context"
	"database/sql"

	"blockblast/internal/bot"
	"blockblast/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires configuration, the leaderboard, RPCs and the match handler for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	cfg := loadConfig(ctx, logger)

	if err := bot.LoadIdentities(BotIdentitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	}

	board := NewNakamaLeaderboardAdapter(nk, cfg.Leaderboard.ID, cfg.Leaderboard.ResetSchedule)
	if err := board.EnsureLeaderboard(ctx); err != nil {
		logger.Error("InitModule: %v", err)
		return err
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameBlockBlast, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(cfg), nil
	}); err != nil {
		return err
	}

	logger.Info("BlockBlast Go module loaded (scoring=%s, batch=%d, autoplay=%t).", cfg.ScoringPolicy, cfg.BatchSize, cfg.Autoplay.Enabled)
	return nil
}

// loadConfig reads the YAML config and applies runtime env overrides.
// Any failure falls back to defaults.
func loadConfig(ctx context.Context, logger runtime.Logger) *config.GameConfig {
	if err := config.LoadGameConfig(ConfigPath); err != nil {
		logger.Warn("InitModule: Could not load game config: %v", err)
	}
	loaded, err := config.GetGameConfig()
	if err != nil {
		loaded = config.Default()
	}
	cfg := *loaded

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if err := cfg.ApplyEnv(env); err != nil {
		logger.Warn("InitModule: Ignoring invalid env overrides: %v", err)
		cfg = *loaded
	}
	return &cfg
}
