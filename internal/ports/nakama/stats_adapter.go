package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"blockblast/internal/ports"
)

const (
	statsCollection = "blockblast"
	statsKey        = "stats_v1"
	// statsWriteAttempts bounds retries when a concurrent write bumps the version.
	statsWriteAttempts = 3
)

// storageAPI is the subset of runtime.NakamaModule the adapter needs.
type storageAPI interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// NakamaStatsAdapter keeps lifetime stats in Nakama storage, owner-readable only.
type NakamaStatsAdapter struct {
	nk storageAPI
}

// NewNakamaStatsAdapter creates a new stats adapter.
func NewNakamaStatsAdapter(nk storageAPI) *NakamaStatsAdapter {
	return &NakamaStatsAdapter{nk: nk}
}

// RecordGame merges result into the stored stats with an optimistic version check.
func (a *NakamaStatsAdapter) RecordGame(ctx context.Context, result ports.GameResult) (ports.PlayerStats, error) {
	if result.UserID == "" {
		return ports.PlayerStats{}, fmt.Errorf("userID is required")
	}

	var lastErr error
	for attempt := 0; attempt < statsWriteAttempts; attempt++ {
		current, version, err := a.read(ctx, result.UserID)
		if err != nil {
			return ports.PlayerStats{}, err
		}

		next := current.Add(result)
		value, err := json.Marshal(next)
		if err != nil {
			return ports.PlayerStats{}, fmt.Errorf("failed to marshal stats: %w", err)
		}

		if version == "" {
			// Only create if absent.
			version = "*"
		}
		_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
			Collection:      statsCollection,
			Key:             statsKey,
			UserID:          result.UserID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		}})
		if err == nil {
			return next, nil
		}
		lastErr = err
	}
	return ports.PlayerStats{}, fmt.Errorf("failed to write stats for user %s: %w", result.UserID, lastErr)
}

func (a *NakamaStatsAdapter) read(ctx context.Context, userID string) (ports.PlayerStats, string, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: statsCollection,
		Key:        statsKey,
		UserID:     userID,
	}})
	if err != nil {
		return ports.PlayerStats{}, "", fmt.Errorf("failed to read stats: %w", err)
	}

	var stats ports.PlayerStats
	if len(objects) == 0 {
		return stats, "", nil
	}
	if err := json.Unmarshal([]byte(objects[0].Value), &stats); err != nil {
		return ports.PlayerStats{}, "", fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return stats, objects[0].Version, nil
}
