package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"blockblast/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcCreateMatch: rpcCreateMatch,
		RpcListMatches: rpcListMatches,
		RpcShapes:      rpcShapes,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return fmt.Errorf("failed to register rpc %s: %w", id, err)
		}
	}
	return nil
}

// rpcCreateMatch creates a solo authoritative match. The caller becomes the player on join.
//
// Payload: optional {"seed": n} for a reproducible piece sequence.
// Returns: {"match_id": "..."}
func rpcCreateMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	params := map[string]interface{}{}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &params); err != nil {
			logger.Warn("rpcCreateMatch [User:%s]: Invalid payload: %v", userID, err)
			return "", runtime.NewError("invalid payload", 3)
		}
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameBlockBlast, params)
	if err != nil {
		logger.Error("rpcCreateMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	logger.Info("rpcCreateMatch [User:%s]: Created new match %s", userID, matchID)
	b, _ := json.Marshal(createMatchResponse{MatchID: matchID})
	return string(b), nil
}

// rpcListMatches returns running games that spectators can join.
func rpcListMatches(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	query := fmt.Sprintf("+label.game:%s +label.phase:%s", GameName, domain.PhasePlaying)

	limit := 20
	authoritative := true
	minSize := 1
	maxSize := maxSpectators + 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	resp := listMatchesResponse{Matches: make([]liveMatchMsg, 0, len(matches))}
	for _, m := range matches {
		label := ""
		if m.GetLabel() != nil {
			label = m.GetLabel().GetValue()
		}
		resp.Matches = append(resp.Matches, liveMatchMsg{MatchID: m.GetMatchId(), Size: m.GetSize(), Label: label})
	}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcShapes returns the piece templates and palette for client previews.
func rpcShapes(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	shapes := domain.Shapes()
	resp := shapesResponse{
		GridSize:  domain.GridSize,
		BatchSize: domain.BatchSize,
		Shapes:    make([]shapeMsg, 0, len(shapes)),
		Palette:   domain.Palette(),
	}
	for _, s := range shapes {
		resp.Shapes = append(resp.Shapes, shapeMsg{Name: s.Name, Blocks: blocksToMsg(s.Blocks)})
	}
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Error("rpcShapes: Failed to marshal: %v", err)
		return "", err
	}
	return string(b), nil
}
