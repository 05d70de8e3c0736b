package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"blockblast/internal/app"
	"blockblast/internal/bot"
	"blockblast/internal/config"
	"blockblast/internal/domain"
	"blockblast/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const maxSpectators = 16

type matchLabel struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	PlayerID       string                      `json:"player_id"`        // User who controls the session; empty until the first join
	Tick           int64                       `json:"tick"`             // Current tick of the match
	LastActionTick int64                       `json:"last_action_tick"` // Tick of the player's last command
	NextBotTick    int64                       `json:"next_bot_tick"`    // Tick when the autopilot may move again
	Autoplaying    bool                        `json:"autoplaying"`      // Whether the autopilot has taken over
	Recorded       bool                        `json:"recorded"`         // Whether the current game's result was persisted
	Presences      map[string]runtime.Presence `json:"-"`                // Map UserId -> Presence for targeted messaging
	App            *app.Service                `json:"-"`
	Game           *domain.Game                `json:"-"` // Current session (nil until started)
	Config         *config.GameConfig          `json:"-"`
	Hint           bot.Brain                   `json:"-"`
	Autopilot      *bot.Agent                  `json:"-"`
	Leaderboard    ports.LeaderboardPort       `json:"-"`
	Stats          ports.StatsPort             `json:"-"`
}

// Phase reports the session phase, ready when no game exists yet.
func (ms *MatchState) Phase() domain.Phase {
	if ms.Game == nil {
		return domain.PhaseReady
	}
	return ms.Game.Phase
}

func (ms *MatchState) SpectatorCount() int {
	n := len(ms.Presences)
	if _, ok := ms.Presences[ms.PlayerID]; ok {
		n--
	}
	return n
}

func (ms *MatchState) isPlayer(userID string) bool {
	return userID != "" && userID == ms.PlayerID
}

type matchHandler struct {
	cfg *config.GameConfig
}

func newMatchHandler(cfg *config.GameConfig) *matchHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &matchHandler{cfg: cfg}
}

// MatchInit is called when the match is created.
// params may carry an integer "seed" for a reproducible piece sequence.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")
	cfg := mh.cfg

	seed := time.Now().UnixNano()
	switch v := params["seed"].(type) {
	case int:
		seed = int64(v)
	case int64:
		seed = v
	case float64:
		seed = int64(v)
	}
	rng := rand.New(rand.NewSource(seed))

	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		Config:    cfg,
		App: app.NewService(rng,
			app.WithScoringPolicy(cfg.Policy()),
			app.WithBatchSize(cfg.BatchSize),
			app.WithRotation(cfg.AllowRotation),
		),
	}

	if level, err := bot.ParseBotLevel(cfg.HintLevel); err != nil {
		logger.Warn("MatchInit: Invalid hint level %q, using good: %v", cfg.HintLevel, err)
		state.Hint = &bot.GoodBot{}
	} else {
		state.Hint, _ = bot.NewBrain(level)
	}

	if cfg.Autoplay.Enabled {
		identity := bot.GetBotIdentity(rng.Intn(1<<16), cfg.Autoplay.Level)
		if cfg.Autoplay.Level != "" {
			identity.Difficulty = cfg.Autoplay.Level
		}
		agent, err := bot.NewAgent(identity)
		if err != nil {
			logger.Error("MatchInit: Failed to create autopilot %s: %v", identity.UserID, err)
		} else {
			state.Autopilot = agent
		}
	}

	if nk != nil {
		state.Leaderboard = NewNakamaLeaderboardAdapter(nk, cfg.Leaderboard.ID, cfg.Leaderboard.ResetSchedule)
		state.Stats = NewNakamaStatsAdapter(nk)
	}

	labelBytes, err := json.Marshal(matchLabel{Open: true, Game: GameName, Phase: string(domain.PhaseReady)})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, cfg.TickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if matchState.PlayerID == "" || matchState.isPlayer(presence.GetUserId()) {
		return state, true, ""
	}
	if matchState.SpectatorCount() >= maxSpectators {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		if matchState.PlayerID == "" {
			matchState.PlayerID = p.GetUserId()
			matchState.LastActionTick = tick
			logger.Info("MatchJoin: User %s is the player.", p.GetUserId())
		} else if !matchState.isPlayer(p.GetUserId()) {
			logger.Debug("MatchJoin: User %s joined as spectator.", p.GetUserId())
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)

	for _, p := range presences {
		mh.sendSnapshot(matchState, dispatcher, logger, p)
	}

	return matchState
}

// MatchLeave is called when one or more presences leave the match.
// The match ends when its player leaves.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	playerLeft := false
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		if matchState.isPlayer(p.GetUserId()) {
			playerLeft = true
		}
	}

	if playerLeft {
		logger.Info("MatchLeave: Player %s left, terminating match.", matchState.PlayerID)
		return nil
	}

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlacePiece:
			mh.handlePlacePiece(ctx, matchState, dispatcher, logger, msg)
		case OpRestartGame:
			mh.handleRestartGame(ctx, matchState, dispatcher, logger, msg)
		case OpRequestHint:
			mh.handleHint(matchState, dispatcher, logger, msg)
		case OpRotatePiece:
			mh.handleRotatePiece(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
			mh.sendError(matchState, dispatcher, logger, msg.GetUserId(), ErrCodeBadRequest, "unknown opcode")
		}
	}

	mh.processAutoplay(ctx, matchState, dispatcher, logger)

	return matchState
}

// requirePlayer rejects commands from spectators and records player activity.
func (mh *matchHandler) requirePlayer(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) bool {
	senderID := msg.GetUserId()
	if !state.isPlayer(senderID) {
		logger.Warn("MatchLoop: Spectator %s sent opcode %d", senderID, msg.GetOpCode())
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeForbidden, "spectators cannot play")
		return false
	}

	state.LastActionTick = state.Tick
	if state.Autoplaying {
		state.Autoplaying = false
		logger.Info("MatchLoop: Player %s is back, autopilot released.", senderID)
	}
	return true
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requirePlayer(state, dispatcher, logger, msg) {
		return
	}
	if state.Phase() == domain.PhasePlaying {
		logger.Warn("StartGame: User %s tried to start while a game is running", msg.GetUserId())
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), ErrCodeConflict, "game already in progress")
		return
	}

	mh.startOrRestart(ctx, state, dispatcher, logger)
	logger.Info("StartGame: Game started for %s.", state.PlayerID)
}

func (mh *matchHandler) handleRestartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requirePlayer(state, dispatcher, logger, msg) {
		return
	}
	mh.startOrRestart(ctx, state, dispatcher, logger)
	logger.Info("RestartGame: Game restarted for %s.", state.PlayerID)
}

func (mh *matchHandler) startOrRestart(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var events []app.Event
	if state.Game == nil {
		state.Game, events = state.App.StartGame()
	} else {
		events = state.App.RestartGame(state.Game)
	}
	state.Recorded = false
	mh.dispatchEvents(ctx, state, dispatcher, logger, events, "", false)
}

func (mh *matchHandler) handlePlacePiece(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requirePlayer(state, dispatcher, logger, msg) {
		return
	}
	senderID := msg.GetUserId()

	var request placeRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handlePlacePiece: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, "invalid payload")
		return
	}
	if request.PieceID == "" || request.X == nil || request.Y == nil {
		logger.Warn("handlePlacePiece: Incomplete payload from %s: %s", senderID, string(msg.GetData()))
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, "piece_id, x and y are required")
		return
	}
	if state.Game == nil {
		logger.Warn("handlePlacePiece: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeConflict, "game not started")
		return
	}

	ok, events := state.App.PlacePiece(state.Game, request.PieceID, *request.X, *request.Y)
	if !ok {
		logger.Debug("handlePlacePiece: User %s placement of %s at (%d,%d) rejected", senderID, request.PieceID, *request.X, *request.Y)
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events, senderID, false)
}

func (mh *matchHandler) handleRotatePiece(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requirePlayer(state, dispatcher, logger, msg) {
		return
	}
	senderID := msg.GetUserId()

	var request rotateRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil || request.PieceID == "" {
		logger.Warn("handleRotatePiece: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, "piece_id is required")
		return
	}
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeConflict, "game not started")
		return
	}
	if !state.Game.RotationEnabled() {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeDisabled, "rotation disabled")
		return
	}

	ok, events := state.App.RotatePiece(state.Game, request.PieceID)
	if !ok {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeBadRequest, "cannot rotate piece")
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events, senderID, false)
}

func (mh *matchHandler) handleHint(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.requirePlayer(state, dispatcher, logger, msg) {
		return
	}
	senderID := msg.GetUserId()

	if !state.Config.HintEnabled || state.Hint == nil {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeDisabled, "hints disabled")
		return
	}
	if state.Phase() != domain.PhasePlaying {
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeConflict, "game not in progress")
		return
	}

	hint := hintMsg{}
	move, err := state.Hint.CalculateMove(state.Game)
	switch {
	case errors.Is(err, bot.ErrNoMove):
	case err != nil:
		logger.Error("handleHint: Failed to calculate hint: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, ErrCodeConflict, "hint unavailable")
		return
	default:
		hint = hintMsg{Found: true, PieceID: move.PieceID, X: move.X, Y: move.Y}
	}

	mh.sendTo(state, dispatcher, logger, senderID, OpHint, hint)
}

// processAutoplay lets the autopilot play once the player has been idle long enough.
func (mh *matchHandler) processAutoplay(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	ap := state.Config.Autoplay
	if !ap.Enabled || state.Autopilot == nil || state.Phase() != domain.PhasePlaying {
		return
	}

	if !state.Autoplaying {
		if state.Tick-state.LastActionTick < int64(ap.IdleTicks) {
			return
		}
		state.Autoplaying = true
		state.NextBotTick = state.Tick
		logger.Info("processAutoplay: Player %s idle, %s takes over.", state.PlayerID, state.Autopilot.Name)
	}

	if state.Tick < state.NextBotTick {
		return
	}
	state.NextBotTick = state.Tick + int64(max(ap.MoveTicks, 1))

	move, err := state.Autopilot.Play(state.Game)
	if err != nil {
		if !errors.Is(err, bot.ErrNoMove) {
			logger.Error("processAutoplay: Bot %s failed to calculate move: %v", state.Autopilot.ID, err)
		}
		return
	}

	ok, events := state.App.PlacePiece(state.Game, move.PieceID, move.X, move.Y)
	if !ok {
		logger.Warn("processAutoplay: Bot %s move %+v rejected", state.Autopilot.ID, move)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events, "", true)
}

func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event, senderID string, byBot bool) {
	for _, ev := range events {
		if ev.Kind == app.EventPlacementRejected {
			if senderID == "" {
				continue
			}
			ev.Recipients = []string{senderID}
		}
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev, byBot)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event, byBot bool) {
	opCode, payload, ok := eventToMsg(ev)
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	switch ev.Kind {
	case app.EventGameStarted:
		mh.updateLabel(state, dispatcher, logger)
	case app.EventPiecePlaced:
		if byBot {
			msg := payload.(piecePlacedMsg)
			msg.ByBot = true
			payload = msg
		}
	case app.EventGameOver:
		p := ev.Payload.(app.GameOverPayload)
		logger.Info("Event: game_over (player=%s, score=%d, lines=%d, moves=%d)", state.PlayerID, p.Score, p.LinesCleared, p.Moves)
		mh.recordResult(ctx, state, logger, p)
		mh.updateLabel(state, dispatcher, logger)
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Intended recipients that are not connected must not turn into a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
	}
}

// recordResult persists the final score once per game.
func (mh *matchHandler) recordResult(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameOverPayload) {
	if state.Recorded || state.PlayerID == "" {
		return
	}
	state.Recorded = true

	username := ""
	if presence, ok := state.Presences[state.PlayerID]; ok {
		username = presence.GetUsername()
	}

	if state.Leaderboard != nil {
		record := ports.ScoreRecord{
			UserID:   state.PlayerID,
			Username: username,
			Score:    int64(p.Score),
			Subscore: int64(p.LinesCleared),
			Metadata: map[string]interface{}{
				"match_id":   ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"moves":      p.Moves,
				"best_combo": p.BestCombo,
				"autoplay":   state.Autoplaying,
			},
		}
		if err := state.Leaderboard.SubmitScore(ctx, record); err != nil {
			logger.Error("Failed to submit score: %v", err)
		}
	}

	if state.Stats != nil {
		result := ports.GameResult{
			UserID:       state.PlayerID,
			Score:        p.Score,
			LinesCleared: p.LinesCleared,
			Moves:        p.Moves,
			BestCombo:    p.BestCombo,
		}
		stats, err := state.Stats.RecordGame(ctx, result)
		if err != nil {
			logger.Error("Failed to record stats: %v", err)
			return
		}
		logger.Debug("Stats for %s: games=%d best=%d", state.PlayerID, stats.GamesPlayed, stats.BestScore)
	}
}

func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, presence runtime.Presence) {
	var msg snapshotMsg
	if state.Game != nil {
		msg = snapshotToMsg(state.Game.Snapshot())
	} else {
		msg = snapshotToMsg(domain.Snapshot{Phase: domain.PhaseReady})
	}
	msg.PlayerID = state.PlayerID
	msg.Spectator = !state.isPlayer(presence.GetUserId())
	msg.Autoplay = state.Autoplaying
	msg.Rotation = state.Config.AllowRotation

	mh.sendTo(state, dispatcher, logger, presence.GetUserId(), OpSnapshot, msg)
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	mh.sendTo(state, dispatcher, logger, userID, OpGameError, errorMsg{Code: code, Message: message})
}

func (mh *matchHandler) sendTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, payload any) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal op %d: %v", opCode, err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send op %d to %s: Presence not found", opCode, userID)
		return
	}

	if err := dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send op %d to %s: %v", opCode, userID, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label := matchLabel{
		Open:  state.PlayerID == "",
		Game:  GameName,
		Phase: string(state.Phase()),
	}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
