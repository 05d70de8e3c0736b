package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockblast/internal/config"
	"blockblast/internal/domain"
	"blockblast/internal/ports"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []string
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent   []sentMessage
	labels []string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	msg := sentMessage{opCode: opCode, data: append([]byte(nil), data...)}
	for _, p := range presences {
		msg.recipients = append(msg.recipients, p.GetUserId())
	}
	md.sent = append(md.sent, msg)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labels = append(md.labels, label)
	return nil
}

func (md *mockDispatcher) reset() {
	md.sent = nil
	md.labels = nil
}

func (md *mockDispatcher) opCodes() []int64 {
	out := make([]int64, len(md.sent))
	for i, m := range md.sent {
		out[i] = m.opCode
	}
	return out
}

func (md *mockDispatcher) last(opCode int64) (sentMessage, bool) {
	for i := len(md.sent) - 1; i >= 0; i-- {
		if md.sent[i].opCode == opCode {
			return md.sent[i], true
		}
	}
	return sentMessage{}, false
}

func (md *mockDispatcher) lastLabel(t *testing.T) matchLabel {
	t.Helper()
	require.NotEmpty(t, md.labels)
	var label matchLabel
	require.NoError(t, json.Unmarshal([]byte(md.labels[len(md.labels)-1]), &label))
	return label
}

// testPresence overrides the Presence accessors the handler uses.
type testPresence struct {
	runtime.Presence
	userID string
}

func (p testPresence) GetUserId() string    { return p.userID }
func (p testPresence) GetSessionId() string { return "session-" + p.userID }
func (p testPresence) GetUsername() string  { return "name-" + p.userID }

type testMatchData struct {
	runtime.MatchData
	userID string
	opCode int64
	data   []byte
}

func (m testMatchData) GetUserId() string { return m.userID }
func (m testMatchData) GetOpCode() int64  { return m.opCode }
func (m testMatchData) GetData() []byte   { return m.data }

type fakeLeaderboard struct {
	records []ports.ScoreRecord
	err     error
}

func (f *fakeLeaderboard) EnsureLeaderboard(ctx context.Context) error { return nil }

func (f *fakeLeaderboard) SubmitScore(ctx context.Context, record ports.ScoreRecord) error {
	f.records = append(f.records, record)
	return f.err
}

type fakeStats struct {
	results []ports.GameResult
}

func (f *fakeStats) RecordGame(ctx context.Context, result ports.GameResult) (ports.PlayerStats, error) {
	f.results = append(f.results, result)
	var stats ports.PlayerStats
	for _, r := range f.results {
		stats = stats.Add(r)
	}
	return stats, nil
}

type testMatch struct {
	mh         *matchHandler
	state      *MatchState
	dispatcher *mockDispatcher
	board      *fakeLeaderboard
	stats      *fakeStats
	tick       int64
}

func newTestMatch(t *testing.T, cfg *config.GameConfig) *testMatch {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	mh := newMatchHandler(cfg)
	raw, tickRate, label := mh.MatchInit(context.Background(), noopLogger{}, nil, nil, map[string]interface{}{"seed": 42})
	require.NotNil(t, raw)
	assert.Equal(t, cfg.TickRate, tickRate)
	assert.JSONEq(t, `{"open":true,"game":"blockblast","phase":"ready"}`, label)

	state := raw.(*MatchState)
	tm := &testMatch{
		mh:         mh,
		state:      state,
		dispatcher: &mockDispatcher{},
		board:      &fakeLeaderboard{},
		stats:      &fakeStats{},
	}
	state.Leaderboard = tm.board
	state.Stats = tm.stats
	return tm
}

func (tm *testMatch) join(t *testing.T, userIDs ...string) {
	t.Helper()
	presences := make([]runtime.Presence, 0, len(userIDs))
	for _, id := range userIDs {
		p := testPresence{userID: id}
		_, ok, reason := tm.mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, tm.tick, tm.state, p, nil)
		require.True(t, ok, reason)
		presences = append(presences, p)
	}
	out := tm.mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, tm.tick, tm.state, presences)
	require.Same(t, tm.state, out)
}

func (tm *testMatch) send(t *testing.T, userID string, opCode int64, payload any) {
	t.Helper()
	var data []byte
	switch v := payload.(type) {
	case nil:
	case []byte:
		data = v
	default:
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	tm.loop(t, testMatchData{userID: userID, opCode: opCode, data: data})
}

func (tm *testMatch) loop(t *testing.T, messages ...runtime.MatchData) {
	t.Helper()
	tm.tick++
	out := tm.mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, tm.tick, tm.state, messages)
	require.Same(t, tm.state, out)
}

func decode[T any](t *testing.T, msg sentMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(msg.data, &out))
	return out
}

func templatePiece(t *testing.T, id, name string) domain.Piece {
	t.Helper()
	shape, ok := domain.ShapeByName(name)
	require.True(t, ok)
	return domain.Piece{ID: id, Name: name, Color: "#ff8500", Blocks: shape.Blocks}
}

func place(id string, x, y int) map[string]any {
	return map[string]any{"piece_id": id, "x": x, "y": y}
}

func TestMatchJoinAssignsPlayerAndSpectators(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice", "bob")

	assert.Equal(t, "alice", tm.state.PlayerID)
	assert.Equal(t, 1, tm.state.SpectatorCount())
	assert.Equal(t, matchLabel{Open: false, Game: GameName, Phase: "ready"}, tm.dispatcher.lastLabel(t))

	require.Equal(t, []int64{OpSnapshot, OpSnapshot}, tm.dispatcher.opCodes())
	aliceSnap := decode[snapshotMsg](t, tm.dispatcher.sent[0])
	assert.Equal(t, []string{"alice"}, tm.dispatcher.sent[0].recipients)
	assert.False(t, aliceSnap.Spectator)
	assert.Equal(t, "ready", aliceSnap.Phase)
	assert.Len(t, aliceSnap.Grid, domain.GridSize)

	bobSnap := decode[snapshotMsg](t, tm.dispatcher.sent[1])
	assert.True(t, bobSnap.Spectator)
	assert.Equal(t, "alice", bobSnap.PlayerID)
}

func TestMatchJoinAttemptLimitsSpectators(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "player")
	for i := 0; i < maxSpectators; i++ {
		tm.state.Presences[string(rune('a'+i))] = testPresence{userID: string(rune('a' + i))}
	}

	_, ok, reason := tm.mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, 0, tm.state, testPresence{userID: "late"}, nil)
	assert.False(t, ok)
	assert.Equal(t, "Match full", reason)

	_, ok, _ = tm.mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, 0, tm.state, testPresence{userID: "player"}, nil)
	assert.True(t, ok)
}

func TestStartGame(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice", "bob")
	tm.dispatcher.reset()

	tm.send(t, "alice", OpStartGame, nil)

	started, ok := tm.dispatcher.last(OpGameStarted)
	require.True(t, ok)
	assert.Empty(t, started.recipients, "broadcast")
	payload := decode[gameStartedMsg](t, started)
	assert.Equal(t, "playing", payload.Phase)
	assert.Len(t, payload.Pieces, domain.BatchSize)
	assert.Equal(t, "playing", tm.dispatcher.lastLabel(t).Phase)

	tm.dispatcher.reset()
	tm.send(t, "alice", OpStartGame, nil)
	errMsg, ok := tm.dispatcher.last(OpGameError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeConflict, decode[errorMsg](t, errMsg).Code)
}

func TestSpectatorCannotPlay(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice", "bob")
	tm.send(t, "alice", OpStartGame, nil)
	before := tm.state.Game.Snapshot()
	tm.dispatcher.reset()

	for _, op := range []int64{OpStartGame, OpPlacePiece, OpRestartGame, OpRequestHint, OpRotatePiece} {
		tm.send(t, "bob", op, place(before.Pieces[0].ID, 0, 0))
	}

	require.Len(t, tm.dispatcher.sent, 5)
	for _, msg := range tm.dispatcher.sent {
		assert.Equal(t, OpGameError, msg.opCode)
		assert.Equal(t, []string{"bob"}, msg.recipients)
		assert.Equal(t, ErrCodeForbidden, decode[errorMsg](t, msg).Code)
	}
	assert.Equal(t, before, tm.state.Game.Snapshot())
}

func TestPlacePieceMalformed(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice")

	tests := []struct {
		name    string
		payload any
		code    int
	}{
		{name: "not json", payload: []byte("{"), code: ErrCodeBadRequest},
		{name: "missing x", payload: map[string]any{"piece_id": "shape-1", "y": 0}, code: ErrCodeBadRequest},
		{name: "missing piece", payload: map[string]any{"x": 0, "y": 0}, code: ErrCodeBadRequest},
		{name: "not started", payload: place("shape-1", 0, 0), code: ErrCodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm.dispatcher.reset()
			tm.send(t, "alice", OpPlacePiece, tt.payload)
			msg, ok := tm.dispatcher.last(OpGameError)
			require.True(t, ok)
			assert.Equal(t, tt.code, decode[errorMsg](t, msg).Code)
		})
	}
}

func TestPlacePieceClearsLine(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice", "bob")
	tm.send(t, "alice", OpStartGame, nil)

	single := templatePiece(t, "p-1", "single")
	tm.state.Game.Pieces = []domain.Piece{single}
	for x := 0; x < domain.GridSize-1; x++ {
		tm.state.Game.Grid[0][x] = "#ff3b3b"
	}
	tm.dispatcher.reset()

	tm.send(t, "alice", OpPlacePiece, place("p-1", 9, 0))

	assert.Equal(t, []int64{OpPiecePlaced, OpLinesCleared, OpPiecesRefilled}, tm.dispatcher.opCodes())
	placed := decode[piecePlacedMsg](t, tm.dispatcher.sent[0])
	assert.Equal(t, 110, placed.Score)
	assert.False(t, placed.ByBot)

	cleared := decode[linesClearedMsg](t, tm.dispatcher.sent[1])
	assert.Equal(t, []lineMsg{{Kind: "row", Index: 0}}, cleared.Lines)
	assert.Equal(t, "sparkles", cleared.Effect)
	assert.Len(t, cleared.Cells, domain.GridSize)

	refilled := decode[piecesRefilledMsg](t, tm.dispatcher.sent[2])
	assert.Len(t, refilled.Pieces, domain.BatchSize)
}

func TestPlacePieceRejectedIsPrivate(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice", "bob")
	tm.send(t, "alice", OpStartGame, nil)
	tm.dispatcher.reset()

	tm.send(t, "alice", OpPlacePiece, place("shape-missing", 0, 0))

	require.Equal(t, []int64{OpPlacementRejected}, tm.dispatcher.opCodes())
	msg := tm.dispatcher.sent[0]
	assert.Equal(t, []string{"alice"}, msg.recipients)
	assert.Equal(t, "unknown_piece", decode[placementRejectedMsg](t, msg).Reason)
}

func checkerboard() domain.Grid {
	var g domain.Grid
	for y := 0; y < domain.GridSize; y++ {
		for x := 0; x < domain.GridSize; x++ {
			if (x+y)%2 == 0 {
				g[y][x] = "#8a2be2"
			}
		}
	}
	return g
}

func TestGameOverRecordsResultOnce(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice")
	tm.send(t, "alice", OpStartGame, nil)

	tm.state.Game.Grid = checkerboard()
	tm.state.Game.Pieces = []domain.Piece{templatePiece(t, "p-1", "single"), templatePiece(t, "p-2", "square")}
	tm.dispatcher.reset()

	tm.send(t, "alice", OpPlacePiece, place("p-1", 1, 0))

	over, ok := tm.dispatcher.last(OpGameOver)
	require.True(t, ok)
	assert.Equal(t, gameOverMsg{Score: 10, Moves: 1}, decode[gameOverMsg](t, over))
	assert.Equal(t, "gameOver", tm.dispatcher.lastLabel(t).Phase)

	require.Len(t, tm.board.records, 1)
	record := tm.board.records[0]
	assert.Equal(t, "alice", record.UserID)
	assert.Equal(t, "name-alice", record.Username)
	assert.Equal(t, int64(10), record.Score)
	require.Len(t, tm.stats.results, 1)
	assert.Equal(t, ports.GameResult{UserID: "alice", Score: 10, Moves: 1}, tm.stats.results[0])

	// Placing after game over is rejected and records nothing more.
	tm.dispatcher.reset()
	tm.send(t, "alice", OpPlacePiece, place("p-2", 0, 0))
	msg, ok := tm.dispatcher.last(OpPlacementRejected)
	require.True(t, ok)
	assert.Equal(t, "not_playing", decode[placementRejectedMsg](t, msg).Reason)
	assert.Len(t, tm.board.records, 1)

	// Restart opens a new game that can be recorded again.
	tm.send(t, "alice", OpRestartGame, nil)
	assert.Equal(t, domain.PhasePlaying, tm.state.Phase())
	assert.False(t, tm.state.Recorded)
	assert.Equal(t, 0, tm.state.Game.Score)
}

func TestGameOverLeaderboardFailureIsLogged(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.board.err = errors.New("unavailable")
	tm.join(t, "alice")
	tm.send(t, "alice", OpStartGame, nil)
	tm.state.Game.Grid = checkerboard()
	tm.state.Game.Pieces = []domain.Piece{templatePiece(t, "p-1", "single"), templatePiece(t, "p-2", "square")}

	tm.send(t, "alice", OpPlacePiece, place("p-1", 1, 0))

	assert.Equal(t, domain.PhaseGameOver, tm.state.Phase())
	assert.Len(t, tm.stats.results, 1)
}

func TestHint(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice")

	tm.send(t, "alice", OpRequestHint, nil)
	msg, ok := tm.dispatcher.last(OpGameError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeConflict, decode[errorMsg](t, msg).Code)

	tm.send(t, "alice", OpStartGame, nil)
	tm.dispatcher.reset()
	tm.send(t, "alice", OpRequestHint, nil)

	msg, ok = tm.dispatcher.last(OpHint)
	require.True(t, ok)
	assert.Equal(t, []string{"alice"}, msg.recipients)
	hint := decode[hintMsg](t, msg)
	require.True(t, hint.Found)
	piece, ok := tm.state.Game.PieceByID(hint.PieceID)
	require.True(t, ok)
	assert.True(t, domain.CanPlace(tm.state.Game.Grid, piece, hint.X, hint.Y))
}

func TestHintDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.HintEnabled = false
	tm := newTestMatch(t, cfg)
	tm.join(t, "alice")
	tm.send(t, "alice", OpStartGame, nil)
	tm.dispatcher.reset()

	tm.send(t, "alice", OpRequestHint, nil)

	msg, ok := tm.dispatcher.last(OpGameError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeDisabled, decode[errorMsg](t, msg).Code)
}

func TestRotatePiece(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice")
	tm.send(t, "alice", OpStartGame, nil)
	tm.dispatcher.reset()

	tm.send(t, "alice", OpRotatePiece, map[string]any{"piece_id": tm.state.Game.Pieces[0].ID})
	msg, ok := tm.dispatcher.last(OpGameError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeDisabled, decode[errorMsg](t, msg).Code)

	cfg := config.Default()
	cfg.AllowRotation = true
	tm = newTestMatch(t, cfg)
	tm.join(t, "alice")
	tm.send(t, "alice", OpStartGame, nil)
	quad := templatePiece(t, "q", "quad-h")
	tm.state.Game.Pieces = []domain.Piece{quad}
	tm.dispatcher.reset()

	tm.send(t, "alice", OpRotatePiece, map[string]any{"piece_id": "q"})
	msg, ok = tm.dispatcher.last(OpPieceRotated)
	require.True(t, ok)
	rotated := decode[pieceRotatedMsg](t, msg)
	assert.ElementsMatch(t, []blockMsg{{0, 0}, {0, 1}, {0, 2}, {0, 3}}, rotated.Piece.Blocks)
}

func TestAutoplayTakesOverIdlePlayer(t *testing.T) {
	cfg := config.Default()
	cfg.Autoplay = config.AutoplayConfig{Enabled: true, Level: "easy", IdleTicks: 3, MoveTicks: 2}
	tm := newTestMatch(t, cfg)
	require.NotNil(t, tm.state.Autopilot)
	tm.join(t, "alice")
	tm.send(t, "alice", OpStartGame, nil)
	tm.dispatcher.reset()

	for i := 0; i < 2; i++ {
		tm.loop(t)
	}
	assert.False(t, tm.state.Autoplaying)
	assert.Empty(t, tm.dispatcher.sent)

	tm.loop(t)
	assert.True(t, tm.state.Autoplaying)
	placed, ok := tm.dispatcher.last(OpPiecePlaced)
	require.True(t, ok)
	assert.True(t, decode[piecePlacedMsg](t, placed).ByBot)
	assert.Equal(t, 1, tm.state.Game.Moves)

	// Next move waits for MoveTicks.
	tm.loop(t)
	assert.Equal(t, 1, tm.state.Game.Moves)
	tm.loop(t)
	assert.Equal(t, 2, tm.state.Game.Moves)

	// Any player command hands control back.
	tm.send(t, "alice", OpRequestHint, nil)
	assert.False(t, tm.state.Autoplaying)
}

func TestUnknownOpcode(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice")
	tm.dispatcher.reset()

	tm.send(t, "alice", 42, nil)

	msg, ok := tm.dispatcher.last(OpGameError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeBadRequest, decode[errorMsg](t, msg).Code)
}

func TestMatchLeave(t *testing.T) {
	tm := newTestMatch(t, nil)
	tm.join(t, "alice", "bob")

	out := tm.mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, 1, tm.state, []runtime.Presence{testPresence{userID: "bob"}})
	assert.Same(t, tm.state, out)
	assert.Equal(t, 0, tm.state.SpectatorCount())

	out = tm.mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, tm.dispatcher, 2, tm.state, []runtime.Presence{testPresence{userID: "alice"}})
	assert.Nil(t, out)
}
