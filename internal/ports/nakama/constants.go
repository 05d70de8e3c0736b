package nakama

const (
	// GameName tags match labels and leaderboard metadata.
	GameName = "blockblast"

	// MatchNameBlockBlast is the authoritative match handler name registered with Nakama.
	MatchNameBlockBlast = "blockblast_match"

	RpcCreateMatch = "blockblast_create_match"
	RpcListMatches = "blockblast_list_matches"
	RpcShapes      = "blockblast_shapes"

	// ConfigPath and BotIdentitiesPath are relative to the Nakama data directory.
	ConfigPath        = "data/blockblast.yaml"
	BotIdentitiesPath = "data/bot_identities.json"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame   int64 = 1
	OpPlacePiece  int64 = 2
	OpRestartGame int64 = 3
	OpRequestHint int64 = 4
	OpRotatePiece int64 = 5

	// Server -> Client events
	OpSnapshot          int64 = 100 // sent privately on join
	OpGameStarted       int64 = 101
	OpPiecePlaced       int64 = 102
	OpLinesCleared      int64 = 103
	OpPiecesRefilled    int64 = 104
	OpGameOver          int64 = 105
	OpPlacementRejected int64 = 106 // sent privately
	OpHint              int64 = 107 // sent privately
	OpGameError         int64 = 108 // sent privately
	OpPieceRotated      int64 = 109
)

// Error codes carried by OpGameError.
const (
	ErrCodeBadRequest = 400
	ErrCodeForbidden  = 403
	ErrCodeConflict   = 409
	ErrCodeDisabled   = 410
)
