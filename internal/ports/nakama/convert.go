package nakama

import (
	"blockblast/internal/app"
	"blockblast/internal/domain"
)

type blockMsg struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type pieceMsg struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Color  string     `json:"color"`
	Blocks []blockMsg `json:"blocks"`
}

type lineMsg struct {
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

type cellMsg struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// placeRequest is the OpPlacePiece payload. X and Y are required.
type placeRequest struct {
	PieceID string `json:"piece_id"`
	X       *int   `json:"x"`
	Y       *int   `json:"y"`
}

type rotateRequest struct {
	PieceID string `json:"piece_id"`
}

type snapshotMsg struct {
	Phase        string     `json:"phase"`
	Grid         [][]string `json:"grid"`
	Score        int        `json:"score"`
	LinesCleared int        `json:"lines_cleared"`
	Moves        int        `json:"moves"`
	BestCombo    int        `json:"best_combo"`
	Pieces       []pieceMsg `json:"pieces"`
	PlayerID     string     `json:"player_id"`
	Spectator    bool       `json:"spectator"`
	Autoplay     bool       `json:"autoplay"`
	Rotation     bool       `json:"rotation"`
}

type gameStartedMsg struct {
	Phase  string     `json:"phase"`
	Pieces []pieceMsg `json:"pieces"`
}

type piecePlacedMsg struct {
	Piece  pieceMsg `json:"piece"`
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Points int      `json:"points"`
	Score  int      `json:"score"`
	ByBot  bool     `json:"by_bot,omitempty"`
}

type linesClearedMsg struct {
	Lines        []lineMsg `json:"lines"`
	Cells        []cellMsg `json:"cells"`
	Effect       string    `json:"effect"`
	LinesCleared int       `json:"lines_cleared"`
}

type piecesRefilledMsg struct {
	Pieces []pieceMsg `json:"pieces"`
}

type gameOverMsg struct {
	Score        int `json:"score"`
	LinesCleared int `json:"lines_cleared"`
	Moves        int `json:"moves"`
	BestCombo    int `json:"best_combo"`
}

type placementRejectedMsg struct {
	PieceID string `json:"piece_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Reason  string `json:"reason"`
}

type pieceRotatedMsg struct {
	Piece pieceMsg `json:"piece"`
}

type hintMsg struct {
	Found   bool   `json:"found"`
	PieceID string `json:"piece_id,omitempty"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

type errorMsg struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type shapeMsg struct {
	Name   string     `json:"name"`
	Blocks []blockMsg `json:"blocks"`
}

type shapesResponse struct {
	GridSize  int        `json:"grid_size"`
	BatchSize int        `json:"batch_size"`
	Shapes    []shapeMsg `json:"shapes"`
	Palette   []string   `json:"palette"`
}

type createMatchResponse struct {
	MatchID string `json:"match_id"`
}

type liveMatchMsg struct {
	MatchID string `json:"match_id"`
	Size    int32  `json:"size"`
	Label   string `json:"label"`
}

type listMatchesResponse struct {
	Matches []liveMatchMsg `json:"matches"`
}

func blocksToMsg(blocks []domain.BlockPosition) []blockMsg {
	out := make([]blockMsg, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockMsg{X: b.X, Y: b.Y})
	}
	return out
}

func pieceToMsg(p domain.Piece) pieceMsg {
	return pieceMsg{ID: p.ID, Name: p.Name, Color: p.Color, Blocks: blocksToMsg(p.Blocks)}
}

func piecesToMsg(pieces []domain.Piece) []pieceMsg {
	out := make([]pieceMsg, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, pieceToMsg(p))
	}
	return out
}

func gridToMsg(g domain.Grid) [][]string {
	rows := make([][]string, domain.GridSize)
	for y := range rows {
		row := make([]string, domain.GridSize)
		for x := range row {
			row[x] = string(g[y][x])
		}
		rows[y] = row
	}
	return rows
}

func linesToMsg(lines []domain.ClearedLine) []lineMsg {
	out := make([]lineMsg, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineMsg{Kind: string(l.Kind), Index: l.Index})
	}
	return out
}

func cellsToMsg(cells []domain.ClearedCell) []cellMsg {
	out := make([]cellMsg, 0, len(cells))
	for _, c := range cells {
		out = append(out, cellMsg{X: c.X, Y: c.Y, Color: string(c.Color)})
	}
	return out
}

func snapshotToMsg(s domain.Snapshot) snapshotMsg {
	return snapshotMsg{
		Phase:        string(s.Phase),
		Grid:         gridToMsg(s.Grid),
		Score:        s.Score,
		LinesCleared: s.LinesCleared,
		Moves:        s.Moves,
		BestCombo:    s.BestCombo,
		Pieces:       piecesToMsg(s.Pieces),
	}
}

// eventToMsg maps an app event to its op code and wire payload.
func eventToMsg(ev app.Event) (int64, any, bool) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		return OpGameStarted, gameStartedMsg{Phase: string(p.Phase), Pieces: piecesToMsg(p.Pieces)}, true
	case app.PiecePlacedPayload:
		return OpPiecePlaced, piecePlacedMsg{Piece: pieceToMsg(p.Piece), X: p.X, Y: p.Y, Points: p.Points, Score: p.Score}, true
	case app.LinesClearedPayload:
		return OpLinesCleared, linesClearedMsg{
			Lines:        linesToMsg(p.Lines),
			Cells:        cellsToMsg(p.Cells),
			Effect:       string(p.Effect),
			LinesCleared: p.LinesCleared,
		}, true
	case app.PiecesRefilledPayload:
		return OpPiecesRefilled, piecesRefilledMsg{Pieces: piecesToMsg(p.Pieces)}, true
	case app.GameOverPayload:
		return OpGameOver, gameOverMsg{Score: p.Score, LinesCleared: p.LinesCleared, Moves: p.Moves, BestCombo: p.BestCombo}, true
	case app.PlacementRejectedPayload:
		return OpPlacementRejected, placementRejectedMsg{PieceID: p.PieceID, X: p.X, Y: p.Y, Reason: string(p.Reason)}, true
	case app.PieceRotatedPayload:
		return OpPieceRotated, pieceRotatedMsg{Piece: pieceToMsg(p.Piece)}, true
	default:
		return 0, nil, false
	}
}
