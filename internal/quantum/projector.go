package quantum

import "github.com/quantumtown/quantumtown-backend/internal/entity"

// VisibleBoards is the three-board composite a single viewer may see,
// empty string for cells showing nothing.
type VisibleBoards [3][entity.BoardSize][entity.BoardSize]entity.Piece

// Projection is one viewer's derived view of the game plus the change
// signals the UI layer consumes.
type Projection struct {
	Boards       VisibleBoards `json:"boards"`
	IsViewerTurn bool          `json:"is_viewer_turn"`
	BoardChanged bool          `json:"board_changed"`
	TurnChanged  bool          `json:"turn_changed"`
}

// Project derives what the given viewer is allowed to see from an
// authoritative snapshot: publicly revealed cells show the first piece
// that played there, the viewer's own hidden marks are always shown, the
// opponent's hidden marks never are. Change signals are computed by
// structural equality against prev and fire only while the game is in
// progress. Project never mutates the snapshot and is safe to call
// concurrently per viewer.
func Project(viewerID string, prev *Projection, state entity.GameState) Projection {
	viewerPiece, seated := state.PieceOf(viewerID)

	var boards VisibleBoards
	for _, move := range state.Moves {
		idx := move.Board.Index()

		if state.PubliclyVisible.At(move.Board, move.Row, move.Col) {
			// first writer wins on revealed cells
			if boards[idx][move.Row][move.Col] == "" {
				boards[idx][move.Row][move.Col] = move.Piece
			}
			continue
		}

		if seated && move.Piece == viewerPiece {
			boards[idx][move.Row][move.Col] = move.Piece
		}
	}

	projection := Projection{
		Boards:       boards,
		IsViewerTurn: seated && state.IsInProgress() && state.TurnPiece() == viewerPiece,
	}

	if !state.IsInProgress() {
		return projection
	}

	projection.BoardChanged = prev == nil || boards != prev.Boards
	projection.TurnChanged = prev == nil || projection.IsViewerTurn != prev.IsViewerTurn

	return projection
}
