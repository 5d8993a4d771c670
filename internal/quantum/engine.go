package quantum

import (
	"github.com/quantumtown/quantumtown-backend/internal/apperror"
	"github.com/quantumtown/quantumtown-backend/internal/entity"
)

// WinLines are the eight three-in-a-row combinations over flat cell
// indices (row*3 + col).
var WinLines = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Engine is the authoritative rule engine for one quantum game: three
// sub-boards sharing a single move clock, hidden per-piece occupancy,
// public visibility, scores and turn order. Callers must serialize
// Join/Leave/ApplyMove against a given instance; no operation blocks.
type Engine struct {
	state        entity.GameState
	boards       map[entity.BoardID]*SubBoard
	occupancy    map[entity.Piece]entity.CellGrid
	boardWinners map[entity.BoardID]entity.Piece
}

func NewEngine(id string) *Engine {
	that := &Engine{}
	that.resetState(id)
	return that
}

func (that *Engine) resetState(id string) {
	that.state = entity.NewGameState(id)
	that.boards = map[entity.BoardID]*SubBoard{
		entity.BoardA: NewSubBoard(),
		entity.BoardB: NewSubBoard(),
		entity.BoardC: NewSubBoard(),
	}
	that.occupancy = map[entity.Piece]entity.CellGrid{
		entity.PieceX: {},
		entity.PieceO: {},
	}
	that.boardWinners = make(map[entity.BoardID]entity.Piece)
}

// Join seats the player: first joiner becomes X and the game stays
// waiting, second becomes O and the game starts.
func (that *Engine) Join(player *entity.Player) error {
	if _, ok := that.state.PieceOf(player.ID); ok {
		return apperror.ErrAlreadyInGame
	}

	switch {
	case that.state.X == nil:
		player.Piece = entity.PieceX
		player.GameID = that.state.ID
		seat := *player
		that.state.X = &seat
	case that.state.O == nil:
		player.Piece = entity.PieceO
		player.GameID = that.state.ID
		seat := *player
		that.state.O = &seat
		that.state.Status = entity.StatusInProgress
		that.state.Winner = ""
		that.state.Result = nil
	default:
		return apperror.ErrGameFull
	}

	for _, board := range entity.Boards() {
		that.boards[board].Join(player.ID)
	}

	return nil
}

// Leave removes the player. A mid-game departure forfeits: the opponent
// wins immediately. A departure before the second seat was taken resets
// the whole game to a fresh waiting state.
func (that *Engine) Leave(player *entity.Player) error {
	piece, ok := that.state.PieceOf(player.ID)
	if !ok {
		return apperror.ErrPlayerNotInGame
	}

	for _, board := range entity.Boards() {
		// a terminal board rejecting a leave is expected and harmless
		_ = that.boards[board].Leave(player.ID)
	}

	if that.state.X != nil && that.state.O != nil {
		remaining := that.state.PlayerByPiece(piece.Opponent())
		that.state.Winner = remaining.ID
		that.state.Status = entity.StatusOver
		that.state.Result = map[string]int{
			remaining.ID: that.scoreOf(piece.Opponent()),
		}

		if piece == entity.PieceX {
			that.state.X = nil
		} else {
			that.state.O = nil
		}

		return nil
	}

	// lobby abandoned before the game started
	that.resetState(that.state.ID)

	return nil
}

// ApplyMove validates the command fully before mutating anything, resolves
// quantum collisions, then runs win and termination detection. A rejected
// move leaves the state untouched.
func (that *Engine) ApplyMove(playerID string, board entity.BoardID, row, col int) error {
	if err := that.state.ConfirmInProgress(); err != nil {
		return err
	}

	piece, ok := that.state.PieceOf(playerID)
	if !ok {
		return apperror.ErrPlayerNotInGame
	}

	if that.state.TurnPiece() != piece {
		return apperror.ErrNotYourTurn
	}

	if row < 0 || row >= entity.BoardSize || col < 0 || col >= entity.BoardSize {
		return apperror.ErrInvalidPosition
	}

	if board.Index() < 0 {
		return apperror.ErrInvalidPosition
	}

	if _, won := that.boardWinners[board]; won {
		return apperror.ErrInvalidPosition
	}

	if that.occupancy[piece].At(board, row, col) {
		return apperror.ErrPositionNotEmpty
	}

	prior, occupied := that.firstOccupant(board, row, col)
	if occupied {
		// re-checked against the true occupant
		if prior == piece {
			return apperror.ErrPositionNotEmpty
		}

		// collision: both pieces now hold this cell, reveal it publicly
		if !that.state.PubliclyVisible.At(board, row, col) {
			that.state.PubliclyVisible = that.state.PubliclyVisible.Mark(board, row, col)
		}
	}

	that.occupancy[piece] = that.occupancy[piece].Mark(board, row, col)

	move := entity.Move{Piece: piece, Board: board, Row: row, Col: col}
	if !occupied {
		// the sub-board records first claims only; a collision adds no
		// newly claimed cell
		that.boards[board].RecordMove(move)
	}
	that.state.Moves = append(that.state.Moves, move)

	that.detectWins(piece)
	that.detectTermination()

	return nil
}

// firstOccupant reports the piece that first played the cell, scanning the
// accepted move log in arrival order.
func (that *Engine) firstOccupant(board entity.BoardID, row, col int) (entity.Piece, bool) {
	for _, move := range that.state.Moves {
		if move.Board == board && move.Row == row && move.Col == col {
			return move.Piece, true
		}
	}
	return "", false
}

// detectWins scans only the mover's occupancy: a move sets one piece's
// occupancy, so only that piece can newly complete a line.
func (that *Engine) detectWins(piece entity.Piece) {
	for _, board := range entity.Boards() {
		if _, won := that.boardWinners[board]; won {
			continue
		}

		if !hasLine(that.occupancy[piece], board) {
			continue
		}

		that.boardWinners[board] = piece
		if piece == entity.PieceX {
			that.state.XScore++
		} else {
			that.state.OScore++
		}

		that.boards[board].MarkWon(that.state.PlayerByPiece(piece).ID)
	}
}

// detectTermination ends the game once every board is won or has every
// cell claimed.
func (that *Engine) detectTermination() {
	for _, board := range entity.Boards() {
		if _, won := that.boardWinners[board]; won {
			continue
		}
		if !that.boards[board].IsFull() {
			return
		}
	}

	that.state.Status = entity.StatusOver

	switch {
	case that.state.XScore > that.state.OScore:
		that.state.Winner = that.state.X.ID
	case that.state.OScore > that.state.XScore:
		that.state.Winner = that.state.O.ID
	default:
		that.state.Winner = ""
	}

	result := make(map[string]int)
	if that.state.X != nil {
		result[that.state.X.ID] = that.state.XScore
	}
	if that.state.O != nil {
		result[that.state.O.ID] = that.state.OScore
	}
	that.state.Result = result
}

func (that *Engine) scoreOf(piece entity.Piece) int {
	if piece == entity.PieceX {
		return that.state.XScore
	}
	return that.state.OScore
}

// State returns a detached snapshot of the authoritative state, safe to
// serialize and to hand to projectors concurrently.
func (that *Engine) State() entity.GameState {
	snapshot := that.state

	snapshot.Moves = append([]entity.Move(nil), that.state.Moves...)

	if that.state.X != nil {
		seat := *that.state.X
		snapshot.X = &seat
	}
	if that.state.O != nil {
		seat := *that.state.O
		snapshot.O = &seat
	}

	if that.state.Result != nil {
		result := make(map[string]int, len(that.state.Result))
		for id, score := range that.state.Result {
			result[id] = score
		}
		snapshot.Result = result
	}

	return snapshot
}

// Outcome returns the per-player result record once the game is over.
func (that *Engine) Outcome() (map[string]int, bool) {
	if !that.state.IsOver() || that.state.Result == nil {
		return nil, false
	}

	result := make(map[string]int, len(that.state.Result))
	for id, score := range that.state.Result {
		result[id] = score
	}

	return result, true
}

// BoardWinners returns the partial board-to-piece winner mapping.
func (that *Engine) BoardWinners() map[entity.BoardID]entity.Piece {
	winners := make(map[entity.BoardID]entity.Piece, len(that.boardWinners))
	for board, piece := range that.boardWinners {
		winners[board] = piece
	}
	return winners
}

func hasLine(grid entity.CellGrid, board entity.BoardID) bool {
	idx := board.Index()
	if idx < 0 {
		return false
	}

	for _, line := range WinLines {
		a, b, c := line[0], line[1], line[2]
		if grid[idx][a/3][a%3] && grid[idx][b/3][b%3] && grid[idx][c/3][c%3] {
			return true
		}
	}

	return false
}
