package entity

import (
	"errors"
	"fmt"

	"github.com/quantumtown/quantumtown-backend/internal/apperror"
)

const (
	StatusOver       = "over"
	StatusInProgress = "in_progress"
	StatusWaiting    = "waiting"
)

const (
	PieceX Piece = "X"
	PieceO Piece = "O"
)

const (
	BoardA BoardID = "A"
	BoardB BoardID = "B"
	BoardC BoardID = "C"
)

const BoardSize = 3

var ErrUnknownGameStatus = errors.New("unknown game status")

// Piece is one of the two marks; X always belongs to the first joiner.
type Piece string

func (that Piece) Opponent() Piece {
	if that == PieceX {
		return PieceO
	}
	return PieceX
}

// BoardID names one of the three grids sharing the global move clock.
type BoardID string

func Boards() [3]BoardID {
	return [3]BoardID{BoardA, BoardB, BoardC}
}

// Index maps a board to its slot in a CellGrid, -1 for unknown boards.
func (that BoardID) Index() int {
	switch that {
	case BoardA:
		return 0
	case BoardB:
		return 1
	case BoardC:
		return 2
	default:
		return -1
	}
}

// Move is immutable once accepted into the game's move log.
type Move struct {
	Piece Piece   `json:"piece"`
	Board BoardID `json:"board"`
	Row   int     `json:"row"`
	Col   int     `json:"col"`
}

// CellGrid marks one boolean per cell across the three boards. It is a
// value type: assignment copies the whole cube, which is what gives
// Mark its clone-on-write semantics.
type CellGrid [3][BoardSize][BoardSize]bool

func (that CellGrid) At(board BoardID, row, col int) bool {
	idx := board.Index()
	if idx < 0 {
		return false
	}
	return that[idx][row][col]
}

// Mark returns a copy of the grid with the given cell set. The receiver
// is left untouched so prior snapshots keep their old cube.
func (that CellGrid) Mark(board BoardID, row, col int) CellGrid {
	idx := board.Index()
	if idx < 0 {
		return that
	}
	that[idx][row][col] = true
	return that
}

// GameState is the authoritative server-owned snapshot. Hidden per-piece
// occupancy lives in the engine, never here.
type GameState struct {
	ID              string         `json:"id"`
	Moves           []Move         `json:"moves"`
	XScore          int            `json:"x_score"`
	OScore          int            `json:"o_score"`
	PubliclyVisible CellGrid       `json:"publicly_visible"`
	X               *Player        `json:"x,omitempty"`
	O               *Player        `json:"o,omitempty"`
	Status          string         `json:"status"`
	Winner          string         `json:"winner,omitempty"`
	Result          map[string]int `json:"result,omitempty"`
}

func NewGameState(id string) GameState {
	return GameState{
		ID:     id,
		Status: StatusWaiting,
	}
}

func (that *GameState) MoveCount() int {
	return len(that.Moves)
}

// TurnPiece derives whose turn it is from move-count parity: even means X,
// odd means O, counted across all three boards combined.
func (that *GameState) TurnPiece() Piece {
	if that.MoveCount()%2 == 0 {
		return PieceX
	}
	return PieceO
}

// PieceOf reports which piece the given player holds, if any.
func (that *GameState) PieceOf(playerID string) (Piece, bool) {
	if that.X != nil && that.X.ID == playerID {
		return PieceX, true
	}
	if that.O != nil && that.O.ID == playerID {
		return PieceO, true
	}
	return "", false
}

func (that *GameState) PlayerByPiece(piece Piece) *Player {
	if piece == PieceX {
		return that.X
	}
	return that.O
}

func (that *GameState) IsOver() bool {
	return that.Status == StatusOver
}

func (that *GameState) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *GameState) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *GameState) ConfirmInProgress() error {
	switch {
	case that.IsInProgress():
		return nil
	case that.IsWaiting(), that.IsOver():
		return apperror.ErrGameNotInProgress
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}
