package quantum

import (
	"errors"

	"github.com/quantumtown/quantumtown-backend/internal/entity"
)

var ErrBoardOver = errors.New("board is already over")

// SubBoard tracks one grid's move list and win status. It is a bookkeeping
// mirror: validation and scoring decisions belong to the Engine, which
// works off hidden occupancy because a single cell may carry one move per
// piece under quantum rules.
type SubBoard struct {
	moves   []entity.Move
	players []string
	status  string
	winner  string
}

func NewSubBoard() *SubBoard {
	return &SubBoard{status: entity.StatusWaiting}
}

func (that *SubBoard) Join(playerID string) {
	that.players = append(that.players, playerID)
}

// Leave rejects departures from a terminal board; the Engine swallows
// that rejection during a full-game leave.
func (that *SubBoard) Leave(playerID string) error {
	if that.status == entity.StatusOver {
		return ErrBoardOver
	}

	for i, id := range that.players {
		if id == playerID {
			that.players = append(that.players[:i], that.players[i+1:]...)
			return nil
		}
	}

	return nil
}

// RecordMove trusts the caller: the Engine has already validated legality
// and feeds the board first claims only, never collision moves.
func (that *SubBoard) RecordMove(move entity.Move) {
	that.moves = append(that.moves, move)
	that.status = entity.StatusInProgress
}

// MarkWon closes the board; from here on the Engine refuses moves on it.
func (that *SubBoard) MarkWon(winnerID string) {
	that.status = entity.StatusOver
	that.winner = winnerID
}

func (that *SubBoard) MoveCount() int {
	return len(that.moves)
}

func (that *SubBoard) Winner() string {
	return that.winner
}

func (that *SubBoard) Status() string {
	return that.status
}

func (that *SubBoard) IsOver() bool {
	return that.status == entity.StatusOver
}

// IsFull reports whether nine moves have been recorded. Each move claims
// a distinct cell, so nine of them means no empty cell remains.
func (that *SubBoard) IsFull() bool {
	return len(that.moves) >= entity.BoardSize*entity.BoardSize
}
