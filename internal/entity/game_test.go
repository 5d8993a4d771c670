package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtown/quantumtown-backend/internal/apperror"
)

func TestGameStateStatusMethods(t *testing.T) {
	t.Run("IsOver returns true when game status is over", func(t *testing.T) {
		// Given: a game with StatusOver
		game := GameState{Status: StatusOver}

		// When: checking if the game is over
		isOver := game.IsOver()

		// Then: it should return true
		assert.True(t, isOver)
	})

	t.Run("IsInProgress returns true when game status is in progress", func(t *testing.T) {
		// Given: a game with StatusInProgress
		game := GameState{Status: StatusInProgress}

		// When: checking if the game is in progress
		isInProgress := game.IsInProgress()

		// Then: it should return true
		assert.True(t, isInProgress)
	})

	t.Run("IsWaiting returns true when game status is waiting", func(t *testing.T) {
		// Given: a freshly created game
		game := NewGameState("123")

		// When: checking if the game is waiting
		isWaiting := game.IsWaiting()

		// Then: it should return true
		assert.True(t, isWaiting)
	})
}

func TestGameState_ConfirmInProgress(t *testing.T) {
	t.Run("Returns nil when game is in progress", func(t *testing.T) {
		// Given: a game with StatusInProgress
		game := GameState{Status: StatusInProgress}

		// When: confirming the game is in progress
		err := game.ConfirmInProgress()

		// Then: it should return nil error
		assert.NoError(t, err)
	})

	t.Run("Returns ErrGameNotInProgress when game is waiting", func(t *testing.T) {
		// Given: a game with StatusWaiting
		game := GameState{Status: StatusWaiting}

		// When: confirming the game is in progress
		err := game.ConfirmInProgress()

		// Then: it should return ErrGameNotInProgress
		assert.ErrorIs(t, err, apperror.ErrGameNotInProgress)
	})

	t.Run("Returns ErrGameNotInProgress when game is over", func(t *testing.T) {
		// Given: a game with StatusOver
		game := GameState{Status: StatusOver}

		// When: confirming the game is in progress
		err := game.ConfirmInProgress()

		// Then: it should return ErrGameNotInProgress
		assert.ErrorIs(t, err, apperror.ErrGameNotInProgress)
	})

	t.Run("Returns error for unknown game status", func(t *testing.T) {
		// Given: a game with unknown status
		game := GameState{Status: "unknown"}

		// When: confirming the game is in progress
		err := game.ConfirmInProgress()

		// Then: it should return an error
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownGameStatus)
	})
}

func TestGameState_TurnPiece(t *testing.T) {
	t.Run("X moves on even move counts, O on odd", func(t *testing.T) {
		// Given: a game with an empty move log
		game := GameState{}

		// Then: it is X's turn
		assert.Equal(t, PieceX, game.TurnPiece())

		// When: appending moves one at a time
		game.Moves = append(game.Moves, Move{Piece: PieceX, Board: BoardA})

		// Then: parity flips to O
		assert.Equal(t, PieceO, game.TurnPiece())

		game.Moves = append(game.Moves, Move{Piece: PieceO, Board: BoardB})
		assert.Equal(t, PieceX, game.TurnPiece())
	})
}

func TestGameState_PieceOf(t *testing.T) {
	t.Run("Maps seated players to their pieces", func(t *testing.T) {
		// Given: a game with both seats taken
		game := GameState{
			X: &Player{ID: "alice"},
			O: &Player{ID: "bob"},
		}

		// When/Then: each seat resolves to its piece
		piece, ok := game.PieceOf("alice")
		require.True(t, ok)
		assert.Equal(t, PieceX, piece)

		piece, ok = game.PieceOf("bob")
		require.True(t, ok)
		assert.Equal(t, PieceO, piece)

		// Then: a stranger holds no piece
		_, ok = game.PieceOf("carol")
		assert.False(t, ok)
	})
}

func TestCellGrid_Mark(t *testing.T) {
	t.Run("Mark returns a copy and leaves the receiver untouched", func(t *testing.T) {
		// Given: an empty grid
		var grid CellGrid

		// When: marking a cell
		marked := grid.Mark(BoardB, 1, 2)

		// Then: only the copy carries the mark
		assert.True(t, marked.At(BoardB, 1, 2))
		assert.False(t, grid.At(BoardB, 1, 2))
	})

	t.Run("Mark on an unknown board is a no-op", func(t *testing.T) {
		// Given: an empty grid
		var grid CellGrid

		// When: marking against a board that does not exist
		marked := grid.Mark(BoardID("D"), 0, 0)

		// Then: nothing changes
		assert.Equal(t, grid, marked)
	})
}

func TestBoardID_Index(t *testing.T) {
	t.Run("Maps the three boards and rejects the rest", func(t *testing.T) {
		assert.Equal(t, 0, BoardA.Index())
		assert.Equal(t, 1, BoardB.Index())
		assert.Equal(t, 2, BoardC.Index())
		assert.Equal(t, -1, BoardID("Z").Index())
	})
}

func TestPiece_Opponent(t *testing.T) {
	t.Run("X and O oppose each other", func(t *testing.T) {
		assert.Equal(t, PieceO, PieceX.Opponent())
		assert.Equal(t, PieceX, PieceO.Opponent())
	})
}
