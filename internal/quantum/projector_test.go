package quantum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtown/quantumtown-backend/internal/entity"
)

func TestProject_Visibility(t *testing.T) {
	t.Run("Players see their own hidden marks but not the opponent's", func(t *testing.T) {
		// Given: a game where each player holds one hidden mark
		engine := newStartedEngine(t)
		playMoves(t, engine, []testMove{
			{"alice", entity.BoardA, 0, 0},
			{"bob", entity.BoardB, 1, 1},
		})
		state := engine.State()

		// When: projecting for X
		aliceView := Project("alice", nil, state)

		// Then: X sees their own mark only
		assert.Equal(t, entity.PieceX, aliceView.Boards[0][0][0])
		assert.Empty(t, aliceView.Boards[1][1][1])

		// When: projecting for O
		bobView := Project("bob", nil, state)

		// Then: O sees their own mark only
		assert.Empty(t, bobView.Boards[0][0][0])
		assert.Equal(t, entity.PieceO, bobView.Boards[1][1][1])
	})

	t.Run("A revealed cell shows the first piece that played it to both viewers", func(t *testing.T) {
		// Given: a collision on A(0,0), X played it first
		engine := newStartedEngine(t)
		playMoves(t, engine, []testMove{
			{"alice", entity.BoardA, 0, 0},
			{"bob", entity.BoardB, 1, 1},
			{"alice", entity.BoardC, 2, 2},
			{"bob", entity.BoardA, 0, 0},
		})
		state := engine.State()
		require.True(t, state.PubliclyVisible.At(entity.BoardA, 0, 0))

		// When: projecting for both players
		aliceView := Project("alice", nil, state)
		bobView := Project("bob", nil, state)

		// Then: both see X on the collided cell
		assert.Equal(t, entity.PieceX, aliceView.Boards[0][0][0])
		assert.Equal(t, entity.PieceX, bobView.Boards[0][0][0])
	})

	t.Run("A spectator sees only publicly revealed cells", func(t *testing.T) {
		// Given: one hidden mark and one revealed collision
		engine := newStartedEngine(t)
		playMoves(t, engine, []testMove{
			{"alice", entity.BoardA, 0, 0},
			{"bob", entity.BoardA, 0, 0},
			{"alice", entity.BoardB, 2, 0},
		})
		state := engine.State()

		// When: projecting for a viewer in neither seat
		view := Project("carol", nil, state)

		// Then: only the collided cell is visible
		assert.Equal(t, entity.PieceX, view.Boards[0][0][0])
		assert.Empty(t, view.Boards[1][2][0])
		assert.False(t, view.IsViewerTurn)
	})
}

func TestProject_TurnSignals(t *testing.T) {
	t.Run("IsViewerTurn follows move parity for the seated viewer", func(t *testing.T) {
		// Given: a started game, X to move
		engine := newStartedEngine(t)
		state := engine.State()

		// Then: it is X's turn, not O's
		assert.True(t, Project("alice", nil, state).IsViewerTurn)
		assert.False(t, Project("bob", nil, state).IsViewerTurn)

		// When: X moves
		playMoves(t, engine, []testMove{{"alice", entity.BoardA, 0, 0}})
		state = engine.State()

		// Then: the turn flag flips
		assert.False(t, Project("alice", nil, state).IsViewerTurn)
		assert.True(t, Project("bob", nil, state).IsViewerTurn)
	})

	t.Run("Change signals compare structurally against the previous projection", func(t *testing.T) {
		// Given: a started game and a first projection for X
		engine := newStartedEngine(t)
		first := Project("alice", nil, engine.State())

		// When: projecting the same state again
		second := Project("alice", &first, engine.State())

		// Then: nothing changed
		assert.False(t, second.BoardChanged)
		assert.False(t, second.TurnChanged)

		// When: X plays a cell
		playMoves(t, engine, []testMove{{"alice", entity.BoardA, 1, 1}})
		third := Project("alice", &second, engine.State())

		// Then: both the board and the turn changed for X
		assert.True(t, third.BoardChanged)
		assert.True(t, third.TurnChanged)

		// When: O moves somewhere X cannot see
		playMoves(t, engine, []testMove{{"bob", entity.BoardB, 0, 0}})
		fourth := Project("alice", &third, engine.State())

		// Then: X's board is unchanged but the turn came back
		assert.False(t, fourth.BoardChanged)
		assert.True(t, fourth.TurnChanged)
	})

	t.Run("No signals fire while the game is waiting", func(t *testing.T) {
		// Given: a game with only one seated player
		engine := NewEngine("game1")
		require.NoError(t, engine.Join(&entity.Player{ID: "alice"}))

		// When: projecting with no previous snapshot
		view := Project("alice", nil, engine.State())

		// Then: nothing fires and it is nobody's turn
		assert.False(t, view.BoardChanged)
		assert.False(t, view.TurnChanged)
		assert.False(t, view.IsViewerTurn)
	})

	t.Run("No signals fire once the game is over", func(t *testing.T) {
		// Given: a finished game
		engine := newStartedEngine(t)
		prev := Project("alice", nil, engine.State())
		require.NoError(t, engine.Leave(&entity.Player{ID: "bob"}))

		// When: projecting the terminal state
		view := Project("alice", &prev, engine.State())

		// Then: nothing fires
		assert.False(t, view.BoardChanged)
		assert.False(t, view.TurnChanged)
		assert.False(t, view.IsViewerTurn)
	})
}

func TestProject_DoesNotMutateState(t *testing.T) {
	t.Run("Projecting leaves the snapshot untouched", func(t *testing.T) {
		// Given: a game with hidden marks and a collision
		engine := newStartedEngine(t)
		playMoves(t, engine, []testMove{
			{"alice", entity.BoardA, 0, 0},
			{"bob", entity.BoardA, 0, 0},
		})
		state := engine.State()
		before := engine.State()

		// When: projecting for every kind of viewer
		Project("alice", nil, state)
		Project("bob", nil, state)
		Project("carol", nil, state)

		// Then: the snapshot is unchanged
		assert.Equal(t, before, state)
	})
}
