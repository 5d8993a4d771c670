package websocket

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtown/quantumtown-backend/internal/entity"
	"github.com/quantumtown/quantumtown-backend/internal/quantum"
)

func newTestServer() *Server {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

// startedState builds a snapshot with both seats taken, one hidden X mark
// and one revealed collision.
func startedState(t *testing.T) *entity.GameState {
	t.Helper()

	engine := quantum.NewEngine("game1")
	require.NoError(t, engine.Join(&entity.Player{ID: "alice"}))
	require.NoError(t, engine.Join(&entity.Player{ID: "bob"}))

	require.NoError(t, engine.ApplyMove("alice", entity.BoardA, 0, 0))
	require.NoError(t, engine.ApplyMove("bob", entity.BoardA, 0, 0))
	require.NoError(t, engine.ApplyMove("alice", entity.BoardB, 1, 1))

	state := engine.State()
	return &state
}

func TestServer_ProjectFor(t *testing.T) {
	t.Run("The pushed view hides the opponent's unrevealed marks", func(t *testing.T) {
		// Given: a game with a collision on A(0,0) and a hidden X on B(1,1)
		server := newTestServer()
		state := startedState(t)

		// When: building bob's view
		view := server.projectFor("bob", state)

		// Then: the collision shows X, the hidden mark does not appear
		assert.Equal(t, entity.PieceX, view.Boards[0][0][0])
		assert.Empty(t, view.Boards[1][1][1])

		// Then: public fields ride along, the move log does not
		assert.Equal(t, "game1", view.ID)
		assert.Equal(t, entity.StatusInProgress, view.Status)
	})

	t.Run("Consecutive pushes compare against the cached projection", func(t *testing.T) {
		// Given: a server that already pushed once to alice
		server := newTestServer()
		state := startedState(t)
		first := server.projectFor("alice", state)
		assert.True(t, first.BoardChanged)

		// When: pushing the same state again
		second := server.projectFor("alice", state)

		// Then: no change signals fire
		assert.False(t, second.BoardChanged)
		assert.False(t, second.TurnChanged)
	})

	t.Run("Finished games drop the cached projections", func(t *testing.T) {
		// Given: a cached projection and a finished game
		server := newTestServer()
		state := startedState(t)
		server.projectFor("alice", state)
		server.projectFor("bob", state)

		over := *state
		over.Status = entity.StatusOver

		// When: dropping projections for the finished game
		server.dropProjections(&over)

		// Then: the cache is empty for both seats
		server.mu.Lock()
		defer server.mu.Unlock()
		assert.Empty(t, server.projections)
	})
}
