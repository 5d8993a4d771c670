package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quantumtown/quantumtown-backend/internal/entity"
	"github.com/quantumtown/quantumtown-backend/internal/pkg"
	"github.com/quantumtown/quantumtown-backend/internal/quantum"
)

var ErrNoActiveGame = errors.New("no active game")

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.GameState) error
	GetByID(ctx context.Context, id string) (*entity.GameState, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager is the session layer between transports and the engines: it
// owns the registry of live engines and serializes every mutating engine
// call, which the engine itself requires of its runtime.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo

	mu      sync.Mutex
	engines map[string]*quantum.Engine
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,

		engines: make(map[string]*quantum.Engine),
	}
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player := &entity.Player{ID: pkg.GenerateNewSessionID()}

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// GetOrCreateGame returns the player's current game or seats them as X in
// a brand new one.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID string) (*entity.GameState, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		state, stateErr := that.snapshot(ctx, player.GameID)
		if stateErr != nil {
			return nil, stateErr
		}

		return state, nil
	}

	gameID := pkg.GenerateGameID()
	engine := quantum.NewEngine(gameID)

	that.mu.Lock()
	err = engine.Join(player)
	if err == nil {
		that.engines[gameID] = engine
	}
	state := engine.State()
	that.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to join new game: %w", err)
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, &state); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return &state, nil
}

// ConnectToGame seats the player in an existing game. Connecting to a game
// the player already sits in is a no-op returning the current state.
func (that *GameManager) ConnectToGame(ctx context.Context, gameID, playerID string) (*entity.GameState, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == gameID {
		return that.snapshot(ctx, gameID)
	}

	that.mu.Lock()
	engine, ok := that.engines[gameID]
	if !ok {
		that.mu.Unlock()
		return nil, fmt.Errorf("%w: game id %s", ErrNoActiveGame, gameID)
	}

	err = engine.Join(player)
	state := engine.State()
	that.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, &state); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return &state, nil
}

// LeaveGame removes the player from their game. Mid-game this forfeits in
// favor of the opponent; before the second seat was taken it resets the
// game back to a fresh waiting state.
func (that *GameManager) LeaveGame(ctx context.Context, playerID string) (*entity.GameState, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, ErrNoActiveGame
	}

	gameID := player.GameID

	that.mu.Lock()
	engine, ok := that.engines[gameID]
	if !ok {
		that.mu.Unlock()
		return nil, fmt.Errorf("%w: game id %s", ErrNoActiveGame, gameID)
	}

	err = engine.Leave(player)
	state := engine.State()
	if state.IsOver() {
		delete(that.engines, gameID)
	}
	that.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to leave game: %w", err)
	}

	player.GameID = ""
	player.Piece = ""
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, &state); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if state.IsOver() {
		that.releasePlayers(ctx, &state)
	}

	return &state, nil
}

// MakeTurn applies one move for the player and persists the new snapshot.
// Once the game is over the engine is unregistered; the final snapshot
// stays in the repository for outcome reads.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, board entity.BoardID, row, col int) (*entity.GameState, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, ErrNoActiveGame
	}

	that.mu.Lock()
	engine, ok := that.engines[player.GameID]
	if !ok {
		that.mu.Unlock()
		return nil, fmt.Errorf("%w: game id %s", ErrNoActiveGame, player.GameID)
	}

	err = engine.ApplyMove(playerID, board, row, col)
	state := engine.State()
	if err == nil && state.IsOver() {
		delete(that.engines, state.ID)
	}
	that.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, &state); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if state.IsOver() {
		that.releasePlayers(ctx, &state)
	}

	return &state, nil
}

// GameByPlayerID returns the current snapshot of the player's game.
func (that *GameManager) GameByPlayerID(ctx context.Context, playerID string) (*entity.GameState, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, ErrNoActiveGame
	}

	return that.snapshot(ctx, player.GameID)
}

// Outcome returns the per-player result record once the game is over.
func (that *GameManager) Outcome(ctx context.Context, gameID string) (map[string]int, error) {
	that.mu.Lock()
	engine, ok := that.engines[gameID]
	if ok {
		result, over := engine.Outcome()
		that.mu.Unlock()

		if !over {
			return nil, ErrNoActiveGame
		}

		return result, nil
	}
	that.mu.Unlock()

	state, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if !state.IsOver() || state.Result == nil {
		return nil, ErrNoActiveGame
	}

	return state.Result, nil
}

// snapshot reads the state from the live engine when there is one,
// falling back to the stored copy for finished games.
func (that *GameManager) snapshot(ctx context.Context, gameID string) (*entity.GameState, error) {
	that.mu.Lock()
	engine, ok := that.engines[gameID]
	if ok {
		state := engine.State()
		that.mu.Unlock()

		return &state, nil
	}
	that.mu.Unlock()

	state, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return state, nil
}

// releasePlayers clears the seat bookkeeping of everyone still attached to
// a finished game so they can start a new one.
func (that *GameManager) releasePlayers(ctx context.Context, state *entity.GameState) {
	log := that.logger.With("method", "releasePlayers")

	for _, seat := range []*entity.Player{state.X, state.O} {
		if seat == nil {
			continue
		}

		player, err := that.playerRepo.GetByID(ctx, seat.ID)
		if err != nil {
			log.Error("failed to get player", "error", err)
			continue
		}

		player.GameID = ""
		player.Piece = ""

		if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update player", "error", err)
		}
	}
}
