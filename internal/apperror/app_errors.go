package apperror

import "errors"

// Every error here is a rejected caller command: the game state is left
// unchanged and nothing is retryable.
var (
	ErrAlreadyInGame     = errors.New("player is already in the game")
	ErrGameFull          = errors.New("game already has two players")
	ErrPlayerNotInGame   = errors.New("player is not in the game")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrInvalidPosition   = errors.New("invalid position")
	ErrPositionNotEmpty  = errors.New("position is not empty")
)
