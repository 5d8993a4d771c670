package websocket

import (
	"encoding/json"

	"github.com/quantumtown/quantumtown-backend/internal/entity"
	"github.com/quantumtown/quantumtown-backend/internal/quantum"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PlayerPayload struct {
	Player struct {
		ID string `json:"id"`
	} `json:"player"`
}

type JoinGamePayload struct {
	Player struct {
		ID string `json:"id"`
	} `json:"player"`
	Game struct {
		ID string `json:"id"`
	} `json:"game"`
}

type TurnPayload struct {
	Player struct {
		ID string `json:"id"`
	} `json:"player"`
	Board entity.BoardID `json:"board"`
	Row   int            `json:"row"`
	Col   int            `json:"col"`
}

// GameView is one viewer's slice of the game: the projector-masked boards
// plus public scores and status. The raw move log and hidden occupancy
// never leave the server.
type GameView struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Winner       string                `json:"winner,omitempty"`
	XScore       int                   `json:"x_score"`
	OScore       int                   `json:"o_score"`
	Boards       quantum.VisibleBoards `json:"boards"`
	IsViewerTurn bool                  `json:"is_viewer_turn"`
	BoardChanged bool                  `json:"board_changed"`
	TurnChanged  bool                  `json:"turn_changed"`
	Result       map[string]int        `json:"result,omitempty"`
}

type ResponsePayload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *GameView      `json:"game,omitempty"`
	Error  string         `json:"error,omitempty"`
}
