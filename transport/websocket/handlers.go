package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quantumtown/quantumtown-backend/internal/entity"
	"github.com/quantumtown/quantumtown-backend/internal/quantum"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq PlayerPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to get or create player", "error", err)
		return that.sendErrorResponse(c, msg.Action, "failed to create a new player")
	}

	that.register(player.ID, c)

	payloadResp := ResponsePayload{Player: player}

	// a reconnecting player gets their game pushed right away
	if player.GameID != "" {
		state, gameErr := that.gameUseCase.GameByPlayerID(ctx, player.ID)
		if gameErr != nil {
			log.Error("failed to get game", "gameID", player.GameID, "error", gameErr)
			return that.sendErrorResponse(c, msg.Action, "failed to get the game")
		}

		payloadResp.Game = that.projectFor(player.ID, state)
	}

	if err = that.sendMessage(c, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleNewGame")

	var payloadReq PlayerPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := that.gameUseCase.GetOrCreateGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to get or create game", "error", err)
		return that.sendErrorResponse(c, msg.Action, "failed to create a game")
	}

	that.broadcastGame(msg.Action, state)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleJoinGame")

	var payloadReq JoinGamePayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := that.gameUseCase.ConnectToGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to join game", "gameID", payloadReq.Game.ID, "error", err)
		return that.sendErrorResponse(c, msg.Action, err.Error())
	}

	that.broadcastGame(msg.Action, state)

	return nil
}

func (that *Server) handleLeaveGame(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleLeaveGame")

	var payloadReq PlayerPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := that.gameUseCase.LeaveGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to leave game", "error", err)
		return that.sendErrorResponse(c, msg.Action, err.Error())
	}

	// the leaver is no longer seated; confirm with their public view
	if err = that.sendMessage(c, msg.Action, ResponsePayload{
		Game: that.projectFor(payloadReq.Player.ID, state),
	}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	that.broadcastGame(msg.Action, state)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleGameTurn")

	var payloadReq TurnPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := that.gameUseCase.MakeTurn(ctx, payloadReq.Player.ID, payloadReq.Board, payloadReq.Row, payloadReq.Col)
	if err != nil {
		// a rejected command goes back to the offending client only
		log.Info("turn rejected", "playerID", payloadReq.Player.ID, "error", err)
		return that.sendErrorResponse(c, msg.Action, err.Error())
	}

	that.broadcastGame(msg.Action, state)

	return nil
}

// broadcastGame pushes the new state to every seated player, masked per
// viewer by the projector against that viewer's previous projection.
func (that *Server) broadcastGame(action string, state *entity.GameState) {
	log := that.logger.With("method", "broadcastGame")

	for _, seat := range []*entity.Player{state.X, state.O} {
		if seat == nil {
			continue
		}

		that.mu.Lock()
		c, connected := that.connections[seat.ID]
		that.mu.Unlock()

		if !connected {
			continue
		}

		view := that.projectFor(seat.ID, state)

		if err := that.sendMessage(c, action, ResponsePayload{Player: seat, Game: view}); err != nil {
			log.Error("failed to push game state", "playerID", seat.ID, "error", err)
		}
	}

	if state.IsOver() {
		that.dropProjections(state)
	}
}

// projectFor runs the projector for one viewer and remembers the result
// for the next change comparison.
func (that *Server) projectFor(viewerID string, state *entity.GameState) *GameView {
	that.mu.Lock()
	prev := that.projections[viewerID]
	that.mu.Unlock()

	projection := quantum.Project(viewerID, prev, *state)

	that.mu.Lock()
	that.projections[viewerID] = &projection
	that.mu.Unlock()

	return &GameView{
		ID:           state.ID,
		Status:       state.Status,
		Winner:       state.Winner,
		XScore:       state.XScore,
		OScore:       state.OScore,
		Boards:       projection.Boards,
		IsViewerTurn: projection.IsViewerTurn,
		BoardChanged: projection.BoardChanged,
		TurnChanged:  projection.TurnChanged,
		Result:       state.Result,
	}
}

// dropProjections forgets cached projections once a game ends so a later
// game starts from a clean comparison base.
func (that *Server) dropProjections(state *entity.GameState) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, seat := range []*entity.Player{state.X, state.O} {
		if seat != nil {
			delete(that.projections, seat.ID)
		}
	}
}
