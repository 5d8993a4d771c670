package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantumtown/quantumtown-backend/internal/entity"
	"github.com/quantumtown/quantumtown-backend/internal/quantum"
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetOrCreateGame(ctx context.Context, playerID string) (*entity.GameState, error)
	ConnectToGame(ctx context.Context, gameID, playerID string) (*entity.GameState, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.GameState, error)
	MakeTurn(ctx context.Context, playerID string, board entity.BoardID, row, col int) (*entity.GameState, error)
	GameByPlayerID(ctx context.Context, playerID string) (*entity.GameState, error)
}

// client is one live connection; writeMu serializes frame writes because
// pushes race with handler replies.
type client struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	playerID string
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, message *Message, c *client) error

	mu          sync.Mutex
	connections map[string]*client
	projections map[string]*quantum.Projection
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger,
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *Message, *client) error),

		connections: make(map[string]*client),
		projections: make(map[string]*quantum.Projection),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:leave"] = server.handleLeaveGame
	server.handlers["game:turn"] = server.handleGameTurn

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade to websocket", "error", err)
		return
	}

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	c := &client{conn: conn}

	defer func() {
		that.unregister(c)
		_ = conn.Close()
	}()

	that.readLoop(ctx, c)
}

// readLoop - processes messages from the client until it disconnects.
func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop")

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, &message, c); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// register binds the connection to a player once the connect action
// identified them.
func (that *Server) register(playerID string, c *client) {
	c.playerID = playerID

	that.mu.Lock()
	that.connections[playerID] = c
	that.mu.Unlock()
}

func (that *Server) unregister(c *client) {
	if c.playerID == "" {
		return
	}

	that.mu.Lock()
	if that.connections[c.playerID] == c {
		delete(that.connections, c.playerID)
		delete(that.projections, c.playerID)
	}
	that.mu.Unlock()
}

func (that *Server) sendMessage(c *client, action string, payload ResponsePayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := Message{Action: action, Payload: raw}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err = c.conn.WriteJSON(&message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(c *client, action, message string) error {
	return that.sendMessage(c, action, ResponsePayload{Error: message})
}
