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

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/pkg"
	"github.com/rocketscienceinc/gameroom-backend/internal/service"
)

type roomUseCase interface {
	ListJoinableRooms(ctx context.Context) ([]string, error)

	JoinRoom(ctx context.Context, sessionID, playerName, roomHint string, forceNew bool) (*service.JoinResult, error)
	StartBotGame(ctx context.Context, sessionID, playerName string) (*service.JoinResult, error)

	MakeMove(ctx context.Context, sessionID, roomID string, row, col int) (*service.MoveResult, error)

	ResetGame(ctx context.Context, roomID string) (*entity.Room, error)
	ResetScoreboard(ctx context.Context, roomID string) (*entity.Room, error)

	LeaveRoom(ctx context.Context, sessionID, roomID string) (*service.LeaveResult, error)
	Disconnect(ctx context.Context, sessionID string) (*service.LeaveResult, error)
}

// client is one connected session: the socket plus a write lock, since
// gorilla permits a single concurrent writer per connection.
type client struct {
	id   string
	conn *websocket.Conn

	mu sync.Mutex
}

func (that *client) send(action string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Server is the session gateway: it binds each connection to a session
// handle, routes inbound events to the room use case and relays state
// snapshots back to the affected connections.
type Server struct {
	logger *slog.Logger
	rooms  roomUseCase

	upgrader websocket.Upgrader

	clientsMutex sync.RWMutex
	clients      map[string]*client

	handlers map[string]func(ctx context.Context, c *client, payload json.RawMessage) error
}

func New(logger *slog.Logger, rooms roomUseCase) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},

		clients: make(map[string]*client),

		handlers: make(map[string]func(context.Context, *client, json.RawMessage) error),
	}

	server.handlers[actionGetRooms] = server.handleGetRooms
	server.handlers[actionJoinGame] = server.handleJoinGame
	server.handlers[actionStartBotGame] = server.handleStartBotGame
	server.handlers[actionLeaveGame] = server.handleLeaveGame
	server.handlers[actionMakeMove] = server.handleMakeMove
	server.handlers[actionResetGame] = server.handleResetGame
	server.handlers[actionResetScoreboard] = server.handleResetScoreboard

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.HandleWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// HandleWS upgrades the connection, assigns it a session handle and pumps
// inbound messages until the peer goes away.
func (that *Server) HandleWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "HandleWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		id:   pkg.GenerateSessionID(),
		conn: conn,
	}

	that.clientsMutex.Lock()
	that.clients[c.id] = c
	that.clientsMutex.Unlock()

	log = log.With("session", c.id)
	log.Info("WebSocket connection established")

	// fresh connections get the room list right away
	if err = that.handleGetRooms(ctx, c, nil); err != nil {
		log.Error("failed to send initial room list", "error", err)
	}

	that.readLoop(ctx, c)

	that.cleanupConnection(ctx, c)
}

func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop", "session", c.id)

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(c, fmt.Errorf("unknown action: %s", message.Action))
			continue
		}

		if err := handler(ctx, c, message.Payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// cleanupConnection treats an abrupt disconnect as an implicit leave.
func (that *Server) cleanupConnection(ctx context.Context, c *client) {
	log := that.logger.With("method", "cleanupConnection", "session", c.id)

	that.clientsMutex.Lock()
	delete(that.clients, c.id)
	that.clientsMutex.Unlock()

	_ = c.conn.Close()

	result, err := that.rooms.Disconnect(ctx, c.id)
	if err != nil {
		log.Error("failed to clean up session", "error", err)
		return
	}

	if result != nil && result.Room != nil {
		that.notifyPlayerLeft(result)
	}

	that.broadcastRoomList(ctx)

	log.Info("session cleaned up")
}

// notifyPlayerLeft tells the remaining room members a seat was vacated and
// hands them the reset board.
func (that *Server) notifyPlayerLeft(result *service.LeaveResult) {
	playerX, playerO := result.Room.PlayerNames()

	left := playerLeftPayload{
		Message:     fmt.Sprintf("Room %s: %s left. Waiting for a new player...", result.RoomID, result.PlayerName),
		PlayerXName: playerX,
		PlayerOName: playerO,
		ForceMenu:   true,
	}

	that.broadcastToRoom(result.Room, actionPlayerLeft, left)
	that.broadcastToRoom(result.Room, actionUpdate, newStatePayload(result.Room, ""))
}

// broadcastToRoom sends to every seated member with a live connection.
func (that *Server) broadcastToRoom(room *entity.Room, action string, payload any) {
	log := that.logger.With("method", "broadcastToRoom", "room", room.ID)

	for sessionID := range room.Players {
		that.clientsMutex.RLock()
		c, ok := that.clients[sessionID]
		that.clientsMutex.RUnlock()

		if !ok {
			log.Warn("connection not found for player", "session", sessionID)
			continue
		}

		if err := c.send(action, payload); err != nil {
			log.Error("failed to send room message", "session", sessionID, "error", err)
		}
	}
}

// broadcastRoomList pushes the joinable-room list to every connection.
func (that *Server) broadcastRoomList(ctx context.Context) {
	log := that.logger.With("method", "broadcastRoomList")

	rooms, err := that.rooms.ListJoinableRooms(ctx)
	if err != nil {
		log.Error("failed to list rooms", "error", err)
		return
	}

	payload := roomsPayload{Rooms: rooms}

	that.clientsMutex.RLock()
	targets := make([]*client, 0, len(that.clients))
	for _, c := range that.clients {
		targets = append(targets, c)
	}
	that.clientsMutex.RUnlock()

	for _, c := range targets {
		if err = c.send(actionUpdateRooms, payload); err != nil {
			log.Error("failed to send room list", "session", c.id, "error", err)
		}
	}
}

func (that *Server) sendError(c *client, userErr error) {
	if err := c.send(actionError, messagePayload{Message: userErr.Error()}); err != nil {
		that.logger.Error("failed to send error response", "session", c.id, "error", err)
	}
}
