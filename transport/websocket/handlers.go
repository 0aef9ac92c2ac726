package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/service"
)

var errInvalidMovePayload = errors.New("row and col must be integers between 0 and 2")

func (that *Server) handleGetRooms(ctx context.Context, c *client, _ json.RawMessage) error {
	rooms, err := that.rooms.ListJoinableRooms(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}

	if err = c.send(actionUpdateRooms, roomsPayload{Rooms: rooms}); err != nil {
		return fmt.Errorf("failed to send room list: %w", err)
	}

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleJoinGame", "session", c.id)

	var req joinGamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	result, err := that.rooms.JoinRoom(ctx, c.id, req.PlayerName, req.RoomID, req.CreateNew)
	if err != nil {
		log.Warn("join rejected", "error", err)
		that.sendError(c, err)
		return nil
	}

	room := result.Room
	log = log.With("room", room.ID)

	if err = c.send(actionAssignRole, that.newAssignRolePayload(result)); err != nil {
		log.Error("failed to send role assignment", "error", err)
	}

	if result.Started {
		start := newStatePayload(room, fmt.Sprintf("Room %s: the game has begun!", room.ID))
		that.broadcastToRoom(room, actionGameStart, start)
		that.broadcastToRoom(room, actionUpdate, newStatePayload(room, ""))
	} else if err = c.send(actionUpdate, newStatePayload(room, "")); err != nil {
		log.Error("failed to send state snapshot", "error", err)
	}

	that.broadcastRoomList(ctx)

	log.Info("player joined game", "role", result.Role)

	return nil
}

func (that *Server) handleStartBotGame(ctx context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleStartBotGame", "session", c.id)

	var req startBotGamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	result, err := that.rooms.StartBotGame(ctx, c.id, req.PlayerName)
	if err != nil {
		log.Warn("bot game rejected", "error", err)
		that.sendError(c, err)
		return nil
	}

	room := result.Room
	log = log.With("room", room.ID)

	// no other human can ever join, so everything goes to the starter only
	if err = c.send(actionAssignRole, that.newAssignRolePayload(result)); err != nil {
		log.Error("failed to send role assignment", "error", err)
	}

	start := newStatePayload(room, fmt.Sprintf("Room %s: the game against the bot has begun!", room.ID))
	if err = c.send(actionGameStart, start); err != nil {
		log.Error("failed to send game start", "error", err)
	}

	if err = c.send(actionUpdate, newStatePayload(room, "")); err != nil {
		log.Error("failed to send state snapshot", "error", err)
	}

	log.Info("bot game started")

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleMakeMove", "session", c.id)

	var req makeMovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if !req.valid() {
		log.Warn("malformed move payload", "room", req.RoomID)
		that.sendError(c, errInvalidMovePayload)
		return nil
	}

	result, err := that.rooms.MakeMove(ctx, c.id, req.RoomID, *req.Row, *req.Col)
	if err != nil {
		log.Warn("move rejected", "room", req.RoomID, "error", err)
		that.sendError(c, err)
		return nil
	}

	// one snapshot per applied move: the human's, then the bot's reply
	for _, room := range result.Updates {
		that.broadcastToRoom(room, actionUpdate, newStatePayload(room, ""))
	}

	log.Info("move applied", "room", req.RoomID, "row", *req.Row, "col", *req.Col)

	return nil
}

func (that *Server) handleResetGame(ctx context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleResetGame", "session", c.id)

	var req roomActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.rooms.ResetGame(ctx, req.RoomID)
	if err != nil {
		log.Warn("reset rejected", "room", req.RoomID, "error", err)
		that.sendError(c, err)
		return nil
	}

	that.broadcastToRoom(room, actionUpdate, newStatePayload(room, ""))

	log.Info("game reset", "room", room.ID)

	return nil
}

func (that *Server) handleResetScoreboard(ctx context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleResetScoreboard", "session", c.id)

	var req roomActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.rooms.ResetScoreboard(ctx, req.RoomID)
	if err != nil {
		log.Warn("scoreboard reset rejected", "room", req.RoomID, "error", err)
		that.sendError(c, err)
		return nil
	}

	that.broadcastToRoom(room, actionUpdate, newStatePayload(room, ""))

	log.Info("scoreboard reset", "room", room.ID)

	return nil
}

func (that *Server) handleLeaveGame(ctx context.Context, c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleLeaveGame", "session", c.id)

	var req roomActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	result, err := that.rooms.LeaveRoom(ctx, c.id, req.RoomID)
	if err != nil {
		log.Warn("leave rejected", "room", req.RoomID, "error", err)
		that.sendError(c, err)
		return nil
	}

	success := messagePayload{Message: fmt.Sprintf("You left room %s.", result.RoomID)}
	if err = c.send(actionLeaveGameSuccess, success); err != nil {
		log.Error("failed to confirm leave", "error", err)
	}

	if result.Room != nil {
		that.notifyPlayerLeft(result)
	}

	that.broadcastRoomList(ctx)

	log.Info("player left game", "room", result.RoomID)

	return nil
}

func (that *Server) newAssignRolePayload(result *service.JoinResult) assignRolePayload {
	playerX, playerO := result.Room.PlayerNames()

	var message string
	switch {
	case result.Room.BotGame:
		message = fmt.Sprintf("You are player %s (X) in room %s. You play against the bot!", playerX, result.Room.ID)
	case result.Role == game.MarkX:
		message = fmt.Sprintf("You are player %s (X) in room %s. Waiting for player O...", playerX, result.Room.ID)
	default:
		message = fmt.Sprintf("You are player %s (O) in room %s. The game can begin!", playerO, result.Room.ID)
	}

	return assignRolePayload{
		Role:        result.Role,
		Message:     message,
		RoomID:      result.Room.ID,
		PlayerXName: playerX,
		PlayerOName: playerO,
	}
}
