package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
)

const maxPlayerNameLength = 20

// JoinResult describes the outcome of seating a player.
type JoinResult struct {
	Room *entity.Room
	Role string

	// Started is true when this join filled the room, so the game can begin.
	Started bool
}

// MoveResult carries one snapshot per applied move. A human move in a bot
// room that leaves the bot to play yields two snapshots, in order, from a
// single call: the client never needs a second round trip to see the reply.
type MoveResult struct {
	Updates []*entity.Room
}

// LeaveResult describes the outcome of a seat being vacated.
type LeaveResult struct {
	RoomID      string
	PlayerName  string
	BotGame     bool
	RoomDeleted bool

	// Room is the post-departure snapshot; nil when the room was deleted.
	Room *entity.Room
}

// GamePlayService is the room coordinator: it owns every state transition
// of a room and serializes them so that no two operations on the same room
// ever interleave.
type GamePlayService interface {
	Join(ctx context.Context, sessionID, playerName, roomHint string, forceNew bool) (*JoinResult, error)
	StartBotGame(ctx context.Context, sessionID, playerName string) (*JoinResult, error)

	MakeMove(ctx context.Context, sessionID, roomID string, row, col int) (*MoveResult, error)

	Reset(ctx context.Context, roomID string) (*entity.Room, error)
	ResetScoreboard(ctx context.Context, roomID string) (*entity.Room, error)

	Leave(ctx context.Context, sessionID, roomID string) (*LeaveResult, error)
	Disconnect(ctx context.Context, sessionID string) (*LeaveResult, error)
}

type gamePlayService struct {
	logger *slog.Logger

	// mu serializes all room mutations, which also makes matchmaking's
	// find-or-create step atomic. One choke point is enough at this scale.
	mu sync.Mutex

	registry       RegistryService
	sessionService SessionService
	botService     BotService
}

func NewGamePlayService(logger *slog.Logger, registry RegistryService, sessionService SessionService, botService BotService) GamePlayService {
	return &gamePlayService{
		logger:         logger,
		registry:       registry,
		sessionService: sessionService,
		botService:     botService,
	}
}

func (that *gamePlayService) Join(ctx context.Context, sessionID, playerName, roomHint string, forceNew bool) (*JoinResult, error) {
	playerName, err := validatePlayerName(playerName)
	if err != nil {
		return nil, err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.sessionService.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create session: %w", err)
	}

	if session.InRoom() {
		return nil, apperror.ErrAlreadyInRoom
	}

	room, err := that.registry.FindJoinable(ctx, roomHint, forceNew)
	if err != nil {
		return nil, err
	}

	seat := room.Seat(sessionID, playerName)

	session.Name = playerName
	session.Role = seat.Role
	session.RoomID = room.ID
	if err = that.sessionService.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err = that.registry.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("player joined room", "room", room.ID, "player", playerName, "role", seat.Role)

	return &JoinResult{
		Room:    room.Snapshot(),
		Role:    seat.Role,
		Started: room.HumanCount() == 2,
	}, nil
}

func (that *gamePlayService) StartBotGame(ctx context.Context, sessionID, playerName string) (*JoinResult, error) {
	playerName, err := validatePlayerName(playerName)
	if err != nil {
		return nil, err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.sessionService.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create session: %w", err)
	}

	if session.InRoom() {
		return nil, apperror.ErrAlreadyInRoom
	}

	room, err := that.registry.CreateBotRoom(ctx, sessionID, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot room: %w", err)
	}

	session.Name = playerName
	session.Role = game.MarkX
	session.RoomID = room.ID
	if err = that.sessionService.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	that.logger.Info("bot game started", "room", room.ID, "player", playerName)

	return &JoinResult{
		Room:    room.Snapshot(),
		Role:    game.MarkX,
		Started: true,
	}, nil
}

func (that *gamePlayService) MakeMove(ctx context.Context, sessionID, roomID string, row, col int) (*MoveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.registry.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	seat, ok := room.Players[sessionID]
	if !ok {
		return nil, apperror.ErrNotAPlayer
	}

	if !room.IsFull() {
		return nil, apperror.ErrWaitingForOpponent
	}

	if room.GameOver {
		return nil, apperror.ErrGameOver
	}

	if seat.Role != room.CurrentPlayer {
		return nil, apperror.ErrNotYourTurn
	}

	if err = applyMove(room, seat.Role, row, col); err != nil {
		return nil, err
	}

	updates := []*entity.Room{room.Snapshot()}

	// The bot replies within the same transaction, before the state is
	// ever observable with the bot still to move.
	if room.BotGame && !room.GameOver && room.CurrentPlayer == game.MarkO {
		botRow, botCol, botErr := that.botService.ChooseCell(room)
		if botErr != nil {
			return nil, fmt.Errorf("bot failed to choose a cell: %w", botErr)
		}

		if err = applyMove(room, game.MarkO, botRow, botCol); err != nil {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}

		updates = append(updates, room.Snapshot())
	}

	if err = that.registry.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	return &MoveResult{Updates: updates}, nil
}

func (that *gamePlayService) Reset(ctx context.Context, roomID string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.resettableRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	room.ResetBoard()

	if err = that.registry.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("game reset", "room", room.ID)

	return room.Snapshot(), nil
}

func (that *gamePlayService) ResetScoreboard(ctx context.Context, roomID string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.resettableRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	room.ResetBoard()
	room.ResetScoreboard()

	if err = that.registry.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("scoreboard reset", "room", room.ID)

	return room.Snapshot(), nil
}

func (that *gamePlayService) Leave(ctx context.Context, sessionID, roomID string) (*LeaveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.vacateSeat(ctx, sessionID, roomID)
}

// Disconnect is the implicit leave: always succeeds, cleaning up whatever
// room the session was in via the session reverse index.
func (that *gamePlayService) Disconnect(ctx context.Context, sessionID string) (*LeaveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "Disconnect", "session", sessionID)

	session, err := that.sessionService.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var result *LeaveResult
	if session.InRoom() {
		result, err = that.vacateSeat(ctx, sessionID, session.RoomID)
		if err != nil && !errors.Is(err, apperror.ErrUnknownRoom) && !errors.Is(err, apperror.ErrNotAPlayer) {
			return nil, err
		}
	}

	if err = that.sessionService.Delete(ctx, sessionID); err != nil {
		log.Error("failed to delete session", "error", err)
	}

	log.Info("session disconnected")

	return result, nil
}

// vacateSeat removes a player's seat and scoreboard entry, then decides the
// room's fate: bot rooms die at once, empty rooms are deleted, a room with
// a remaining human is board-reset and kept. Callers hold the mutex.
func (that *gamePlayService) vacateSeat(ctx context.Context, sessionID, roomID string) (*LeaveResult, error) {
	room, err := that.registry.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	seat := room.Unseat(sessionID)
	if seat == nil {
		return nil, apperror.ErrNotAPlayer
	}

	if session, sessionErr := that.sessionService.Get(ctx, sessionID); sessionErr == nil {
		session.Role = ""
		session.RoomID = ""
		if sessionErr = that.sessionService.Update(ctx, session); sessionErr != nil {
			that.logger.Error("failed to update session", "session", sessionID, "error", sessionErr)
		}
	}

	result := &LeaveResult{
		RoomID:     roomID,
		PlayerName: seat.Name,
		BotGame:    room.BotGame,
	}

	if room.BotGame || room.HumanCount() == 0 {
		if err = that.registry.DeleteRoom(ctx, roomID); err != nil {
			return nil, fmt.Errorf("failed to delete room: %w", err)
		}

		result.RoomDeleted = true
		that.logger.Info("room deleted", "room", roomID)

		return result, nil
	}

	room.ResetBoard()

	if err = that.registry.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	result.Room = room.Snapshot()
	that.logger.Info("player left room", "room", roomID, "player", seat.Name)

	return result, nil
}

func (that *gamePlayService) resettableRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.registry.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.IsFull() {
		return nil, apperror.ErrWaitingForOpponent
	}

	return room, nil
}

// applyMove mutates the board and settles the aftermath: winner and
// scoreboard on a finished game, turn flip otherwise.
func applyMove(room *entity.Room, role string, row, col int) error {
	if err := game.ApplyMove(&room.Board, row, col, role); err != nil {
		if errors.Is(err, game.ErrCellOccupied) {
			return apperror.ErrCellOccupied
		}

		return fmt.Errorf("invalid move: %w", err)
	}

	switch result := game.Evaluate(room.Board); result {
	case game.EmptyCell:
		room.CurrentPlayer = game.ToggleMark(role)
	default:
		room.GameOver = true
		room.Winner = result
		room.CreditWinner(result)
	}

	return nil
}

func validatePlayerName(playerName string) (string, error) {
	playerName = strings.TrimSpace(playerName)
	if length := utf8.RuneCountInString(playerName); length == 0 || length > maxPlayerNameLength {
		return "", apperror.ErrInvalidName
	}

	return playerName, nil
}
