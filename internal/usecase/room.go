package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/service"
)

// RoomUseCase is what the transports consume: every inbound client event
// maps onto exactly one of these calls.
type RoomUseCase interface {
	ListJoinableRooms(ctx context.Context) ([]string, error)

	JoinRoom(ctx context.Context, sessionID, playerName, roomHint string, forceNew bool) (*service.JoinResult, error)
	StartBotGame(ctx context.Context, sessionID, playerName string) (*service.JoinResult, error)

	MakeMove(ctx context.Context, sessionID, roomID string, row, col int) (*service.MoveResult, error)

	ResetGame(ctx context.Context, roomID string) (*entity.Room, error)
	ResetScoreboard(ctx context.Context, roomID string) (*entity.Room, error)

	LeaveRoom(ctx context.Context, sessionID, roomID string) (*service.LeaveResult, error)
	Disconnect(ctx context.Context, sessionID string) (*service.LeaveResult, error)
}

type roomUseCase struct {
	registry service.RegistryService
	gamePlay service.GamePlayService
}

func NewRoomUseCase(registry service.RegistryService, gamePlay service.GamePlayService) RoomUseCase {
	return &roomUseCase{
		registry: registry,
		gamePlay: gamePlay,
	}
}

func (that *roomUseCase) ListJoinableRooms(ctx context.Context) ([]string, error) {
	rooms, err := that.registry.ListJoinable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list joinable rooms: %w", err)
	}

	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}

	return ids, nil
}

func (that *roomUseCase) JoinRoom(ctx context.Context, sessionID, playerName, roomHint string, forceNew bool) (*service.JoinResult, error) {
	return that.gamePlay.Join(ctx, sessionID, playerName, roomHint, forceNew)
}

func (that *roomUseCase) StartBotGame(ctx context.Context, sessionID, playerName string) (*service.JoinResult, error) {
	return that.gamePlay.StartBotGame(ctx, sessionID, playerName)
}

func (that *roomUseCase) MakeMove(ctx context.Context, sessionID, roomID string, row, col int) (*service.MoveResult, error) {
	return that.gamePlay.MakeMove(ctx, sessionID, roomID, row, col)
}

func (that *roomUseCase) ResetGame(ctx context.Context, roomID string) (*entity.Room, error) {
	return that.gamePlay.Reset(ctx, roomID)
}

func (that *roomUseCase) ResetScoreboard(ctx context.Context, roomID string) (*entity.Room, error) {
	return that.gamePlay.ResetScoreboard(ctx, roomID)
}

func (that *roomUseCase) LeaveRoom(ctx context.Context, sessionID, roomID string) (*service.LeaveResult, error) {
	return that.gamePlay.Leave(ctx, sessionID, roomID)
}

func (that *roomUseCase) Disconnect(ctx context.Context, sessionID string) (*service.LeaveResult, error) {
	return that.gamePlay.Disconnect(ctx, sessionID)
}
