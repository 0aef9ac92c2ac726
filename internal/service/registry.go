package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/pkg"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
)

// RegistryService owns the process-wide room table: matchmaking resolution,
// the joinable-room listing and room lifecycle.
type RegistryService interface {
	FindJoinable(ctx context.Context, preferredID string, forceNew bool) (*entity.Room, error)
	ListJoinable(ctx context.Context) ([]*entity.Room, error)

	CreateBotRoom(ctx context.Context, sessionID, playerName string) (*entity.Room, error)

	GetRoomByID(ctx context.Context, id string) (*entity.Room, error)
	UpdateRoom(ctx context.Context, room *entity.Room) error
	DeleteRoom(ctx context.Context, id string) error
}

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
	ListJoinable(ctx context.Context) ([]*entity.Room, error)
}

type registryService struct {
	roomRepo roomRepo
}

func NewRegistryService(roomRepo roomRepo) RegistryService {
	return &registryService{
		roomRepo: roomRepo,
	}
}

// FindJoinable resolves the room a joining player lands in: the preferred
// room when it names an open non-bot room, else the first open room, else a
// freshly created one. An explicitly named room that is unknown or already
// full is an error rather than a silent fallback.
func (that *registryService) FindJoinable(ctx context.Context, preferredID string, forceNew bool) (*entity.Room, error) {
	if preferredID != "" && !forceNew {
		room, err := that.roomRepo.GetByID(ctx, preferredID)
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperror.ErrUnknownRoom
		}

		if err != nil {
			return nil, fmt.Errorf("failed to get preferred room: %w", err)
		}

		if room.BotGame {
			return nil, apperror.ErrUnknownRoom
		}

		if room.HumanCount() >= 2 {
			return nil, apperror.ErrRoomFull
		}

		return room, nil
	}

	if !forceNew {
		joinable, err := that.roomRepo.ListJoinable(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list joinable rooms: %w", err)
		}

		if len(joinable) > 0 {
			return joinable[0], nil
		}
	}

	room := entity.NewRoom(pkg.GenerateRoomID())
	if err := that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return room, nil
}

func (that *registryService) ListJoinable(ctx context.Context) ([]*entity.Room, error) {
	joinable, err := that.roomRepo.ListJoinable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list joinable rooms: %w", err)
	}

	return joinable, nil
}

// CreateBotRoom always allocates a fresh single-player room; bot rooms are
// never reused and never visible to matchmaking.
func (that *registryService) CreateBotRoom(ctx context.Context, sessionID, playerName string) (*entity.Room, error) {
	room := entity.NewBotRoom(pkg.GenerateBotRoomID(sessionID), sessionID, playerName)

	if err := that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create bot room: %w", err)
	}

	return room, nil
}

func (that *registryService) GetRoomByID(ctx context.Context, id string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return nil, apperror.ErrUnknownRoom
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve room from storage: %w", err)
	}

	return room, nil
}

func (that *registryService) UpdateRoom(ctx context.Context, room *entity.Room) error {
	if err := that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	return nil
}

func (that *registryService) DeleteRoom(ctx context.Context, id string) error {
	if err := that.roomRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}
