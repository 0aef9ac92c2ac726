package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionService interface {
	GetOrCreate(ctx context.Context, id string) (*entity.Session, error)
	Get(ctx context.Context, id string) (*entity.Session, error)
	Update(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, id string) error
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type sessionService struct {
	sessionRepo sessionRepo
}

func NewSessionService(sessionRepo sessionRepo) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
	}
}

func (that *sessionService) GetOrCreate(ctx context.Context, id string) (*entity.Session, error) {
	existingSession, err := that.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		session := &entity.Session{ID: id}
		if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}

		return session, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return existingSession, nil
}

// Get returns ErrSessionNotFound for unknown ids.
func (that *sessionService) Get(ctx context.Context, id string) (*entity.Session, error) {
	existingSession, err := that.sessionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return existingSession, nil
}

func (that *sessionService) Update(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

func (that *sessionService) Delete(ctx context.Context, id string) error {
	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
