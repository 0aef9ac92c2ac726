package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

// MemoryRoomRepository keeps the room table in process memory. Rooms don't
// survive a restart by design, so this is a full peer of the redis-backed
// repository and the default for tests.
type MemoryRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

func NewMemoryRoomRepository() *MemoryRoomRepository {
	return &MemoryRoomRepository{
		rooms: make(map[string]*entity.Room),
	}
}

func (that *MemoryRoomRepository) CreateOrUpdate(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = room.Snapshot()

	return nil
}

func (that *MemoryRoomRepository) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return room.Snapshot(), nil
}

func (that *MemoryRoomRepository) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, id)

	return nil
}

// ListJoinable walks the map, so the listing is unordered just like the
// SCAN-backed redis variant.
func (that *MemoryRoomRepository) ListJoinable(_ context.Context) ([]*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var joinable []*entity.Room
	for _, room := range that.rooms {
		if room.Joinable() {
			joinable = append(joinable, room.Snapshot())
		}
	}

	return joinable, nil
}

// MemorySessionRepository is the in-memory counterpart of the redis
// session index.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entity.Session),
	}
}

func (that *MemorySessionRepository) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	sessionCopy := *session
	that.sessions[session.ID] = &sessionCopy

	return nil
}

func (that *MemorySessionRepository) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	sessionCopy := *session

	return &sessionCopy, nil
}

func (that *MemorySessionRepository) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, id)

	return nil
}
