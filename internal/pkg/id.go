package pkg

import (
	"github.com/google/uuid"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

const roomIDLength = 8

// GenerateRoomID returns a short opaque token for a matchmaking room.
func GenerateRoomID() string {
	return uuid.NewString()[:roomIDLength]
}

// GenerateBotRoomID derives the reserved single-player room key from the
// owning session, so it can never collide with matchmaking IDs.
func GenerateBotRoomID(sessionID string) string {
	return entity.BotRoomPrefix + sessionID
}

// GenerateSessionID returns a fresh connection handle.
func GenerateSessionID() string {
	return uuid.NewString()
}
