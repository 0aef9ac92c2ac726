package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
	"github.com/rocketscienceinc/gameroom-backend/testing/suite"
)

func TestSessionRepository(t *testing.T) {
	ctx, testSuite := suite.New(t)

	repo := repository.NewSessionRepository(testSuite.Storage)

	t.Run("CreateOrUpdate and GetByID round-trip the session", func(t *testing.T) {
		// Given: a seated session
		session := &entity.Session{
			ID:     "session-1",
			Name:   "Ana",
			Role:   game.MarkX,
			RoomID: "ab12cd34",
		}

		// When: it is stored and read back
		require.NoError(t, repo.CreateOrUpdate(ctx, session))
		stored, err := repo.GetByID(ctx, session.ID)

		// Then: the room reverse index survives
		require.NoError(t, err)
		assert.Equal(t, session, stored)
		assert.True(t, stored.InRoom())
	})

	t.Run("GetByID reports a missing session", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "no-such-session")

		require.ErrorIs(t, err, repository.ErrSessionNotFound)
	})

	t.Run("DeleteByID removes the session", func(t *testing.T) {
		// Given: a stored session
		session := &entity.Session{ID: "session-2"}
		require.NoError(t, repo.CreateOrUpdate(ctx, session))

		// When: it is deleted
		require.NoError(t, repo.DeleteByID(ctx, session.ID))

		// Then: it can no longer be read
		_, err := repo.GetByID(ctx, session.ID)
		require.ErrorIs(t, err, repository.ErrSessionNotFound)
	})
}
