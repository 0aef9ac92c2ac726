package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
)

type gamePlayFixture struct {
	gamePlay GamePlayService
	registry RegistryService
	sessions SessionService
}

func newGamePlayFixture() *gamePlayFixture {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	registry := NewRegistryService(repository.NewMemoryRoomRepository())
	sessions := NewSessionService(repository.NewMemorySessionRepository())

	return &gamePlayFixture{
		gamePlay: NewGamePlayService(logger, registry, sessions, NewBotService()),
		registry: registry,
		sessions: sessions,
	}
}

// seatTwoPlayers joins Ana as X and Rui as O into a shared room.
func (that *gamePlayFixture) seatTwoPlayers(ctx context.Context, t *testing.T) *entity.Room {
	t.Helper()

	first, err := that.gamePlay.Join(ctx, "session-1", "Ana", "", false)
	require.NoError(t, err)

	second, err := that.gamePlay.Join(ctx, "session-2", "Rui", first.Room.ID, false)
	require.NoError(t, err)

	return second.Room
}

// playMoves applies a scripted alternating sequence of moves, where odd
// indices belong to session-2.
func (that *gamePlayFixture) playMoves(ctx context.Context, t *testing.T, roomID string, moves [][2]int) *MoveResult {
	t.Helper()

	var result *MoveResult
	for i, move := range moves {
		sessionID := "session-1"
		if i%2 == 1 {
			sessionID = "session-2"
		}

		var err error
		result, err = that.gamePlay.MakeMove(ctx, sessionID, roomID, move[0], move[1])
		require.NoError(t, err)
	}

	return result
}

func TestGamePlayService_Join(t *testing.T) {
	ctx := context.Background()

	t.Run("First player joins as X and waits", func(t *testing.T) {
		// Given: an empty room table
		fixture := newGamePlayFixture()

		// When: a player joins with no room hint
		result, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)

		// Then: she is seated as X in a room that has not started
		require.NoError(t, err)
		assert.Equal(t, game.MarkX, result.Role)
		assert.False(t, result.Started)
		assert.Equal(t, 1, result.Room.HumanCount())
	})

	t.Run("Second player fills the room and starts the game", func(t *testing.T) {
		// Given: a room with one waiting player
		fixture := newGamePlayFixture()
		first, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)
		require.NoError(t, err)

		// When: a second player is matched in
		second, err := fixture.gamePlay.Join(ctx, "session-2", "Rui", "", false)

		// Then: he lands in the same room as O and the game starts
		require.NoError(t, err)
		assert.Equal(t, first.Room.ID, second.Room.ID)
		assert.Equal(t, game.MarkO, second.Role)
		assert.True(t, second.Started)
		assert.Equal(t, game.MarkX, second.Room.CurrentPlayer)
	})

	t.Run("Trims surrounding whitespace from the name", func(t *testing.T) {
		fixture := newGamePlayFixture()

		result, err := fixture.gamePlay.Join(ctx, "session-1", "  Ana  ", "", false)

		require.NoError(t, err)
		assert.Equal(t, "Ana", result.Room.Players["session-1"].Name)
	})

	t.Run("Accepts a name of exactly twenty runes", func(t *testing.T) {
		fixture := newGamePlayFixture()

		_, err := fixture.gamePlay.Join(ctx, "session-1", strings.Repeat("á", 20), "", false)

		require.NoError(t, err)
	})

	t.Run("Rejects an empty name", func(t *testing.T) {
		fixture := newGamePlayFixture()

		_, err := fixture.gamePlay.Join(ctx, "session-1", "   ", "", false)

		require.ErrorIs(t, err, apperror.ErrInvalidName)
	})

	t.Run("Rejects a name longer than twenty runes", func(t *testing.T) {
		fixture := newGamePlayFixture()

		_, err := fixture.gamePlay.Join(ctx, "session-1", strings.Repeat("á", 21), "", false)

		require.ErrorIs(t, err, apperror.ErrInvalidName)
	})

	t.Run("Rejects joining while already seated", func(t *testing.T) {
		// Given: a seated player
		fixture := newGamePlayFixture()
		_, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)
		require.NoError(t, err)

		// When: the same session tries to join again
		_, err = fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)

		// Then: the second join is refused
		require.ErrorIs(t, err, apperror.ErrAlreadyInRoom)
	})

	t.Run("Rejects an unknown room hint", func(t *testing.T) {
		fixture := newGamePlayFixture()

		_, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "no-such-room", false)

		require.ErrorIs(t, err, apperror.ErrUnknownRoom)
	})

	t.Run("Rejects a hint at a full room", func(t *testing.T) {
		// Given: a full room
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)

		// When: a third player names it explicitly
		_, err := fixture.gamePlay.Join(ctx, "session-3", "Eva", room.ID, false)

		// Then: the join is refused rather than silently rerouted
		require.ErrorIs(t, err, apperror.ErrRoomFull)
	})

	t.Run("forceNew skips the open room", func(t *testing.T) {
		// Given: an open room with one waiting player
		fixture := newGamePlayFixture()
		first, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)
		require.NoError(t, err)

		// When: a second player insists on a fresh room
		second, err := fixture.gamePlay.Join(ctx, "session-2", "Rui", "", true)

		// Then: he gets his own room as X
		require.NoError(t, err)
		assert.NotEqual(t, first.Room.ID, second.Room.ID)
		assert.Equal(t, game.MarkX, second.Role)
	})
}

func TestGamePlayService_StartBotGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a started single-player room", func(t *testing.T) {
		fixture := newGamePlayFixture()

		result, err := fixture.gamePlay.StartBotGame(ctx, "session-1", "Ana")

		require.NoError(t, err)
		assert.True(t, result.Started)
		assert.Equal(t, game.MarkX, result.Role)
		assert.True(t, result.Room.BotGame)
		assert.Equal(t, entity.BotRoomPrefix+"session-1", result.Room.ID)
		assert.Equal(t, 2, result.Room.EffectivePlayers())
	})

	t.Run("Bot rooms never show up in matchmaking", func(t *testing.T) {
		// Given: only a bot room exists
		fixture := newGamePlayFixture()
		_, err := fixture.gamePlay.StartBotGame(ctx, "session-1", "Ana")
		require.NoError(t, err)

		// When: another player joins via matchmaking
		result, err := fixture.gamePlay.Join(ctx, "session-2", "Rui", "", false)

		// Then: he lands in a brand-new room
		require.NoError(t, err)
		assert.False(t, result.Room.BotGame)
		assert.Equal(t, game.MarkX, result.Role)
	})

	t.Run("Rejects starting while already seated", func(t *testing.T) {
		fixture := newGamePlayFixture()
		_, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)
		require.NoError(t, err)

		_, err = fixture.gamePlay.StartBotGame(ctx, "session-1", "Ana")

		require.ErrorIs(t, err, apperror.ErrAlreadyInRoom)
	})
}

func TestGamePlayService_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("X wins the top row and is credited", func(t *testing.T) {
		// Given: a started two-player game
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)

		// When: X completes the top row
		result := fixture.playMoves(ctx, t, room.ID, [][2]int{
			{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2},
		})

		// Then: the game is over, X wins, Ana's tally increments
		require.Len(t, result.Updates, 1)
		final := result.Updates[0]
		assert.True(t, final.GameOver)
		assert.Equal(t, game.MarkX, final.Winner)
		assert.Equal(t, 1, final.Scoreboard["Ana"])
		assert.Zero(t, final.Scoreboard["Rui"])
	})

	t.Run("A full board with no line is a draw", func(t *testing.T) {
		// Given: a started two-player game
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)

		// When: nine moves fill the board without a line
		result := fixture.playMoves(ctx, t, room.ID, [][2]int{
			{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 0}, {2, 2},
		})

		// Then: the game ends with the draw counter credited
		final := result.Updates[0]
		assert.True(t, final.GameOver)
		assert.Equal(t, game.WinnerDraw, final.Winner)
		assert.Equal(t, 1, final.Scoreboard[entity.DrawName])
	})

	t.Run("A bot room answers the human move in the same call", func(t *testing.T) {
		// Given: a bot game
		fixture := newGamePlayFixture()
		started, err := fixture.gamePlay.StartBotGame(ctx, "session-1", "Ana")
		require.NoError(t, err)

		// When: the human plays the centre
		result, err := fixture.gamePlay.MakeMove(ctx, "session-1", started.Room.ID, 1, 1)

		// Then: two snapshots come back, the second with the bot's reply
		require.NoError(t, err)
		require.Len(t, result.Updates, 2)

		afterHuman := result.Updates[0]
		assert.Equal(t, game.MarkX, afterHuman.Board[1][1])
		assert.Equal(t, game.MarkO, afterHuman.CurrentPlayer)

		afterBot := result.Updates[1]
		assert.Equal(t, game.MarkX, afterBot.CurrentPlayer)
		assert.Equal(t, 1, countMarks(afterBot.Board, game.MarkO))
		assert.Equal(t, 1, countMarks(afterBot.Board, game.MarkX))
	})

	t.Run("The bot blocks an open human line", func(t *testing.T) {
		// Given: a bot game where X threatens the left column
		fixture := newGamePlayFixture()
		started, err := fixture.gamePlay.StartBotGame(ctx, "session-1", "Ana")
		require.NoError(t, err)

		room, err := fixture.registry.GetRoomByID(ctx, started.Room.ID)
		require.NoError(t, err)
		room.Board[0][0] = game.MarkX
		room.Board[2][2] = game.MarkO
		require.NoError(t, fixture.registry.UpdateRoom(ctx, room))

		// When: X plays the middle of the column
		result, err := fixture.gamePlay.MakeMove(ctx, "session-1", started.Room.ID, 1, 0)

		// Then: the bot takes the remaining cell of that column
		require.NoError(t, err)
		require.Len(t, result.Updates, 2)
		assert.Equal(t, game.MarkO, result.Updates[1].Board[2][0])
	})

	t.Run("Rejects moving in an unknown room", func(t *testing.T) {
		fixture := newGamePlayFixture()

		_, err := fixture.gamePlay.MakeMove(ctx, "session-1", "no-such-room", 0, 0)

		require.ErrorIs(t, err, apperror.ErrUnknownRoom)
	})

	t.Run("Rejects a move from a non-player", func(t *testing.T) {
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)

		_, err := fixture.gamePlay.MakeMove(ctx, "session-3", room.ID, 0, 0)

		require.ErrorIs(t, err, apperror.ErrNotAPlayer)
	})

	t.Run("Rejects moving before an opponent arrives", func(t *testing.T) {
		fixture := newGamePlayFixture()
		result, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)
		require.NoError(t, err)

		_, err = fixture.gamePlay.MakeMove(ctx, "session-1", result.Room.ID, 0, 0)

		require.ErrorIs(t, err, apperror.ErrWaitingForOpponent)
	})

	t.Run("Rejects moving out of turn", func(t *testing.T) {
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)

		_, err := fixture.gamePlay.MakeMove(ctx, "session-2", room.ID, 0, 0)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Rejects taking an occupied cell", func(t *testing.T) {
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)
		fixture.playMoves(ctx, t, room.ID, [][2]int{{1, 1}})

		_, err := fixture.gamePlay.MakeMove(ctx, "session-2", room.ID, 1, 1)

		require.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Rejects moving after the game is over", func(t *testing.T) {
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)
		fixture.playMoves(ctx, t, room.ID, [][2]int{
			{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2},
		})

		_, err := fixture.gamePlay.MakeMove(ctx, "session-2", room.ID, 2, 2)

		require.ErrorIs(t, err, apperror.ErrGameOver)
	})

	t.Run("Rejects a cell outside the board", func(t *testing.T) {
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)

		_, err := fixture.gamePlay.MakeMove(ctx, "session-1", room.ID, 3, 0)

		require.ErrorIs(t, err, game.ErrInvalidCell)
	})
}

func TestGamePlayService_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("Clears the board and keeps the scoreboard", func(t *testing.T) {
		// Given: a finished game X won
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)
		fixture.playMoves(ctx, t, room.ID, [][2]int{
			{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2},
		})

		// When: the game is reset
		reset, err := fixture.gamePlay.Reset(ctx, room.ID)

		// Then: fresh board, X to move, tally intact
		require.NoError(t, err)
		assert.Equal(t, game.Board{}, reset.Board)
		assert.Equal(t, game.MarkX, reset.CurrentPlayer)
		assert.False(t, reset.GameOver)
		assert.Equal(t, 1, reset.Scoreboard["Ana"])
	})

	t.Run("The reset room accepts a full new game", func(t *testing.T) {
		// Given: a finished and reset game
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)
		fixture.playMoves(ctx, t, room.ID, [][2]int{
			{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2},
		})
		_, err := fixture.gamePlay.Reset(ctx, room.ID)
		require.NoError(t, err)

		// When: a second game is played to an O win
		result := fixture.playMoves(ctx, t, room.ID, [][2]int{
			{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}, {1, 2},
		})

		// Then: both tallies now read one
		final := result.Updates[0]
		assert.Equal(t, game.MarkO, final.Winner)
		assert.Equal(t, 1, final.Scoreboard["Ana"])
		assert.Equal(t, 1, final.Scoreboard["Rui"])
	})

	t.Run("Rejects resetting a waiting room", func(t *testing.T) {
		fixture := newGamePlayFixture()
		result, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)
		require.NoError(t, err)

		_, err = fixture.gamePlay.Reset(ctx, result.Room.ID)

		require.ErrorIs(t, err, apperror.ErrWaitingForOpponent)
	})
}

func TestGamePlayService_ResetScoreboard(t *testing.T) {
	ctx := context.Background()

	// Given: a finished game with a credited win
	fixture := newGamePlayFixture()
	room := fixture.seatTwoPlayers(ctx, t)
	fixture.playMoves(ctx, t, room.ID, [][2]int{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2},
	})

	// When: the scoreboard is reset
	reset, err := fixture.gamePlay.ResetScoreboard(ctx, room.ID)

	// Then: board and every tally are back to zero
	require.NoError(t, err)
	assert.Equal(t, game.Board{}, reset.Board)
	assert.Equal(t, map[string]int{"Ana": 0, "Rui": 0, entity.DrawName: 0}, reset.Scoreboard)
}

func TestGamePlayService_Leave(t *testing.T) {
	ctx := context.Background()

	t.Run("A room with a remaining player survives with a fresh board", func(t *testing.T) {
		// Given: a game in progress
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)
		fixture.playMoves(ctx, t, room.ID, [][2]int{{0, 0}, {1, 1}})

		// When: O leaves
		result, err := fixture.gamePlay.Leave(ctx, "session-2", room.ID)

		// Then: the room is kept, reset, and Rui is off the scoreboard
		require.NoError(t, err)
		assert.False(t, result.RoomDeleted)
		assert.Equal(t, "Rui", result.PlayerName)
		require.NotNil(t, result.Room)
		assert.Equal(t, game.Board{}, result.Room.Board)
		assert.Equal(t, 1, result.Room.HumanCount())
		assert.NotContains(t, result.Room.Scoreboard, "Rui")
	})

	t.Run("The last player out deletes the room", func(t *testing.T) {
		fixture := newGamePlayFixture()
		joined, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)
		require.NoError(t, err)

		result, err := fixture.gamePlay.Leave(ctx, "session-1", joined.Room.ID)

		require.NoError(t, err)
		assert.True(t, result.RoomDeleted)
		_, err = fixture.registry.GetRoomByID(ctx, joined.Room.ID)
		require.ErrorIs(t, err, apperror.ErrUnknownRoom)
	})

	t.Run("Leaving a bot room deletes it", func(t *testing.T) {
		fixture := newGamePlayFixture()
		started, err := fixture.gamePlay.StartBotGame(ctx, "session-1", "Ana")
		require.NoError(t, err)

		result, err := fixture.gamePlay.Leave(ctx, "session-1", started.Room.ID)

		require.NoError(t, err)
		assert.True(t, result.RoomDeleted)
		assert.True(t, result.BotGame)
	})

	t.Run("A vacated seat can be filled again", func(t *testing.T) {
		// Given: a room whose O player has left
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)
		_, err := fixture.gamePlay.Leave(ctx, "session-2", room.ID)
		require.NoError(t, err)

		// When: a new player joins the room
		result, err := fixture.gamePlay.Join(ctx, "session-3", "Eva", room.ID, false)

		// Then: she takes the O seat and the game restarts
		require.NoError(t, err)
		assert.Equal(t, game.MarkO, result.Role)
		assert.True(t, result.Started)
	})

	t.Run("Rejects leaving a room without a seat", func(t *testing.T) {
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)

		_, err := fixture.gamePlay.Leave(ctx, "session-3", room.ID)

		require.ErrorIs(t, err, apperror.ErrNotAPlayer)
	})
}

func TestGamePlayService_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("Vacates the seat and drops the session", func(t *testing.T) {
		// Given: a game in progress
		fixture := newGamePlayFixture()
		room := fixture.seatTwoPlayers(ctx, t)
		fixture.playMoves(ctx, t, room.ID, [][2]int{{0, 0}})

		// When: O's connection drops
		result, err := fixture.gamePlay.Disconnect(ctx, "session-2")

		// Then: the room survives reset, the session is gone
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, room.ID, result.RoomID)
		assert.False(t, result.RoomDeleted)
		assert.Equal(t, game.Board{}, result.Room.Board)

		_, err = fixture.sessions.Get(ctx, "session-2")
		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("An unknown session disconnects quietly", func(t *testing.T) {
		fixture := newGamePlayFixture()

		result, err := fixture.gamePlay.Disconnect(ctx, "never-seen")

		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("A session outside any room just gets cleaned up", func(t *testing.T) {
		// Given: a session that joined and already left properly
		fixture := newGamePlayFixture()
		joined, err := fixture.gamePlay.Join(ctx, "session-1", "Ana", "", false)
		require.NoError(t, err)
		_, err = fixture.gamePlay.Leave(ctx, "session-1", joined.Room.ID)
		require.NoError(t, err)

		// When: the connection drops afterwards
		result, err := fixture.gamePlay.Disconnect(ctx, "session-1")

		// Then: nothing room-related happens
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func countMarks(board game.Board, mark string) int {
	count := 0
	for _, row := range board {
		for _, cell := range row {
			if cell == mark {
				count++
			}
		}
	}

	return count
}
