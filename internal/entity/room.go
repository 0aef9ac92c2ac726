package entity

import (
	"strings"

	"github.com/rocketscienceinc/gameroom-backend/internal/game"
)

const (
	// BotRoomPrefix marks room IDs reserved for single-player rooms.
	// Matchmaking never produces IDs with this prefix.
	BotRoomPrefix = "bot-"

	// BotName and DrawName are permanent scoreboard keys.
	BotName  = "Bot"
	DrawName = "Draw"
)

// Seat binds a connection to a role and display name inside a room.
type Seat struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// Room is an isolated game instance: board, turn state, scoreboard and the
// sessions seated in it, addressed by an opaque identifier.
type Room struct {
	ID            string           `json:"id"`
	Board         game.Board       `json:"board"`
	CurrentPlayer string           `json:"current_player"`
	Winner        string           `json:"winner"`
	GameOver      bool             `json:"game_over"`
	Scoreboard    map[string]int   `json:"scoreboard"`
	Players       map[string]*Seat `json:"players"`
	BotGame       bool             `json:"is_bot_game"`
}

func NewRoom(id string) *Room {
	return &Room{
		ID:            id,
		CurrentPlayer: game.MarkX,
		Scoreboard:    map[string]int{DrawName: 0},
		Players:       make(map[string]*Seat),
	}
}

// NewBotRoom seats the human at X against an implicit bot at O.
// The room is playable immediately: the bot seat is always filled.
func NewBotRoom(id, sessionID, playerName string) *Room {
	room := NewRoom(id)
	room.BotGame = true
	room.Players[sessionID] = &Seat{Role: game.MarkX, Name: playerName}
	room.Scoreboard[playerName] = 0
	room.Scoreboard[BotName] = 0

	return room
}

func IsBotRoomID(id string) bool {
	return strings.HasPrefix(id, BotRoomPrefix)
}

// HumanCount returns the number of seated human players.
func (that *Room) HumanCount() int {
	return len(that.Players)
}

// EffectivePlayers counts the bot seat in bot rooms.
func (that *Room) EffectivePlayers() int {
	if that.BotGame {
		return that.HumanCount() + 1
	}
	return that.HumanCount()
}

func (that *Room) IsFull() bool {
	return that.EffectivePlayers() >= 2
}

// Joinable reports whether matchmaking may seat another human here.
func (that *Room) Joinable() bool {
	return !that.BotGame && that.HumanCount() < 2
}

// Seat adds a session to the room. The first human takes X, the second O.
func (that *Room) Seat(sessionID, playerName string) *Seat {
	role := game.MarkX
	if that.HumanCount() > 0 {
		role = game.MarkO
	}

	seat := &Seat{Role: role, Name: playerName}
	that.Players[sessionID] = seat
	if _, ok := that.Scoreboard[playerName]; !ok {
		that.Scoreboard[playerName] = 0
	}

	return seat
}

// Unseat removes a session and its scoreboard entry.
func (that *Room) Unseat(sessionID string) *Seat {
	seat, ok := that.Players[sessionID]
	if !ok {
		return nil
	}

	delete(that.Players, sessionID)
	delete(that.Scoreboard, seat.Name)

	return seat
}

// SeatByRole returns the seat holding the given role, if any.
func (that *Room) SeatByRole(role string) *Seat {
	for _, seat := range that.Players {
		if seat.Role == role {
			return seat
		}
	}
	return nil
}

// PlayerNames returns the display names of the X and O seats.
// The bot fills the O seat in bot rooms.
func (that *Room) PlayerNames() (string, string) {
	var playerX, playerO string

	if seat := that.SeatByRole(game.MarkX); seat != nil {
		playerX = seat.Name
	}

	if seat := that.SeatByRole(game.MarkO); seat != nil {
		playerO = seat.Name
	}

	if that.BotGame && playerO == "" {
		playerO = BotName
	}

	return playerX, playerO
}

// ResetBoard clears the board and turn state. The scoreboard survives.
func (that *Room) ResetBoard() {
	that.Board = game.Board{}
	that.CurrentPlayer = game.MarkX
	that.Winner = ""
	that.GameOver = false
}

// ResetScoreboard rebuilds the scoreboard at zero for every seated name
// plus the permanent Draw (and Bot) keys, dropping stale names.
func (that *Room) ResetScoreboard() {
	scoreboard := map[string]int{DrawName: 0}
	if that.BotGame {
		scoreboard[BotName] = 0
	}

	for _, seat := range that.Players {
		scoreboard[seat.Name] = 0
	}

	that.Scoreboard = scoreboard
}

// CreditWinner bumps the scoreboard entry for the given result, which is
// a mark for a win or game.WinnerDraw for a draw.
func (that *Room) CreditWinner(result string) {
	if result == game.WinnerDraw {
		that.Scoreboard[DrawName]++
		return
	}

	if seat := that.SeatByRole(result); seat != nil {
		that.Scoreboard[seat.Name]++
		return
	}

	if that.BotGame && result == game.MarkO {
		that.Scoreboard[BotName]++
	}
}

// Snapshot returns a deep copy safe to hand to transports after the
// coordinator releases its lock.
func (that *Room) Snapshot() *Room {
	snapshot := *that

	snapshot.Scoreboard = make(map[string]int, len(that.Scoreboard))
	for name, wins := range that.Scoreboard {
		snapshot.Scoreboard[name] = wins
	}

	snapshot.Players = make(map[string]*Seat, len(that.Players))
	for sessionID, seat := range that.Players {
		seatCopy := *seat
		snapshot.Players[sessionID] = &seatCopy
	}

	return &snapshot
}
