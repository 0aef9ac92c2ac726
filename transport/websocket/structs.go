package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// inbound actions
const (
	actionGetRooms        = "get_rooms"
	actionJoinGame        = "join_game"
	actionStartBotGame    = "start_bot_game"
	actionLeaveGame       = "leave_game"
	actionMakeMove        = "make_move"
	actionResetGame       = "reset_game"
	actionResetScoreboard = "reset_scoreboard"
)

// outbound actions
const (
	actionUpdateRooms      = "update_rooms"
	actionAssignRole       = "assign_role"
	actionGameStart        = "game_start"
	actionUpdate           = "update"
	actionPlayerLeft       = "player_left"
	actionLeaveGameSuccess = "leave_game_success"
	actionError            = "error"
)

type joinGamePayload struct {
	RoomID     string `json:"room_id,omitempty"`
	CreateNew  bool   `json:"create_new,omitempty"`
	PlayerName string `json:"player_name"`
}

type startBotGamePayload struct {
	PlayerName string `json:"player_name"`
}

type roomActionPayload struct {
	RoomID string `json:"room_id"`
}

// Row and Col are pointers so that an absent field is distinguishable
// from a legitimate 0.
type makeMovePayload struct {
	RoomID string `json:"room_id"`
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
}

func (that *makeMovePayload) valid() bool {
	if that.Row == nil || that.Col == nil {
		return false
	}

	return *that.Row >= 0 && *that.Row < game.Size && *that.Col >= 0 && *that.Col < game.Size
}

type roomsPayload struct {
	Rooms []string `json:"rooms"`
}

type assignRolePayload struct {
	Role        string `json:"role"`
	Message     string `json:"message"`
	RoomID      string `json:"room_id"`
	PlayerXName string `json:"player_x_name"`
	PlayerOName string `json:"player_o_name"`
}

// statePayload is the canonical full-state snapshot sent after every
// mutating event; game_start carries the same shape plus a message.
type statePayload struct {
	Message       string         `json:"message,omitempty"`
	Board         game.Board     `json:"board"`
	CurrentPlayer string         `json:"current_player"`
	Winner        string         `json:"winner"`
	GameOver      bool           `json:"game_over"`
	Scoreboard    map[string]int `json:"scoreboard"`
	NumPlayers    int            `json:"num_players"`
	PlayerXName   string         `json:"player_x_name"`
	PlayerOName   string         `json:"player_o_name"`
}

type playerLeftPayload struct {
	Message     string `json:"message"`
	PlayerXName string `json:"player_x_name"`
	PlayerOName string `json:"player_o_name"`
	ForceMenu   bool   `json:"force_menu"`
}

type messagePayload struct {
	Message string `json:"message"`
}

func newStatePayload(room *entity.Room, message string) statePayload {
	playerX, playerO := room.PlayerNames()

	return statePayload{
		Message:       message,
		Board:         room.Board,
		CurrentPlayer: room.CurrentPlayer,
		Winner:        room.Winner,
		GameOver:      room.GameOver,
		Scoreboard:    room.Scoreboard,
		NumPlayers:    room.EffectivePlayers(),
		PlayerXName:   playerX,
		PlayerOName:   playerO,
	}
}
