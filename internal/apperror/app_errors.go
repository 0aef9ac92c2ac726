package apperror

import "errors"

var (
	ErrInvalidName        = errors.New("player name must be 1 to 20 characters")
	ErrUnknownRoom        = errors.New("room does not exist")
	ErrRoomFull           = errors.New("room already has 2 players")
	ErrNotAPlayer         = errors.New("you are not registered as a player in this room")
	ErrWaitingForOpponent = errors.New("waiting for the second player")
	ErrGameOver           = errors.New("game is over, reset to play again")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrAlreadyInRoom      = errors.New("already seated in a room")
)
