package service

import (
	"errors"

	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// BotService picks the scripted opponent's next cell: win if possible,
// block an immediate human win otherwise, else play a random empty cell.
type BotService interface {
	ChooseCell(room *entity.Room) (row, col int, err error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

func (that *botService) ChooseCell(room *entity.Room) (int, int, error) {
	botMark := game.MarkO
	humanMark := game.MarkX

	row, col, ok := game.ChooseBotMove(room.Board, botMark, humanMark)
	if !ok {
		return 0, 0, ErrNoAvailableMoves
	}

	return row, col, nil
}
