package game

import (
	"errors"
	"fmt"
)

const (
	MarkX = "X"
	MarkO = "O"

	// WinnerDraw is reported when the board fills with no line completed.
	WinnerDraw = "Draw"

	EmptyCell = ""

	// Size is the side length of the board.
	Size = 3
)

var (
	ErrInvalidCell  = errors.New("invalid cell coordinates")
	ErrCellOccupied = errors.New("cell is already occupied")
)

// Board is a 3x3 grid; each cell holds MarkX, MarkO or EmptyCell.
type Board [Size][Size]string

// ApplyMove places mark at (row, col). Turn validity is the caller's job;
// the board only refuses out-of-range and occupied cells.
func ApplyMove(board *Board, row, col int, mark string) error {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return fmt.Errorf("%w: (%d, %d)", ErrInvalidCell, row, col)
	}

	if board[row][col] != EmptyCell {
		return ErrCellOccupied
	}

	board[row][col] = mark

	return nil
}

// Evaluate returns MarkX or MarkO when a line of three is complete,
// WinnerDraw when the board is full with no line, and EmptyCell otherwise.
// Rows are checked first, then columns, then the two diagonals.
func Evaluate(board Board) string {
	for row := 0; row < Size; row++ {
		if board[row][0] != EmptyCell && board[row][0] == board[row][1] && board[row][1] == board[row][2] {
			return board[row][0]
		}
	}

	for col := 0; col < Size; col++ {
		if board[0][col] != EmptyCell && board[0][col] == board[1][col] && board[1][col] == board[2][col] {
			return board[0][col]
		}
	}

	if board[0][0] != EmptyCell && board[0][0] == board[1][1] && board[1][1] == board[2][2] {
		return board[0][0]
	}

	if board[0][2] != EmptyCell && board[0][2] == board[1][1] && board[1][1] == board[2][0] {
		return board[0][2]
	}

	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if board[row][col] == EmptyCell {
				return EmptyCell
			}
		}
	}

	return WinnerDraw
}

// ToggleMark returns the opposing mark.
func ToggleMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}
