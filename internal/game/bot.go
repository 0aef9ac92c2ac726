package game

import "math/rand"

// ChooseBotMove picks the scripted opponent's next cell:
// first a cell that wins for botMark, then a cell that blocks an immediate
// win for humanMark, otherwise a random empty cell. Cells are scanned in
// row-major order. Returns ok=false only when the board is full.
func ChooseBotMove(board Board, botMark, humanMark string) (row, col int, ok bool) {
	if row, col, found := findWinningCell(board, botMark); found {
		return row, col, true
	}

	if row, col, found := findWinningCell(board, humanMark); found {
		return row, col, true
	}

	type cell struct{ row, col int }

	var empty []cell
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if board[row][col] == EmptyCell {
				empty = append(empty, cell{row, col})
			}
		}
	}

	if len(empty) == 0 {
		return 0, 0, false
	}

	chosen := empty[rand.Intn(len(empty))] //nolint: gosec // it's ok

	return chosen.row, chosen.col, true
}

// findWinningCell returns the first empty cell, in row-major order, whose
// occupation by mark completes a line.
func findWinningCell(board Board, mark string) (int, int, bool) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if board[row][col] != EmptyCell {
				continue
			}

			board[row][col] = mark
			if Evaluate(board) == mark {
				return row, col, true
			}
			board[row][col] = EmptyCell
		}
	}

	return 0, 0, false
}
