package entity

const (
	StatusOngoing = "ongoing"
	StatusWon     = "won"
	StatusDraw    = "draw"
)

// WinCombos - rows, then columns, then diagonals.
var WinCombos = [8][3]Square{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

type Board [BoardSize][BoardSize]Mark

// DeriveBoard - folds the turn history into a board.
func DeriveBoard(turns []Turn) Board {
	var board Board

	for _, turn := range turns {
		if !turn.Square.IsValid() || !turn.Player.IsValid() {
			continue
		}

		board[turn.Square.Row][turn.Square.Col] = turn.Player
	}

	return board
}

func (that *Board) At(square Square) Mark {
	if !square.IsValid() {
		return EmptyCell
	}

	return that[square.Row][square.Col]
}

func (that *Board) FilledCount() int {
	count := 0
	for _, row := range that {
		for _, cell := range row {
			if cell != EmptyCell {
				count++
			}
		}
	}

	return count
}

func (that *Board) IsFull() bool {
	return that.FilledCount() == BoardSize*BoardSize
}

// DetermineWinner - returns the mark of the first complete line, or EmptyCell.
func DetermineWinner(board Board) Mark {
	for _, combo := range WinCombos {
		a, b, c := board.At(combo[0]), board.At(combo[1]), board.At(combo[2])
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

// DetermineStatus - returns the game status and, for a won game, the winner.
func DetermineStatus(board Board) (string, Mark) {
	if winner := DetermineWinner(board); winner != EmptyCell {
		return StatusWon, winner
	}

	// the game continues until all the squares are full
	if board.IsFull() {
		return StatusDraw, EmptyCell
	}

	return StatusOngoing, EmptyCell
}
