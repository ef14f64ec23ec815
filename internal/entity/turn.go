package entity

import "fmt"

const BoardSize = 3

type Mark string

const (
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	EmptyCell Mark = ""

	// StartingMark - the mark that moves first on an empty board.
	StartingMark = PlayerX
)

func (that Mark) IsValid() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent - returns the other player's mark.
func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Square) IsValid() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// Turn is a single placement of a mark; turns are never modified after they are recorded.
type Turn struct {
	Square Square `json:"square"`
	Player Mark   `json:"player"`
}

func (that Turn) String() string {
	return fmt.Sprintf("%s selected %d, %d", that.Player, that.Square.Row, that.Square.Col)
}

// DeriveActivePlayer - returns whose turn is next, given turns stored oldest-first.
func DeriveActivePlayer(turns []Turn) Mark {
	if len(turns) == 0 {
		return StartingMark
	}

	return turns[len(turns)-1].Player.Opponent()
}
