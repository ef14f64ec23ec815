package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
)

// Session is the in-memory state of one hot-seat game: the turn history and both players.
// The board, the active player and the result are always derived from Turns.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	Players   []*Player `json:"players"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSession(id, playerXName, playerOName string) *Session {
	return &Session{
		ID:    id,
		Turns: []Turn{},
		Players: []*Player{
			NewPlayer(playerXName, PlayerX),
			NewPlayer(playerOName, PlayerO),
		},
		CreatedAt: time.Now().UTC(),
	}
}

func (that *Session) Player(symbol Mark) (*Player, error) {
	for _, player := range that.Players {
		if player.Symbol == symbol {
			return player, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownPlayer, symbol)
}

func (that *Session) Board() Board {
	return DeriveBoard(that.Turns)
}

func (that *Session) ActivePlayer() Mark {
	return DeriveActivePlayer(that.Turns)
}

func (that *Session) IsFinished() bool {
	status, _ := DetermineStatus(that.Board())
	return status != StatusOngoing
}
