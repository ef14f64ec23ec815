package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

// SelectSquare - records a turn of the active player. On error the session is left untouched.
func SelectSquare(session *entity.Session, square entity.Square) error {
	if err := validateMove(session, square); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	session.Turns = append(session.Turns, entity.Turn{
		Square: square,
		Player: session.ActivePlayer(),
	})

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(session *entity.Session, square entity.Square) error {
	if !square.IsValid() {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrInvalidCell, square.Row, square.Col)
	}

	if session.IsFinished() {
		return apperror.ErrGameFinished
	}

	board := session.Board()
	if board.At(square) != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// Restart - clears the turn history; player names survive.
func Restart(session *entity.Session) {
	session.Turns = []entity.Turn{}
}

func ToggleEditing(session *entity.Session, symbol entity.Mark) error {
	player, err := session.Player(symbol)
	if err != nil {
		return err
	}

	player.ToggleEditing()

	return nil
}

func ChangeName(session *entity.Session, symbol entity.Mark, name string) error {
	player, err := session.Player(symbol)
	if err != nil {
		return err
	}

	if err = player.ChangeName(name); err != nil {
		return fmt.Errorf("player %s: %w", symbol, err)
	}

	return nil
}

// DeriveState - builds the read model of the session.
func DeriveState(session *entity.Session) *entity.GameState {
	board := session.Board()
	status, winner := entity.DetermineStatus(board)

	activePlayer := session.ActivePlayer()
	if status != entity.StatusOngoing {
		activePlayer = entity.EmptyCell
	}

	players := make([]entity.PlayerState, 0, len(session.Players))
	for _, player := range session.Players {
		players = append(players, entity.PlayerState{
			Name:    player.DisplayName(),
			Symbol:  player.Symbol,
			Editing: player.Editing,
			Active:  player.Symbol == activePlayer,
		})
	}

	log := make([]entity.LogEntry, 0, len(session.Turns))
	for i := len(session.Turns) - 1; i >= 0; i-- {
		turn := session.Turns[i]
		log = append(log, entity.LogEntry{
			Player: turn.Player,
			Square: turn.Square,
			Text:   turn.String(),
		})
	}

	return &entity.GameState{
		SessionID:    session.ID,
		Board:        board,
		ActivePlayer: activePlayer,
		Players:      players,
		Log:          log,
		Winner:       winner,
		Status:       status,
	}
}
