package apperror

import "errors"

var (
	ErrGameFinished  = errors.New("game is already finished")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrInvalidCell   = errors.New("invalid cell")
	ErrUnknownPlayer = errors.New("unknown player symbol")
	ErrNotEditing    = errors.New("player name is not being edited")
	ErrUnknownAction = errors.New("unknown action")
)
