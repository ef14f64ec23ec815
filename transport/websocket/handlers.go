package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

var (
	errInvalidMessage  = errors.New("invalid message")
	errInvalidPayload  = errors.New("invalid payload")
	errMissingField    = errors.New("missing field")
	errShutdownTimeout = errors.New("websocket connections did not close in time")
	errSessionExpired  = errors.New("session expired")

	// errors caused by the player's input, safe to show in the page
	rejectedInput = []error{
		apperror.ErrGameFinished,
		apperror.ErrCellOccupied,
		apperror.ErrInvalidCell,
		apperror.ErrUnknownPlayer,
		apperror.ErrNotEditing,
		errInvalidPayload,
		errMissingField,
	}
)

func errUnknownAction(action string) error {
	return fmt.Errorf("%w: %q", apperror.ErrUnknownAction, action)
}

// clientError - the message sent back for err and whether err was caused by the input.
func clientError(err error) (string, bool) {
	for _, target := range rejectedInput {
		if errors.Is(err, target) {
			return err.Error(), true
		}
	}

	return "internal error", false
}

func (that *Server) handleGameTurn(ctx context.Context, sessionID string, msg *Message) (*entity.GameState, error) {
	payload, err := decodePayload(msg)
	if err != nil {
		return nil, err
	}

	if payload.Square == nil {
		return nil, fmt.Errorf("%w: square", errMissingField)
	}

	return that.sessionManager.SelectSquare(ctx, sessionID, *payload.Square)
}

func (that *Server) handleGameRestart(ctx context.Context, sessionID string, _ *Message) (*entity.GameState, error) {
	return that.sessionManager.Restart(ctx, sessionID)
}

func (that *Server) handlePlayerEdit(ctx context.Context, sessionID string, msg *Message) (*entity.GameState, error) {
	payload, err := decodePayload(msg)
	if err != nil {
		return nil, err
	}

	return that.sessionManager.ToggleEditing(ctx, sessionID, payload.Symbol)
}

func (that *Server) handlePlayerName(ctx context.Context, sessionID string, msg *Message) (*entity.GameState, error) {
	payload, err := decodePayload(msg)
	if err != nil {
		return nil, err
	}

	if payload.Name == nil {
		return nil, fmt.Errorf("%w: name", errMissingField)
	}

	return that.sessionManager.ChangeName(ctx, sessionID, payload.Symbol, *payload.Name)
}

func (that *Server) handleSessionState(ctx context.Context, sessionID string, _ *Message) (*entity.GameState, error) {
	return that.sessionManager.GetState(ctx, sessionID)
}
