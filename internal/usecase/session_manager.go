package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
)

type sessionRepoDep interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepoDep

	playerXName string
	playerOName string
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepoDep, playerXName, playerOName string) *SessionManager {
	return &SessionManager{
		logger:      logger,
		sessionRepo: sessionRepo,

		playerXName: playerXName,
		playerOName: playerOName,
	}
}

// OpenSession - starts a fresh game with default player names.
func (that *SessionManager) OpenSession(ctx context.Context) (*entity.GameState, error) {
	session := entity.NewSession(pkg.GenerateNewSessionID(), that.playerXName, that.playerOName)

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.With("method", "OpenSession").Debug("session opened", "sessionID", session.ID)

	return tictactoe.DeriveState(session), nil
}

func (that *SessionManager) GetState(ctx context.Context, id string) (*entity.GameState, error) {
	session, err := that.getSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return tictactoe.DeriveState(session), nil
}

// SelectSquare - plays the active player's mark on square. A rejected move returns the unchanged
// state together with the error.
func (that *SessionManager) SelectSquare(ctx context.Context, id string, square entity.Square) (*entity.GameState, error) {
	return that.apply(ctx, id, func(session *entity.Session) error {
		return tictactoe.SelectSquare(session, square)
	})
}

func (that *SessionManager) Restart(ctx context.Context, id string) (*entity.GameState, error) {
	return that.apply(ctx, id, func(session *entity.Session) error {
		tictactoe.Restart(session)
		return nil
	})
}

func (that *SessionManager) ToggleEditing(ctx context.Context, id string, symbol entity.Mark) (*entity.GameState, error) {
	return that.apply(ctx, id, func(session *entity.Session) error {
		return tictactoe.ToggleEditing(session, symbol)
	})
}

func (that *SessionManager) ChangeName(ctx context.Context, id string, symbol entity.Mark, name string) (*entity.GameState, error) {
	return that.apply(ctx, id, func(session *entity.Session) error {
		return tictactoe.ChangeName(session, symbol, name)
	})
}

func (that *SessionManager) CloseSession(ctx context.Context, id string) error {
	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.With("method", "CloseSession").Debug("session closed", "sessionID", id)

	return nil
}

// apply - loads the session, runs change and saves only when change succeeds.
func (that *SessionManager) apply(ctx context.Context, id string, change func(*entity.Session) error) (*entity.GameState, error) {
	session, err := that.getSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = change(session); err != nil {
		return tictactoe.DeriveState(session), err
	}

	if err = that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return tictactoe.DeriveState(session), nil
}

func (that *SessionManager) getSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}
