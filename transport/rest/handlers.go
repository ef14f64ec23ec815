package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository"
)

type sessionService interface {
	GetState(ctx context.Context, id string) (*entity.GameState, error)
}

type SessionHandlers struct {
	logger         *slog.Logger
	sessionService sessionService
}

func NewSessionHandlers(logger *slog.Logger, sessionService sessionService) *SessionHandlers {
	return &SessionHandlers{
		logger:         logger,
		sessionService: sessionService,
	}
}

// GetSession - returns the current state of a live session.
func (that *SessionHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetSession")

	id := chi.URLParam(r, "id")

	state, err := that.sessionService.GetState(r.Context(), id)
	if errors.Is(err, repository.ErrSessionNotFound) {
		writeJSON(log, w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}

	if err != nil {
		log.Error("failed to get session state", "sessionID", id, "error", err)
		writeJSON(log, w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		return
	}

	writeJSON(log, w, http.StatusOK, state)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to write response", "error", err)
	}
}
