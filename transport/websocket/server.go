package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository"
)

const (
	actionConnect = "connect"
	actionError   = "error"

	maxMessageSize = 4096
	closeTimeout   = 5 * time.Second

	closeReasonExpired  = "session expired"
	closeReasonShutdown = "server shutting down"
)

type sessionManager interface {
	OpenSession(ctx context.Context) (*entity.GameState, error)
	GetState(ctx context.Context, id string) (*entity.GameState, error)
	SelectSquare(ctx context.Context, id string, square entity.Square) (*entity.GameState, error)
	Restart(ctx context.Context, id string) (*entity.GameState, error)
	ToggleEditing(ctx context.Context, id string, symbol entity.Mark) (*entity.GameState, error)
	ChangeName(ctx context.Context, id string, symbol entity.Mark, name string) (*entity.GameState, error)
	CloseSession(ctx context.Context, id string) error
}

type handlerFunc func(ctx context.Context, sessionID string, msg *Message) (*entity.GameState, error)

type Server struct {
	logger         *slog.Logger
	sessionManager sessionManager
	upgrader       websocket.Upgrader

	handlers map[string]handlerFunc

	// closing, connections and wg.Add are guarded by connectionsMutex
	connectionsMutex sync.Mutex
	closing          bool
	connections      map[*websocket.Conn]struct{}
	wg               sync.WaitGroup
}

func New(logger *slog.Logger, sessionManager sessionManager) *Server {
	server := &Server{
		logger:         logger.With("component", "websocket"),
		sessionManager: sessionManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},

		handlers:    make(map[string]handlerFunc),
		connections: make(map[*websocket.Conn]struct{}),
	}

	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:restart"] = server.handleGameRestart
	server.handlers["player:edit"] = server.handlePlayerEdit
	server.handlers["player:name"] = server.handlePlayerName
	server.handlers["session:state"] = server.handleSessionState

	return server
}

// ServeHTTP - upgrades the connection and binds a fresh session to it until it closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	if !that.acquire() {
		http.Error(writer, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer that.wg.Done()

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	if !that.track(conn) {
		that.sendClose(conn, websocket.CloseGoingAway, closeReasonShutdown)
		return
	}
	defer that.untrack(conn)

	ctx := context.WithoutCancel(req.Context())

	state, err := that.sessionManager.OpenSession(ctx)
	if err != nil {
		log.Error("failed to open session", "error", err)
		_ = that.sendErrorResponse(conn, actionConnect, nil, "failed to start a new game")
		return
	}

	log = log.With("sessionID", state.SessionID)

	defer that.handleDisconnect(state.SessionID)

	if err = that.sendMessage(conn, actionConnect, ResponsePayload{Game: state}); err != nil {
		log.Error("failed to send connect message", "error", err)
		return
	}

	log.Info("WebSocket connection established")

	that.handleMessages(ctx, conn, state.SessionID)
}

// acquire - counts a new connection in, unless the server is shutting down.
func (that *Server) acquire() bool {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if that.closing {
		return false
	}

	that.wg.Add(1)

	return true
}

func (that *Server) track(conn *websocket.Conn) bool {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if that.closing {
		return false
	}

	that.connections[conn] = struct{}{}

	return true
}

func (that *Server) untrack(conn *websocket.Conn) {
	that.connectionsMutex.Lock()
	delete(that.connections, conn)
	that.connectionsMutex.Unlock()
}

// handleMessages - processes messages from the client until the connection fails or closes.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, sessionID string) {
	log := that.logger.With("method", "handleMessages", "sessionID", sessionID)

	conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)

			if err = that.sendErrorResponse(conn, actionError, nil, errInvalidMessage.Error()); err != nil {
				log.Error("failed to send error response", "error", err)
				return
			}

			continue
		}

		err = that.processMessage(ctx, conn, sessionID, &message)
		if errors.Is(err, errSessionExpired) {
			log.Info("session expired, connection closed")
			return
		}

		if err != nil {
			log.Error("failed to send response", "action", message.Action, "error", err)
			return
		}
	}
}

// processMessage - runs the handler for the action and answers with the resulting state.
// Only a failed write or an expired session is returned as an error.
func (that *Server) processMessage(ctx context.Context, conn *websocket.Conn, sessionID string, msg *Message) error {
	log := that.logger.With("method", "processMessage", "sessionID", sessionID, "action", msg.Action)

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Warn("unknown action")
		return that.sendErrorResponse(conn, msg.Action, that.currentState(ctx, sessionID), errUnknownAction(msg.Action).Error())
	}

	state, err := handler(ctx, sessionID, msg)
	if errors.Is(err, repository.ErrSessionNotFound) {
		that.sendClose(conn, websocket.CloseNormalClosure, closeReasonExpired)
		return errSessionExpired
	}

	if err != nil {
		errorMsg, rejected := clientError(err)
		if !rejected {
			log.Error("failed to process message", "error", err)
			return that.sendErrorResponse(conn, msg.Action, nil, errorMsg)
		}

		log.Debug("input rejected", "error", err)

		if state == nil {
			state = that.currentState(ctx, sessionID)
		}

		return that.sendErrorResponse(conn, msg.Action, state, errorMsg)
	}

	return that.sendMessage(conn, msg.Action, ResponsePayload{Game: state})
}

// currentState - the session state to re-render after rejected input; nil when it cannot be loaded.
func (that *Server) currentState(ctx context.Context, sessionID string) *entity.GameState {
	state, err := that.sessionManager.GetState(ctx, sessionID)
	if err != nil {
		that.logger.Error("failed to get session state", "sessionID", sessionID, "error", err)
		return nil
	}

	return state
}

func (that *Server) handleDisconnect(sessionID string) {
	log := that.logger.With("method", "handleDisconnect", "sessionID", sessionID)

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	err := that.sessionManager.CloseSession(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		log.Debug("session already expired")
		return
	}

	if err != nil {
		log.Error("failed to close session", "error", err)
		return
	}

	log.Info("player disconnected")
}

// sendClose - sends a close frame; the page shows reason to the player.
func (that *Server) sendClose(conn *websocket.Conn, code int, reason string) {
	message := websocket.FormatCloseMessage(code, reason)

	if err := conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait)); err != nil {
		that.logger.Debug("failed to send close message", "error", err)
	}
}

// Shutdown - closes every open connection and waits until their sessions are released.
func (that *Server) Shutdown(ctx context.Context) error {
	that.connectionsMutex.Lock()
	that.closing = true
	for conn := range that.connections {
		that.sendClose(conn, websocket.CloseGoingAway, closeReasonShutdown)
		_ = conn.Close()
	}
	that.connectionsMutex.Unlock()

	done := make(chan struct{})
	go func() {
		that.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errShutdownTimeout, ctx.Err())
	}
}
