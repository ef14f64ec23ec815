package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-hotseat/testing/suite"
)

type response struct {
	Action  string          `json:"action"`
	Payload ResponsePayload `json:"payload"`
}

func newTestServer(t *testing.T) (*Server, repository.SessionRepository, string) {
	t.Helper()

	return newTestServerWithRepo(t, repository.NewMemorySessionRepository())
}

func newTestServerWithRepo(t *testing.T, sessionRepo repository.SessionRepository) (*Server, repository.SessionRepository, string) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sessionManager := usecase.NewSessionManager(logger, sessionRepo, "Player 1", "Player 2")
	server := New(logger, sessionManager)

	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)

	return server, sessionRepo, "ws" + strings.TrimPrefix(httpServer.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload any) response {
	t.Helper()

	msg := Message{Action: action}
	if payload != nil {
		payloadJSON, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = payloadJSON
	}

	require.NoError(t, conn.WriteJSON(msg))

	return read(t, conn)
}

func read(t *testing.T, conn *websocket.Conn) response {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var resp response
	require.NoError(t, conn.ReadJSON(&resp))

	return resp
}

func TestServer_Connect(t *testing.T) {
	// Given: a running server
	_, _, url := newTestServer(t)

	// When: a browser connects
	conn := dial(t, url)
	resp := read(t, conn)

	// Then: it receives a fresh game
	assert.Equal(t, actionConnect, resp.Action)
	assert.Empty(t, resp.Payload.Error)
	require.NotNil(t, resp.Payload.Game)
	assert.NotEmpty(t, resp.Payload.Game.SessionID)
	assert.Equal(t, entity.PlayerX, resp.Payload.Game.ActivePlayer)
	assert.Equal(t, entity.StatusOngoing, resp.Payload.Game.Status)
}

func TestServer_GameTurn(t *testing.T) {
	_, _, url := newTestServer(t)
	conn := dial(t, url)
	read(t, conn)

	t.Run("Turn is applied", func(t *testing.T) {
		// When: X selects the top left square
		resp := send(t, conn, "game:turn", map[string]any{"square": map[string]int{"row": 0, "col": 0}})

		// Then: the board shows the move and O is next
		assert.Equal(t, "game:turn", resp.Action)
		assert.Empty(t, resp.Payload.Error)
		require.NotNil(t, resp.Payload.Game)
		assert.Equal(t, entity.PlayerX, resp.Payload.Game.Board[0][0])
		assert.Equal(t, entity.PlayerO, resp.Payload.Game.ActivePlayer)
		require.Len(t, resp.Payload.Game.Log, 1)
		assert.Equal(t, "X selected 0, 0", resp.Payload.Game.Log[0].Text)
	})

	t.Run("Occupied square returns the unchanged state", func(t *testing.T) {
		resp := send(t, conn, "game:turn", map[string]any{"square": map[string]int{"row": 0, "col": 0}})

		assert.Contains(t, resp.Payload.Error, "occupied")
		require.NotNil(t, resp.Payload.Game)
		assert.Len(t, resp.Payload.Game.Log, 1)
		assert.Equal(t, entity.PlayerO, resp.Payload.Game.ActivePlayer)
	})

	t.Run("Missing square is rejected", func(t *testing.T) {
		resp := send(t, conn, "game:turn", map[string]any{})

		assert.Contains(t, resp.Payload.Error, "square")
		require.NotNil(t, resp.Payload.Game)
		assert.Len(t, resp.Payload.Game.Log, 1)
	})

	t.Run("Out of range square is rejected", func(t *testing.T) {
		resp := send(t, conn, "game:turn", map[string]any{"square": map[string]int{"row": 3, "col": 0}})

		assert.Contains(t, resp.Payload.Error, "invalid cell")
	})
}

func TestServer_PlayAgain(t *testing.T) {
	_, _, url := newTestServer(t)
	conn := dial(t, url)
	read(t, conn)

	// Given: X wins along the top row
	moves := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}}
	var resp response
	for _, move := range moves {
		resp = send(t, conn, "game:turn", map[string]any{"square": map[string]int{"row": move[0], "col": move[1]}})
		require.Empty(t, resp.Payload.Error)
	}

	assert.Equal(t, entity.StatusWon, resp.Payload.Game.Status)
	assert.Equal(t, entity.PlayerX, resp.Payload.Game.Winner)

	// When: further moves are attempted and then the game is restarted
	rejected := send(t, conn, "game:turn", map[string]any{"square": map[string]int{"row": 2, "col": 2}})
	restarted := send(t, conn, "game:restart", nil)

	// Then: the move is refused and the restart clears the board
	assert.Contains(t, rejected.Payload.Error, "finished")
	assert.Empty(t, restarted.Payload.Error)
	assert.Equal(t, entity.Board{}, restarted.Payload.Game.Board)
	assert.Equal(t, entity.StatusOngoing, restarted.Payload.Game.Status)
}

func TestServer_PlayerName(t *testing.T) {
	_, _, url := newTestServer(t)
	conn := dial(t, url)
	read(t, conn)

	t.Run("Name cannot change outside editing", func(t *testing.T) {
		resp := send(t, conn, "player:name", map[string]string{"symbol": "X", "name": "Ann"})

		assert.NotEmpty(t, resp.Payload.Error)
		assert.Equal(t, "Player 1", resp.Payload.Game.Players[0].Name)
	})

	t.Run("Edit, type and save", func(t *testing.T) {
		resp := send(t, conn, "player:edit", map[string]string{"symbol": "X"})
		require.Empty(t, resp.Payload.Error)
		assert.True(t, resp.Payload.Game.Players[0].Editing)

		resp = send(t, conn, "player:name", map[string]string{"symbol": "X", "name": "Ann"})
		require.Empty(t, resp.Payload.Error)

		resp = send(t, conn, "player:edit", map[string]string{"symbol": "X"})
		require.Empty(t, resp.Payload.Error)
		assert.False(t, resp.Payload.Game.Players[0].Editing)
		assert.Equal(t, "Ann", resp.Payload.Game.Players[0].Name)
	})

	t.Run("Unknown symbol is rejected", func(t *testing.T) {
		resp := send(t, conn, "player:edit", map[string]string{"symbol": "Z"})

		assert.Contains(t, resp.Payload.Error, "unknown player")
	})
}

func TestServer_InvalidInput(t *testing.T) {
	_, _, url := newTestServer(t)
	conn := dial(t, url)
	read(t, conn)

	t.Run("Unknown action", func(t *testing.T) {
		resp := send(t, conn, "game:surrender", nil)

		assert.Equal(t, "game:surrender", resp.Action)
		assert.Contains(t, resp.Payload.Error, "unknown action")
		assert.NotNil(t, resp.Payload.Game)
	})

	t.Run("Malformed message", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
		resp := read(t, conn)

		assert.Equal(t, actionError, resp.Action)
		assert.Equal(t, errInvalidMessage.Error(), resp.Payload.Error)
	})

	t.Run("Connection keeps working", func(t *testing.T) {
		resp := send(t, conn, "session:state", nil)

		assert.Empty(t, resp.Payload.Error)
		assert.NotNil(t, resp.Payload.Game)
	})
}

func TestServer_Disconnect(t *testing.T) {
	// Given: a connected browser
	_, sessionRepo, url := newTestServer(t)
	conn := dial(t, url)
	sessionID := read(t, conn).Payload.Game.SessionID

	_, err := sessionRepo.GetByID(context.Background(), sessionID)
	require.NoError(t, err)

	// When: the page is closed
	require.NoError(t, conn.Close())

	// Then: its session is released
	assert.Eventually(t, func() bool {
		_, err := sessionRepo.GetByID(context.Background(), sessionID)
		return err != nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestServer_Shutdown(t *testing.T) {
	server, sessionRepo, url := newTestServer(t)
	conn := dial(t, url)
	sessionID := read(t, conn).Payload.Game.SessionID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, server.Shutdown(ctx))

	_, err := sessionRepo.GetByID(context.Background(), sessionID)
	require.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestServer_SessionExpired(t *testing.T) {
	// Given: a page connected to a redis backed session with a one hour ttl
	_, st := suite.New(t)
	_, _, url := newTestServerWithRepo(t, repository.NewSessionRepository(st.Storage, time.Hour))
	conn := dial(t, url)
	read(t, conn)

	// When: the page stays idle past the ttl and then plays
	st.Redis.FastForward(61 * time.Minute)
	require.NoError(t, conn.WriteJSON(Message{Action: "game:turn", Payload: json.RawMessage(`{"square":{"row":0,"col":0}}`)}))

	// Then: the server closes the connection and says why
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()

	var closeErr *websocket.CloseError
	require.True(t, errors.As(err, &closeErr), "expected a close frame, got %v", err)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, closeReasonExpired, closeErr.Text)
}

func TestServer_ActivityKeepsSessionAlive(t *testing.T) {
	// Given: a page connected to a redis backed session with a one hour ttl
	_, st := suite.New(t)
	_, _, url := newTestServerWithRepo(t, repository.NewSessionRepository(st.Storage, time.Hour))
	conn := dial(t, url)
	read(t, conn)

	// When: the page reads its state every 40 minutes
	st.Redis.FastForward(40 * time.Minute)
	first := send(t, conn, "session:state", nil)
	st.Redis.FastForward(40 * time.Minute)
	second := send(t, conn, "session:state", nil)

	// Then: the session outlives the original ttl
	assert.Empty(t, first.Payload.Error)
	assert.Empty(t, second.Payload.Error)
	assert.NotNil(t, second.Payload.Game)
}

func TestServer_RefusesConnectionsAfterShutdown(t *testing.T) {
	// Given: a server that has been shut down
	server, _, url := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	// When: a new page connects
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		_ = conn.Close()
	}
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}

	// Then: the upgrade is refused
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
