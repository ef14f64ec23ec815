package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

type memSession struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemorySessionRepository - keeps sessions in process memory. Sessions are stored as JSON
// so callers never share pointers with the store.
func NewMemorySessionRepository() SessionRepository {
	return &memSession{
		sessions: make(map[string][]byte),
	}
}

func (that *memSession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	that.mu.Lock()
	that.sessions[session.ID] = sessionJSON
	that.mu.Unlock()

	return nil
}

func (that *memSession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	sessionJSON, ok := that.sessions[id]
	that.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	var existingSession entity.Session
	if err := json.Unmarshal(sessionJSON, &existingSession); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &existingSession, nil
}

func (that *memSession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}
