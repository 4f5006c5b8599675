package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	"github.com/lemur-ai/meeting-brain/internal/domain/repositories"
)

// MemoryRegistry is the default in-process session registry
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entities.MeetingSession
}

// NewMemoryRegistry creates an empty in-memory registry
func NewMemoryRegistry() repositories.SessionRegistry {
	return &MemoryRegistry{
		sessions: make(map[uuid.UUID]*entities.MeetingSession),
	}
}

// Put stores or replaces a session snapshot. The registry keeps its own copy
// so callers can keep mutating theirs.
func (r *MemoryRegistry) Put(_ context.Context, session *entities.MeetingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

// Get retrieves a session by meeting ID, nil when absent
func (r *MemoryRegistry) Get(_ context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

// List returns every registered session
func (r *MemoryRegistry) List(_ context.Context) ([]*entities.MeetingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.MeetingSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		copied := *session
		out = append(out, &copied)
	}
	return out, nil
}

// Delete removes a session from the registry
func (r *MemoryRegistry) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}
