package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
)

// SessionRegistry tracks live meeting sessions. The in-memory implementation
// is authoritative for a single process; the Redis implementation lets
// sessions survive a restart.
type SessionRegistry interface {
	// Put stores or replaces a session snapshot
	Put(ctx context.Context, session *entities.MeetingSession) error

	// Get retrieves a session by meeting ID, nil when absent
	Get(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error)

	// List returns every registered session
	List(ctx context.Context) ([]*entities.MeetingSession, error)

	// Delete removes a session from the registry
	Delete(ctx context.Context, id uuid.UUID) error
}
