package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
)

// MeetingRepository defines persistence operations for meeting sessions
type MeetingRepository interface {
	// Create creates a new meeting row
	Create(ctx context.Context, session *entities.MeetingSession) error

	// Update persists session state changes
	Update(ctx context.Context, session *entities.MeetingSession) error

	// FindByID retrieves a meeting by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error)

	// ListByClient retrieves meetings for a client, newest first
	ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*entities.MeetingSession, error)
}
