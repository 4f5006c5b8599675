package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
)

// OutputRepository defines persistence operations for generated artifacts
type OutputRepository interface {
	// Store persists an output. Implementations fall back to a degraded
	// insert (meeting reference dropped) before reporting failure.
	Store(ctx context.Context, output *entities.Output) error

	// LatestByMeeting retrieves the most recent output of each type for a
	// meeting
	LatestByMeeting(ctx context.Context, meetingID string) (map[entities.OutputType]*entities.Output, error)

	// ListByClient retrieves outputs for a client, newest first
	ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*entities.Output, error)
}
