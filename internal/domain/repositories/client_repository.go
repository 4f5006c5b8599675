package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
)

// ClientRepository defines persistence operations for clients
type ClientRepository interface {
	// Create creates a new client record
	Create(ctx context.Context, client *entities.Client) error

	// FindByID retrieves a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Client, error)

	// ListSubClients retrieves the sub-clients of a parent
	ListSubClients(ctx context.Context, parentID uuid.UUID) ([]*entities.Client, error)
}
