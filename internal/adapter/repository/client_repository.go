package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	repo "github.com/lemur-ai/meeting-brain/internal/domain/repositories"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository backed by GORM
func NewClientRepository(db *gorm.DB) repo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entities.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Client, error) {
	var client entities.Client
	err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) ListSubClients(ctx context.Context, parentID uuid.UUID) ([]*entities.Client, error) {
	var clients []*entities.Client
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}
