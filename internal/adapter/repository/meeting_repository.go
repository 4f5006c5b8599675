package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	repo "github.com/lemur-ai/meeting-brain/internal/domain/repositories"
)

type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository backed by GORM
func NewMeetingRepository(db *gorm.DB) repo.MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Create(ctx context.Context, session *entities.MeetingSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *meetingRepository) Update(ctx context.Context, session *entities.MeetingSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *meetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	var session entities.MeetingSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *meetingRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*entities.MeetingSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []*entities.MeetingSession
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
