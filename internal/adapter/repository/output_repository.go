package repository

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	repo "github.com/lemur-ai/meeting-brain/internal/domain/repositories"
)

type outputRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewOutputRepository creates a new output repository backed by GORM
func NewOutputRepository(db *gorm.DB, logger *zap.Logger) repo.OutputRepository {
	return &outputRepository{db: db, logger: logger}
}

// Store persists an output. A rejected insert is retried as a degraded
// direct insert without the meeting reference before the failure surfaces.
func (r *outputRepository) Store(ctx context.Context, output *entities.Output) error {
	createErr := r.db.WithContext(ctx).Create(output).Error
	if createErr == nil {
		return nil
	}
	r.logger.Warn("⚠️ Output insert rejected, retrying degraded",
		zap.String("output_id", output.ID.String()),
		zap.String("output_type", string(output.OutputType)),
		zap.Error(createErr))

	q := `INSERT INTO outputs (id, output_type, title, content, prompt, context_used, client_id, sub_client_id, tokens_used, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := r.db.WithContext(ctx).Exec(q,
		output.ID, output.OutputType, output.Title, output.Content, output.Prompt,
		output.ContextUsed, output.ClientID, output.SubClientID, output.TokensUsed,
		output.CreatedAt,
	).Error
	if err != nil {
		return apperrors.ErrPersistenceRejected(string(output.OutputType), err)
	}
	return nil
}

func (r *outputRepository) LatestByMeeting(ctx context.Context, meetingID string) (map[entities.OutputType]*entities.Output, error) {
	var rows []entities.Output
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// Later rows overwrite earlier ones, leaving the latest per type
	latest := make(map[entities.OutputType]*entities.Output, len(rows))
	for i := range rows {
		latest[rows[i].OutputType] = &rows[i]
	}
	return latest, nil
}

func (r *outputRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit int) ([]*entities.Output, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []*entities.Output
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
