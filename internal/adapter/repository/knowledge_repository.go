package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	repo "github.com/lemur-ai/meeting-brain/internal/domain/repositories"
)

type knowledgeRepository struct {
	db *gorm.DB
}

// NewKnowledgeRepository creates a new knowledge repository backed by GORM
func NewKnowledgeRepository(db *gorm.DB) repo.KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

func (r *knowledgeRepository) SaveChunks(ctx context.Context, chunks []*entities.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(chunks, 100).Error
}

func (r *knowledgeRepository) ListByCollection(ctx context.Context, collection string) ([]*entities.KnowledgeChunk, error) {
	var chunks []*entities.KnowledgeChunk
	err := r.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("file_id, chunk_index").
		Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *knowledgeRepository) DeleteByFile(ctx context.Context, collection, fileID string) error {
	return r.db.WithContext(ctx).
		Where("collection = ? AND file_id = ?", collection, fileID).
		Delete(&entities.KnowledgeChunk{}).Error
}

func (r *knowledgeRepository) CountByCollection(ctx context.Context, collection string) (int64, int64, error) {
	var chunks int64
	err := r.db.WithContext(ctx).
		Model(&entities.KnowledgeChunk{}).
		Where("collection = ?", collection).
		Count(&chunks).Error
	if err != nil {
		return 0, 0, err
	}

	var files int64
	err = r.db.WithContext(ctx).
		Model(&entities.KnowledgeChunk{}).
		Where("collection = ?", collection).
		Distinct("file_id").
		Count(&files).Error
	if err != nil {
		return 0, 0, err
	}

	return chunks, files, nil
}
