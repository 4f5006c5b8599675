package repositories

import (
	"context"

	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
)

// KnowledgeRepository defines persistence operations for embedded chunks
type KnowledgeRepository interface {
	// SaveChunks persists a batch of chunks for one ingested file
	SaveChunks(ctx context.Context, chunks []*entities.KnowledgeChunk) error

	// ListByCollection retrieves every chunk stored under a collection key
	ListByCollection(ctx context.Context, collection string) ([]*entities.KnowledgeChunk, error)

	// DeleteByFile removes all chunks of one file within a collection
	DeleteByFile(ctx context.Context, collection, fileID string) error

	// CountByCollection returns chunk and distinct-file counts for a collection
	CountByCollection(ctx context.Context, collection string) (chunks int64, files int64, err error)
}
