package knowledge

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	"github.com/lemur-ai/meeting-brain/internal/domain/repositories"
	"github.com/lemur-ai/meeting-brain/pkg/config"
)

// Embedder turns texts into embedding vectors
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Scope identifies whose knowledge base an operation touches. A scope with
// a sub-client never reads or writes its parent's collection.
type Scope struct {
	ClientID    uuid.UUID
	SubClientID *string
}

// Key returns the collection key for this scope
func (s Scope) Key() string {
	return entities.CollectionKey(s.ClientID, s.SubClientID)
}

// IngestParams describes one document to ingest
type IngestParams struct {
	Scope    Scope
	FileID   string
	Filename string
	Text     string
}

// QueryParams describes one similarity search
type QueryParams struct {
	Scope Scope
	Query string
	TopK  int
}

// SearchResult is one retrieved snippet with its similarity score
type SearchResult struct {
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	FileID     string  `json:"file_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
}

// Stats summarizes what a scope's collection holds
type Stats struct {
	Collection string `json:"collection"`
	Chunks     int64  `json:"chunks"`
	Files      int64  `json:"files"`
}

// Service is the knowledge base: chunking, embedding, scoped retrieval
type Service struct {
	repo     repositories.KnowledgeRepository
	embedder Embedder
	cfg      *config.KnowledgeConfig
	logger   *zap.Logger
}

// NewService constructs a knowledge service
func NewService(repo repositories.KnowledgeRepository, embedder Embedder, cfg *config.KnowledgeConfig, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Ingest chunks, embeds and stores a document. Returns the number of chunks
// stored.
func (s *Service) Ingest(ctx context.Context, params IngestParams) (int, error) {
	if params.Text == "" {
		return 0, nil
	}

	texts := ChunkText(params.Text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := s.embedder.CreateEmbeddings(ctx, texts)
	if err != nil {
		return 0, apperrors.ErrEmbeddingFailed(err)
	}

	chunks := make([]*entities.KnowledgeChunk, len(texts))
	for i, text := range texts {
		chunks[i] = entities.NewKnowledgeChunk(
			params.Scope.ClientID,
			params.Scope.SubClientID,
			params.FileID,
			params.Filename,
			i,
			text,
			vectors[i],
		)
	}

	if err := s.repo.SaveChunks(ctx, chunks); err != nil {
		return 0, apperrors.ErrKnowledgeIngestFailed(err)
	}

	s.logger.Info("📚 Document ingested",
		zap.String("collection", params.Scope.Key()),
		zap.String("file_id", params.FileID),
		zap.Int("chunks", len(chunks)))

	return len(chunks), nil
}

// Query embeds the query and returns the top-k most similar chunks of the
// scope's collection, highest score first. An empty collection yields an
// empty result, not an error.
func (s *Service) Query(ctx context.Context, params QueryParams) ([]SearchResult, error) {
	topK := params.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	chunks, err := s.repo.ListByCollection(ctx, params.Scope.Key())
	if err != nil {
		return nil, apperrors.ErrKnowledgeQueryFailed(err)
	}
	if len(chunks) == 0 {
		return []SearchResult{}, nil
	}

	vectors, err := s.embedder.CreateEmbeddings(ctx, []string{params.Query})
	if err != nil {
		return nil, apperrors.ErrEmbeddingFailed(err)
	}
	queryVec := vectors[0]

	results := make([]SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, SearchResult{
			Text:       chunk.Text,
			Score:      cosineSimilarity(queryVec, chunk.Embedding),
			FileID:     chunk.FileID,
			Filename:   chunk.Filename,
			ChunkIndex: chunk.ChunkIndex,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteFile removes every chunk of one file from the scope's collection
func (s *Service) DeleteFile(ctx context.Context, scope Scope, fileID string) error {
	if err := s.repo.DeleteByFile(ctx, scope.Key(), fileID); err != nil {
		return apperrors.ErrKnowledgeQueryFailed(err)
	}
	s.logger.Info("🗑️ Document removed from knowledge base",
		zap.String("collection", scope.Key()),
		zap.String("file_id", fileID))
	return nil
}

// Stats reports chunk and file counts for the scope's collection
func (s *Service) Stats(ctx context.Context, scope Scope) (*Stats, error) {
	chunks, files, err := s.repo.CountByCollection(ctx, scope.Key())
	if err != nil {
		return nil, apperrors.ErrKnowledgeQueryFailed(err)
	}
	return &Stats{
		Collection: scope.Key(),
		Chunks:     chunks,
		Files:      files,
	}, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
