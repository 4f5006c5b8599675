package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Embedding is a JSONB-serialized embedding vector
type Embedding []float32

// Scan implements sql.Scanner interface for GORM
func (e *Embedding) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, e)
}

// Value implements driver.Valuer interface for GORM
func (e Embedding) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// KnowledgeChunk represents one embedded slice of an ingested document
type KnowledgeChunk struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Collection  string    `json:"collection" gorm:"type:varchar(255);not null;index"`
	ClientID    uuid.UUID `json:"client_id" gorm:"type:uuid;not null;index"`
	SubClientID *string   `json:"sub_client_id,omitempty" gorm:"type:varchar(255)"`
	FileID      string    `json:"file_id" gorm:"type:varchar(255);not null;index"`
	Filename    string    `json:"filename" gorm:"type:varchar(500)"`
	ChunkIndex  int       `json:"chunk_index" gorm:"not null"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	Embedding   Embedding `json:"-" gorm:"type:jsonb;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// NewKnowledgeChunk creates a chunk bound to its scope collection
func NewKnowledgeChunk(clientID uuid.UUID, subClientID *string, fileID, filename string, index int, text string, embedding []float32) *KnowledgeChunk {
	return &KnowledgeChunk{
		ID:          uuid.New(),
		Collection:  CollectionKey(clientID, subClientID),
		ClientID:    clientID,
		SubClientID: subClientID,
		FileID:      fileID,
		Filename:    filename,
		ChunkIndex:  index,
		Text:        text,
		Embedding:   embedding,
		CreatedAt:   time.Now(),
	}
}

// CollectionKey derives the isolation key for a client scope.
// A sub-client scope never matches its parent's key.
func CollectionKey(clientID uuid.UUID, subClientID *string) string {
	if subClientID != nil && *subClientID != "" {
		return fmt.Sprintf("client_%s_sub_%s", clientID, *subClientID)
	}
	return fmt.Sprintf("client_%s", clientID)
}

// TableName specifies the table name for GORM
func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}
