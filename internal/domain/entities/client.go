package entities

import (
	"time"

	"github.com/google/uuid"
)

// Client represents an organization whose meetings and documents are tracked.
// A row with a non-nil ParentID is a sub-client of that parent.
type Client struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string     `json:"name" gorm:"type:varchar(255);not null"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsSubClient reports whether this client belongs to a parent
func (c *Client) IsSubClient() bool {
	return c.ParentID != nil
}

// TableName specifies the table name for GORM
func (Client) TableName() string {
	return "clients"
}
