package entities

import (
	"time"

	"github.com/google/uuid"
)

// OutputType identifies what kind of artifact an output holds
type OutputType string

const (
	OutputTypeSummary     OutputType = "summary"
	OutputTypeActionItems OutputType = "action_items"
	OutputTypeFollowUp    OutputType = "follow_up_email"
	OutputTypeEmail       OutputType = "email"
	OutputTypeProposal    OutputType = "proposal"
	OutputTypeScopeOfWork OutputType = "scope_of_work"
)

// Output represents one generated artifact. Rows are immutable; repeated
// processing appends new rows rather than updating old ones.
type Output struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OutputType  OutputType `json:"output_type" gorm:"type:varchar(50);not null;index"`
	Title       string     `json:"title" gorm:"type:varchar(500)"`
	Content     string     `json:"content" gorm:"type:text;not null"`
	Prompt      string     `json:"prompt" gorm:"type:text"`
	ContextUsed string     `json:"context_used" gorm:"type:text"`
	ClientID    uuid.UUID  `json:"client_id" gorm:"type:uuid;not null;index"`
	SubClientID *string    `json:"sub_client_id,omitempty" gorm:"type:varchar(255)"`
	MeetingID   *string    `json:"meeting_id,omitempty" gorm:"type:varchar(255);index"`
	TokensUsed  int        `json:"tokens_used" gorm:"default:0"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// NewOutput creates an output row ready to persist
func NewOutput(outputType OutputType, title, content, prompt, contextUsed string, clientID uuid.UUID, subClientID *string, meetingID *string, tokensUsed int) *Output {
	return &Output{
		ID:          uuid.New(),
		OutputType:  outputType,
		Title:       title,
		Content:     content,
		Prompt:      prompt,
		ContextUsed: contextUsed,
		ClientID:    clientID,
		SubClientID: subClientID,
		MeetingID:   meetingID,
		TokensUsed:  tokensUsed,
		CreatedAt:   time.Now(),
	}
}

// TableName specifies the table name for GORM
func (Output) TableName() string {
	return "outputs"
}
