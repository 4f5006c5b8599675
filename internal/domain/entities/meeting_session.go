package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionStatus represents the lifecycle state of a meeting session
type SessionStatus string

const (
	SessionStatusRecording SessionStatus = "recording" // Bot dispatched, monitor polling
	SessionStatusCompleted SessionStatus = "completed" // Recording finished normally
	SessionStatusFailed    SessionStatus = "failed"    // Recording ended abnormally
)

// FailureCause classifies why a session reached the failed state
type FailureCause string

const (
	FailureCauseNone                FailureCause = ""
	FailureCauseRecordingFailed     FailureCause = "recording_failed"
	FailureCauseTimeout             FailureCause = "timeout"
	FailureCauseProviderUnreachable FailureCause = "provider_unreachable"
)

// Attendees is a JSONB list of attendee email addresses
type Attendees []string

// Scan implements sql.Scanner interface for GORM
func (a *Attendees) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Value implements driver.Valuer interface for GORM
func (a Attendees) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// MeetingSession represents one tracked meeting recording
type MeetingSession struct {
	ID           uuid.UUID      `json:"meeting_id" gorm:"type:uuid;primary_key"`
	JobID        *string        `json:"job_id,omitempty" gorm:"type:varchar(255);index"`
	Status       SessionStatus  `json:"status" gorm:"type:varchar(20);not null;default:'recording';index"`
	FailureCause FailureCause   `json:"failure_cause,omitempty" gorm:"type:varchar(50);default:''"`
	ClientID     uuid.UUID      `json:"client_id" gorm:"type:uuid;not null;index"`
	SubClientID  *string        `json:"sub_client_id,omitempty" gorm:"type:varchar(255)"`
	Title        string         `json:"title" gorm:"type:varchar(500);not null"`
	Attendees    Attendees      `json:"attendees,omitempty" gorm:"type:jsonb;default:'[]'"`
	MeetingURL   string         `json:"meeting_url" gorm:"type:text;not null"`
	BotData      datatypes.JSON `json:"-" gorm:"type:jsonb"`
	Processed    bool           `json:"processed" gorm:"default:false"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
	StartedAt    time.Time      `json:"started_at" gorm:"not null;default:now()"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewMeetingSession creates a session in the recording state
func NewMeetingSession(id uuid.UUID, jobID string, clientID uuid.UUID, subClientID *string, title, meetingURL string, attendees []string) *MeetingSession {
	now := time.Now()
	return &MeetingSession{
		ID:          id,
		JobID:       &jobID,
		Status:      SessionStatusRecording,
		ClientID:    clientID,
		SubClientID: subClientID,
		Title:       title,
		Attendees:   attendees,
		MeetingURL:  meetingURL,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsTerminal reports whether the session left the recording state
func (s *MeetingSession) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusFailed
}

// IsActive reports whether the session is still being monitored
func (s *MeetingSession) IsActive() bool {
	return s.Status == SessionStatusRecording
}

// MarkCompleted marks the session as completed
func (s *MeetingSession) MarkCompleted() {
	s.Status = SessionStatusCompleted
	now := time.Now()
	s.CompletedAt = &now
	s.UpdatedAt = now
}

// MarkFailed marks the session as failed with a cause
func (s *MeetingSession) MarkFailed(cause FailureCause) {
	s.Status = SessionStatusFailed
	s.FailureCause = cause
	now := time.Now()
	s.CompletedAt = &now
	s.UpdatedAt = now
}

// SetBotData keeps a snapshot of the provider's raw job payload
func (s *MeetingSession) SetBotData(raw map[string]interface{}) {
	data, err := json.Marshal(raw)
	if err != nil {
		return
	}
	s.BotData = datatypes.JSON(data)
}

// MarkProcessed records that post-meeting processing ran
func (s *MeetingSession) MarkProcessed() {
	s.Processed = true
	now := time.Now()
	s.ProcessedAt = &now
	s.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (MeetingSession) TableName() string {
	return "meetings"
}
