package meeting

// StartRecordingRequest is the body for POST /v1/meetings/record
type StartRecordingRequest struct {
	MeetingURL  string   `json:"meeting_url" validate:"required,url"`
	Title       string   `json:"title" validate:"required"`
	ClientID    string   `json:"client_id" validate:"required,uuid"`
	SubClientID *string  `json:"sub_client_id,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
	MeetingID   string   `json:"meeting_id,omitempty" validate:"omitempty,uuid"`
}
