package content

// GenerateRequest is the body for POST /v1/ai/generate
type GenerateRequest struct {
	Kind                   string  `json:"kind" validate:"required"`
	Prompt                 string  `json:"prompt" validate:"required"`
	ClientID               string  `json:"client_id" validate:"required,uuid"`
	SubClientID            *string `json:"sub_client_id,omitempty"`
	AdditionalInstructions string  `json:"additional_instructions,omitempty"`
	RecipientName          string  `json:"recipient_name,omitempty"`
	SenderName             string  `json:"sender_name,omitempty"`
}
