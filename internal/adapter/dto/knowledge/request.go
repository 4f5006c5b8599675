package knowledge

// IngestRequest is the body for POST /v1/knowledge/ingest
type IngestRequest struct {
	ClientID    string  `json:"client_id" validate:"required,uuid"`
	SubClientID *string `json:"sub_client_id,omitempty"`
	FileID      string  `json:"file_id,omitempty"`
	Filename    string  `json:"filename,omitempty"`
	Text        string  `json:"text" validate:"required"`
}

// SearchRequest is the body for POST /v1/knowledge/search
type SearchRequest struct {
	ClientID    string  `json:"client_id" validate:"required,uuid"`
	SubClientID *string `json:"sub_client_id,omitempty"`
	Query       string  `json:"query" validate:"required"`
	TopK        int     `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
}

// IngestResponse reports how many chunks were stored
type IngestResponse struct {
	FileID string `json:"file_id"`
	Chunks int    `json:"chunks"`
}
