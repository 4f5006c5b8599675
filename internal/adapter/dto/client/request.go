package client

// CreateClientRequest is the body for POST /v1/clients
type CreateClientRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
}

// CreateSubClientRequest is the body for POST /v1/clients/:id/subclients
type CreateSubClientRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
}
