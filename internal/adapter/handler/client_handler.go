package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	clientdto "github.com/lemur-ai/meeting-brain/internal/adapter/dto/client"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	"github.com/lemur-ai/meeting-brain/internal/domain/repositories"
)

// Client handles client organization endpoints
type Client struct {
	repo   repositories.ClientRepository
	logger *zap.Logger
}

// NewClientHandler creates a client handler
func NewClientHandler(repo repositories.ClientRepository, logger *zap.Logger) *Client {
	return &Client{repo: repo, logger: logger}
}

// Create handles POST /v1/clients
func (h *Client) Create(c echo.Context) error {
	var req clientdto.CreateClientRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	client := &entities.Client{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.repo.Create(c.Request().Context(), client); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("create client", err))
	}

	h.logger.Info("🏢 Client created",
		zap.String("client_id", client.ID.String()),
		zap.String("name", client.Name))
	return HandleSuccess(h.logger, c, client)
}

// Get handles GET /v1/clients/:id
func (h *Client) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("client id must be a UUID"))
	}

	client, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrNotFound("client"))
	}
	return HandleSuccess(h.logger, c, client)
}

// CreateSubClient handles POST /v1/clients/:id/subclients
func (h *Client) CreateSubClient(c echo.Context) error {
	parentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("client id must be a UUID"))
	}

	var req clientdto.CreateSubClientRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	parent, err := h.repo.FindByID(c.Request().Context(), parentID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrNotFound("client"))
	}
	if parent.IsSubClient() {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("sub-clients cannot have their own sub-clients"))
	}

	sub := &entities.Client{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		ParentID:    &parentID,
	}
	if err := h.repo.Create(c.Request().Context(), sub); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("create sub-client", err))
	}

	h.logger.Info("🏢 Sub-client created",
		zap.String("client_id", parentID.String()),
		zap.String("sub_client_id", sub.ID.String()),
		zap.String("name", sub.Name))
	return HandleSuccess(h.logger, c, sub)
}

// ListSubClients handles GET /v1/clients/:id/subclients
func (h *Client) ListSubClients(c echo.Context) error {
	parentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("client id must be a UUID"))
	}

	subs, err := h.repo.ListSubClients(c.Request().Context(), parentID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("list sub-clients", err))
	}
	return HandleSuccess(h.logger, c, subs)
}
