package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	knowledgedto "github.com/lemur-ai/meeting-brain/internal/adapter/dto/knowledge"
	"github.com/lemur-ai/meeting-brain/internal/usecase/knowledge"
)

// Knowledge handles knowledge base endpoints
type Knowledge struct {
	svc    *knowledge.Service
	logger *zap.Logger
}

// NewKnowledgeHandler creates a knowledge handler
func NewKnowledgeHandler(svc *knowledge.Service, logger *zap.Logger) *Knowledge {
	return &Knowledge{svc: svc, logger: logger}
}

func parseScope(clientID string, subClientID *string) (knowledge.Scope, error) {
	id, err := uuid.Parse(clientID)
	if err != nil {
		return knowledge.Scope{}, apperrors.ErrInvalidArgument("client_id must be a UUID")
	}
	return knowledge.Scope{ClientID: id, SubClientID: subClientID}, nil
}

// Ingest handles POST /v1/knowledge/ingest
func (h *Knowledge) Ingest(c echo.Context) error {
	var req knowledgedto.IngestRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	scope, err := parseScope(req.ClientID, req.SubClientID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	fileID := req.FileID
	if fileID == "" {
		fileID = uuid.NewString()
	}

	chunks, err := h.svc.Ingest(c.Request().Context(), knowledge.IngestParams{
		Scope:    scope,
		FileID:   fileID,
		Filename: req.Filename,
		Text:     req.Text,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, knowledgedto.IngestResponse{
		FileID: fileID,
		Chunks: chunks,
	})
}

// Search handles POST /v1/knowledge/search
func (h *Knowledge) Search(c echo.Context) error {
	var req knowledgedto.SearchRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	scope, err := parseScope(req.ClientID, req.SubClientID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	results, err := h.svc.Query(c.Request().Context(), knowledge.QueryParams{
		Scope: scope,
		Query: req.Query,
		TopK:  req.TopK,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, results)
}

// Stats handles GET /v1/knowledge/stats
func (h *Knowledge) Stats(c echo.Context) error {
	var subClientID *string
	if sub := c.QueryParam("sub_client_id"); sub != "" {
		subClientID = &sub
	}

	scope, err := parseScope(c.QueryParam("client_id"), subClientID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	stats, err := h.svc.Stats(c.Request().Context(), scope)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, stats)
}

// DeleteFile handles DELETE /v1/knowledge/files/:id
func (h *Knowledge) DeleteFile(c echo.Context) error {
	var subClientID *string
	if sub := c.QueryParam("sub_client_id"); sub != "" {
		subClientID = &sub
	}

	scope, err := parseScope(c.QueryParam("client_id"), subClientID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	fileID := c.Param("id")
	if fileID == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("file id is required"))
	}

	if err := h.svc.DeleteFile(c.Request().Context(), scope, fileID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{
		"file_id": fileID,
		"status":  "deleted",
	})
}
