package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	contentdto "github.com/lemur-ai/meeting-brain/internal/adapter/dto/content"
	"github.com/lemur-ai/meeting-brain/internal/usecase/content"
)

// Content handles direct generation endpoints
type Content struct {
	svc    *content.Service
	logger *zap.Logger
}

// NewContentHandler creates a content handler
func NewContentHandler(svc *content.Service, logger *zap.Logger) *Content {
	return &Content{svc: svc, logger: logger}
}

// Generate handles POST /v1/ai/generate
func (h *Content) Generate(c echo.Context) error {
	var req contentdto.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	kind, err := content.ParseKind(req.Kind)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	scope, err := parseScope(req.ClientID, req.SubClientID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.svc.Generate(c.Request().Context(), content.GenerateParams{
		Kind:                   kind,
		Prompt:                 req.Prompt,
		Scope:                  scope,
		AdditionalInstructions: req.AdditionalInstructions,
		RecipientName:          req.RecipientName,
		SenderName:             req.SenderName,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, result)
}
