package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	meetingdto "github.com/lemur-ai/meeting-brain/internal/adapter/dto/meeting"
	"github.com/lemur-ai/meeting-brain/internal/usecase/meeting"
)

// Meeting handles meeting session endpoints
type Meeting struct {
	svc    *meeting.Service
	logger *zap.Logger
}

// NewMeetingHandler creates a meeting handler
func NewMeetingHandler(svc *meeting.Service, logger *zap.Logger) *Meeting {
	return &Meeting{svc: svc, logger: logger}
}

// StartRecording handles POST /v1/meetings/record
func (h *Meeting) StartRecording(c echo.Context) error {
	var req meetingdto.StartRecordingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("client_id must be a UUID"))
	}

	params := meeting.StartParams{
		MeetingURL:  req.MeetingURL,
		Title:       req.Title,
		ClientID:    clientID,
		SubClientID: req.SubClientID,
		Attendees:   req.Attendees,
	}
	if req.MeetingID != "" {
		meetingID, err := uuid.Parse(req.MeetingID)
		if err != nil {
			return HandleError(h.logger, c, apperrors.ErrInvalidArgument("meeting_id must be a UUID"))
		}
		params.MeetingID = meetingID
	}

	result, err := h.svc.Start(c.Request().Context(), params)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, result)
}

// GetStatus handles GET /v1/meetings/:id/status
func (h *Meeting) GetStatus(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("id must be a UUID"))
	}

	session, err := h.svc.GetStatus(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, session)
}

// GetResults handles GET /v1/meetings/:id/results
func (h *Meeting) GetResults(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("id must be a UUID"))
	}

	results, err := h.svc.GetResults(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, results)
}

// Reprocess handles POST /v1/meetings/:id/process
func (h *Meeting) Reprocess(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("id must be a UUID"))
	}

	if err := h.svc.Reprocess(c.Request().Context(), meetingID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{
		"meeting_id": meetingID.String(),
		"status":     "processed",
	})
}

// CancelRecording handles DELETE /v1/meetings/:id/bot
func (h *Meeting) CancelRecording(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("id must be a UUID"))
	}

	result, err := h.svc.CancelRecording(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, result)
}

// ListActive handles GET /v1/meetings/active
func (h *Meeting) ListActive(c echo.Context) error {
	sessions, err := h.svc.ListActive(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, sessions)
}
