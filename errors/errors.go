package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the custom error type for the application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// Recording Job Errors

// ErrJobCreationFailed is returned when the recording provider rejects a
// job-creation request. Fatal for the start call; no session is registered.
func ErrJobCreationFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_JOB_CREATION_FAILED,
		Message:  "Failed to create recording job",
	}
}

func ErrJobNotFound(jobID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_JOB_NOT_FOUND,
		Message:  "Recording job not found",
	}.WithDetail("job_id", jobID)
}

func ErrJobDeletionFailed(jobID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_JOB_DELETION_FAILED,
		Message:  "Failed to delete recording job",
	}.WithDetail("job_id", jobID)
}

func ErrRecordingFailed(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_RECORDING_FAILED,
		Message:  "Recording job reported a terminal failure",
	}.WithDetail("meeting_id", meetingID)
}

// Meeting Session Errors
func ErrSessionNotFound(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_SESSION_NOT_FOUND,
		Message:  "Meeting session not found",
	}.WithDetail("meeting_id", meetingID)
}

func ErrSessionAlreadyActive(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SESSION_ALREADY_ACTIVE,
		Message:  "Meeting session is already being monitored",
	}.WithDetail("meeting_id", meetingID)
}

func ErrSessionNotCompleted(meetingID, status string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SESSION_NOT_COMPLETED,
		Message:  "Meeting session has not completed recording",
	}.WithDetail("meeting_id", meetingID).
		WithDetail("status", status)
}

// Processing Errors
func ErrTranscriptUnavailable(meetingID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_TRANSCRIPT_UNAVAILABLE,
		Message:  "No transcript could be acquired for the meeting",
	}.WithDetail("meeting_id", meetingID)
}

func ErrArtifactGenerationFailed(kind string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_ARTIFACT_GENERATION_FAILED,
		Message:  fmt.Sprintf("Failed to generate %s", kind),
	}.WithDetail("kind", kind)
}

func ErrPersistenceRejected(kind string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_PERSISTENCE_REJECTED,
		Message:  "Artifact could not be persisted",
	}.WithDetail("kind", kind)
}

// Knowledge Store Errors
func ErrKnowledgeIngestFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_KNOWLEDGE_INGEST_FAILED,
		Message:  "Failed to ingest document into knowledge base",
	}
}

func ErrKnowledgeQueryFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_KNOWLEDGE_QUERY_FAILED,
		Message:  "Knowledge base query failed",
	}
}

func ErrEmbeddingFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_EMBEDDING_FAILED,
		Message:  "Embedding provider call failed",
	}
}

// Content Generation Errors
func ErrUnknownContentKind(kind string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_UNKNOWN_CONTENT_KIND,
		Message:  "Unknown content kind",
	}.WithDetail("kind", kind)
}

func ErrCompletionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_COMPLETION_FAILED,
		Message:  "Completion provider call failed",
	}
}

// Infrastructure Errors
func ErrDBQueryFailed(query string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}.WithDetail("query", query)
}

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

func ErrExternalAPIFailed(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_EXTERNAL_API_FAILED,
		Message:  fmt.Sprintf("External API call failed: %s", service),
	}
}

// HTTPStatusOK represents a successful HTTP response.
func HTTPStatusOK(message string) AppError {
	return AppError{
		HTTPCode: http.StatusOK,
		Code:     ErrorCode_HTTP_OK,
		Message:  message,
	}
}
