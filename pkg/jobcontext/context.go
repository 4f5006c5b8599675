package jobcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keySessionID   KeyContext = "session_id"
	keyTaskType    KeyContext = "task_type"
	keyPollAttempt KeyContext = "poll_attempt"
	keyTaskStarted KeyContext = "task_started"
)

// TaskMetadata holds metadata for a monitor task execution
type TaskMetadata struct {
	SessionID   uuid.UUID
	TaskType    string
	PollAttempt int
	StartTime   time.Time
}

// TaskBegin attaches monitor task metadata to a context
func TaskBegin(parentCtx context.Context, sessionID uuid.UUID, taskType string) context.Context {
	ctx := context.WithValue(parentCtx, keySessionID, sessionID)
	ctx = context.WithValue(ctx, keyTaskType, taskType)
	ctx = context.WithValue(ctx, keyPollAttempt, 0)
	ctx = context.WithValue(ctx, keyTaskStarted, time.Now())
	return ctx
}

// GetSessionID extracts the session ID from context
func GetSessionID(ctx context.Context) (uuid.UUID, bool) {
	sessionID, ok := ctx.Value(keySessionID).(uuid.UUID)
	return sessionID, ok
}

// GetTaskType extracts the task type from context
func GetTaskType(ctx context.Context) (string, bool) {
	taskType, ok := ctx.Value(keyTaskType).(string)
	return taskType, ok
}

// GetPollAttempt extracts the current poll attempt from context
func GetPollAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyPollAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetPollAttempt updates the poll attempt in context
func SetPollAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyPollAttempt, attempt)
}

// GetTaskStartTime extracts the task start time from context
func GetTaskStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyTaskStarted).(time.Time)
	return startTime, ok
}

// GetTaskMetadata extracts all task metadata from context
func GetTaskMetadata(ctx context.Context) *TaskMetadata {
	sessionID, _ := GetSessionID(ctx)
	taskType, _ := GetTaskType(ctx)
	startTime, _ := GetTaskStartTime(ctx)

	return &TaskMetadata{
		SessionID:   sessionID,
		TaskType:    taskType,
		PollAttempt: GetPollAttempt(ctx),
		StartTime:   startTime,
	}
}

// IsRetryableError checks if an error should be treated as transient.
// Transient errors include: network errors, timeouts, rate limits, 5xx responses.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Context errors (timeout, cancelled)
	if strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "context canceled") {
		return true
	}

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}

// CalculateBackoff calculates exponential backoff duration
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	// 2^attempt * baseDelay, max 60 seconds
	backoff := time.Duration(1<<uint(attempt)) * baseDelay

	maxBackoff := 60 * time.Second
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}
