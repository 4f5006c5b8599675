package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTaskBegin_CarriesMetadata(t *testing.T) {
	sessionID := uuid.New()
	ctx := TaskBegin(context.Background(), sessionID, "monitor")

	meta := GetTaskMetadata(ctx)
	if meta.SessionID != sessionID {
		t.Fatalf("expected session %s, got %s", sessionID, meta.SessionID)
	}
	if meta.TaskType != "monitor" {
		t.Fatalf("expected task type monitor, got %s", meta.TaskType)
	}
	if meta.PollAttempt != 0 {
		t.Fatalf("expected initial attempt 0, got %d", meta.PollAttempt)
	}
	if meta.StartTime.IsZero() {
		t.Fatal("start time must be set")
	}
}

func TestSetPollAttempt_StampsOnlyTheDerivedContext(t *testing.T) {
	base := TaskBegin(context.Background(), uuid.New(), "monitor")

	// Callers keep the counter local and stamp once at handoff; the base
	// context must stay at its initial value
	handoff := SetPollAttempt(base, 17)

	if got := GetPollAttempt(handoff); got != 17 {
		t.Fatalf("handed-off context carries attempt %d, want 17", got)
	}
	if got := GetPollAttempt(base); got != 0 {
		t.Fatalf("base context mutated to attempt %d, want 0", got)
	}
	if meta := GetTaskMetadata(handoff); meta.PollAttempt != 17 {
		t.Fatalf("metadata reports attempt %d, want 17", meta.PollAttempt)
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
	}{
		{nil, false},
		{errors.New("connection refused"), true},
		{errors.New("i/o timeout"), true},
		{errors.New("too many requests"), true},
		{errors.New("provider returned status 503"), true},
		{errors.New("job has been deleted"), false},
		{errors.New("invalid api key"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.retryable {
			t.Errorf("IsRetryableError(%v) = %v, want %v", tc.err, got, tc.retryable)
		}
	}
}

func TestCalculateBackoff_CapsAtSixtySeconds(t *testing.T) {
	if got := CalculateBackoff(1, time.Second); got != 2*time.Second {
		t.Fatalf("attempt 1 backoff = %s, want 2s", got)
	}
	if got := CalculateBackoff(30, time.Second); got != 60*time.Second {
		t.Fatalf("large attempt backoff = %s, want the 60s cap", got)
	}
	if got := CalculateBackoff(-1, time.Second); got != time.Second {
		t.Fatalf("negative attempt backoff = %s, want base delay", got)
	}
}
