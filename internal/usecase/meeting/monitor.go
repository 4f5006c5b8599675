package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	"github.com/lemur-ai/meeting-brain/internal/infrastructure/external/recall"
	"github.com/lemur-ai/meeting-brain/pkg/jobcontext"
)

// monitor polls one session's job until it reaches a terminal state. Each
// session gets its own goroutine; no lock is shared across sessions.
func (s *Service) monitor(meetingID uuid.UUID, jobID string) {
	defer s.wg.Done()

	ctx := jobcontext.TaskBegin(context.Background(), meetingID, "monitor")

	ticker := time.NewTicker(s.cfg.Monitor.PollInterval)
	defer ticker.Stop()

	deadline := time.Now().Add(s.cfg.Monitor.MaxDuration)
	transientFailures := 0

	s.logger.Info("🔍 Monitoring meeting",
		zap.String("meeting_id", meetingID.String()),
		zap.String("job_id", jobID))

	for attempt := 0; ; attempt++ {
		select {
		case <-s.stopChan:
			s.logger.Info("🛑 Monitor stopping on shutdown",
				zap.String("meeting_id", meetingID.String()))
			return

		case <-ticker.C:
			if time.Now().After(deadline) {
				s.logger.Error("⏰ Meeting exceeded maximum duration",
					zap.String("meeting_id", meetingID.String()),
					zap.Duration("max_duration", s.cfg.Monitor.MaxDuration))
				s.failSession(jobcontext.SetPollAttempt(ctx, attempt), meetingID, entities.FailureCauseTimeout)
				return
			}

			result, err := s.jobs.PollStatus(ctx, jobID)
			if err != nil {
				if !jobcontext.IsRetryableError(err) {
					s.logger.Error("❌ Status poll failed permanently",
						zap.String("meeting_id", meetingID.String()),
						zap.Error(err))
					s.failSession(jobcontext.SetPollAttempt(ctx, attempt), meetingID, entities.FailureCauseProviderUnreachable)
					return
				}

				transientFailures++
				s.logger.Warn("⚠️ Status poll failed",
					zap.String("meeting_id", meetingID.String()),
					zap.Int("consecutive_failures", transientFailures),
					zap.Error(err))

				if transientFailures >= s.cfg.Monitor.MaxTransientFailures {
					s.logger.Error("❌ Provider unreachable, giving up",
						zap.String("meeting_id", meetingID.String()))
					s.failSession(jobcontext.SetPollAttempt(ctx, attempt), meetingID, entities.FailureCauseProviderUnreachable)
					return
				}
				ticker.Reset(jobcontext.CalculateBackoff(transientFailures, s.cfg.Monitor.PollInterval))
				continue
			}
			if transientFailures > 0 {
				ticker.Reset(s.cfg.Monitor.PollInterval)
			}
			transientFailures = 0

			s.logger.Info("📊 Meeting status",
				zap.String("meeting_id", meetingID.String()),
				zap.String("status", result.Status))

			switch {
			case recall.IsDone(result.Status):
				s.completeSession(jobcontext.SetPollAttempt(ctx, attempt), meetingID)
				return

			case recall.IsFailed(result.Status):
				s.logger.Error("❌ Recording failed",
					zap.String("meeting_id", meetingID.String()),
					zap.String("status", result.Status))
				s.failSession(jobcontext.SetPollAttempt(ctx, attempt), meetingID, entities.FailureCauseRecordingFailed)
				return
			}
		}
	}
}

// completeSession marks the session completed and triggers processing once
func (s *Service) completeSession(ctx context.Context, meetingID uuid.UUID) {
	session, err := s.registry.Get(ctx, meetingID)
	if err != nil || session == nil {
		s.logger.Error("❌ Completed session missing from registry",
			zap.String("meeting_id", meetingID.String()), zap.Error(err))
		return
	}

	session.MarkCompleted()
	s.saveSession(ctx, session)

	meta := jobcontext.GetTaskMetadata(ctx)
	s.logger.Info("✅ Meeting completed, starting processing",
		zap.String("meeting_id", meetingID.String()),
		zap.Int("polls", meta.PollAttempt+1),
		zap.Duration("monitored_for", time.Since(meta.StartTime)))

	if err := s.process(ctx, session); err != nil {
		// The session stays completed; processing can be re-run
		s.logger.Error("❌ Post-meeting processing failed",
			zap.String("meeting_id", meetingID.String()), zap.Error(err))
	}
}

// failSession marks the session failed with a cause. Failed sessions are
// never processed.
func (s *Service) failSession(ctx context.Context, meetingID uuid.UUID, cause entities.FailureCause) {
	session, err := s.registry.Get(ctx, meetingID)
	if err != nil || session == nil {
		s.logger.Error("❌ Failed session missing from registry",
			zap.String("meeting_id", meetingID.String()), zap.Error(err))
		return
	}

	session.MarkFailed(cause)
	s.saveSession(ctx, session)
}

// saveSession writes the session to the registry and, best-effort, the
// database
func (s *Service) saveSession(ctx context.Context, session *entities.MeetingSession) {
	if err := s.registry.Put(ctx, session); err != nil {
		s.logger.Error("❌ Registry update failed",
			zap.String("meeting_id", session.ID.String()), zap.Error(err))
	}
	if err := s.meetings.Update(ctx, session); err != nil {
		s.logger.Warn("⚠️ Meeting row update failed",
			zap.String("meeting_id", session.ID.String()), zap.Error(err))
	}
}
