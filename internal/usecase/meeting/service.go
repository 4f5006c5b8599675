package meeting

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	"github.com/lemur-ai/meeting-brain/internal/domain/repositories"
	"github.com/lemur-ai/meeting-brain/internal/infrastructure/external/recall"
	"github.com/lemur-ai/meeting-brain/internal/usecase/content"
	"github.com/lemur-ai/meeting-brain/internal/usecase/knowledge"
	"github.com/lemur-ai/meeting-brain/pkg/config"
)

// Generator produces one artifact from a prompt and scoped context
type Generator interface {
	Generate(ctx context.Context, params content.GenerateParams) (*content.GenerateResult, error)
}

// Retriever searches the knowledge base
type Retriever interface {
	Query(ctx context.Context, params knowledge.QueryParams) ([]knowledge.SearchResult, error)
}

// TranscriptArchiver stores transcript copies in object storage
type TranscriptArchiver interface {
	ArchiveTranscript(ctx context.Context, meetingID string, data []byte) (string, error)
}

// StartParams describes a recording request
type StartParams struct {
	MeetingID   uuid.UUID // zero value means generate one
	MeetingURL  string
	Title       string
	ClientID    uuid.UUID
	SubClientID *string
	Attendees   []string
}

// StartResult reports a dispatched recording
type StartResult struct {
	MeetingID uuid.UUID `json:"meeting_id"`
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
}

// Results holds the latest artifact of each meeting kind; absent kinds are nil
type Results struct {
	Summary       *entities.Output `json:"summary,omitempty"`
	ActionItems   *entities.Output `json:"action_items,omitempty"`
	FollowUpEmail *entities.Output `json:"follow_up_email,omitempty"`
}

// Service orchestrates meeting sessions: dispatch, monitoring, processing
type Service struct {
	registry   repositories.SessionRegistry
	meetings   repositories.MeetingRepository
	outputs    repositories.OutputRepository
	jobs       recall.Client
	retriever  Retriever
	generator  Generator
	archiver   TranscriptArchiver // nil when object storage is disabled
	cfg        *config.Config
	logger     *zap.Logger
	httpClient *http.Client

	// downloadPolicy produces the retry policy for transcript downloads
	downloadPolicy func() backoff.BackOff

	// starting holds meeting IDs reserved by an in-flight Start call
	startMu  sync.Mutex
	starting map[uuid.UUID]struct{}

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewService constructs a meeting service
func NewService(
	registry repositories.SessionRegistry,
	meetings repositories.MeetingRepository,
	outputs repositories.OutputRepository,
	jobs recall.Client,
	retriever Retriever,
	generator Generator,
	archiver TranscriptArchiver,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		registry:       registry,
		meetings:       meetings,
		outputs:        outputs,
		jobs:           jobs,
		retriever:      retriever,
		generator:      generator,
		archiver:       archiver,
		cfg:            cfg,
		logger:         logger,
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		downloadPolicy: defaultDownloadPolicy,
		starting:       make(map[uuid.UUID]struct{}),
		stopChan:       make(chan struct{}),
	}
}

// Start dispatches a recording bot and begins monitoring the session.
// Job creation failure is fatal: nothing is registered.
func (s *Service) Start(ctx context.Context, params StartParams) (*StartResult, error) {
	meetingID := params.MeetingID
	if meetingID == uuid.Nil {
		meetingID = uuid.New()
	}

	// Reserve the meeting ID so a concurrent Start cannot dispatch a
	// second bot between the registry check and the registration below
	s.startMu.Lock()
	if _, inFlight := s.starting[meetingID]; inFlight {
		s.startMu.Unlock()
		return nil, apperrors.ErrSessionAlreadyActive(meetingID.String())
	}
	if existing, err := s.registry.Get(ctx, meetingID); err == nil && existing != nil && existing.IsActive() {
		s.startMu.Unlock()
		return nil, apperrors.ErrSessionAlreadyActive(meetingID.String())
	}
	s.starting[meetingID] = struct{}{}
	s.startMu.Unlock()

	defer func() {
		s.startMu.Lock()
		delete(s.starting, meetingID)
		s.startMu.Unlock()
	}()

	jobID, err := s.jobs.CreateJob(ctx, params.MeetingURL, s.cfg.Recall.BotName)
	if err != nil {
		return nil, apperrors.ErrJobCreationFailed(err)
	}

	session := entities.NewMeetingSession(meetingID, jobID, params.ClientID, params.SubClientID, params.Title, params.MeetingURL, params.Attendees)

	if err := s.registry.Put(ctx, session); err != nil {
		// Unregistered sessions would leak a live bot
		if _, derr := s.jobs.DeleteJob(ctx, jobID); derr != nil {
			s.logger.Error("❌ Failed to clean up job after registration failure",
				zap.String("job_id", jobID), zap.Error(derr))
		}
		return nil, apperrors.ErrInternal(err)
	}

	// Durable row is best-effort; the registry stays authoritative
	if err := s.meetings.Create(ctx, session); err != nil {
		s.logger.Warn("⚠️ Meeting row not persisted",
			zap.String("meeting_id", meetingID.String()), zap.Error(err))
	}

	s.wg.Add(1)
	go s.monitor(meetingID, jobID)

	s.logger.Info("🎬 Recording started",
		zap.String("meeting_id", meetingID.String()),
		zap.String("job_id", jobID),
		zap.String("title", params.Title))

	return &StartResult{
		MeetingID: meetingID,
		JobID:     jobID,
		Status:    string(entities.SessionStatusRecording),
	}, nil
}

// GetStatus returns the current session snapshot
func (s *Service) GetStatus(ctx context.Context, meetingID uuid.UUID) (*entities.MeetingSession, error) {
	session, err := s.registry.Get(ctx, meetingID)
	if err == nil && session != nil {
		return session, nil
	}

	// Sessions from before a restart live only in the database
	session, dbErr := s.meetings.FindByID(ctx, meetingID)
	if dbErr != nil || session == nil {
		return nil, apperrors.ErrSessionNotFound(meetingID.String())
	}
	return session, nil
}

// ListActive returns every session still recording
func (s *Service) ListActive(ctx context.Context) ([]*entities.MeetingSession, error) {
	sessions, err := s.registry.List(ctx)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	active := make([]*entities.MeetingSession, 0, len(sessions))
	for _, session := range sessions {
		if session.IsActive() {
			active = append(active, session)
		}
	}
	return active, nil
}

// GetResults returns the latest artifact of each kind for a meeting
func (s *Service) GetResults(ctx context.Context, meetingID uuid.UUID) (*Results, error) {
	if _, err := s.GetStatus(ctx, meetingID); err != nil {
		return nil, err
	}

	latest, err := s.outputs.LatestByMeeting(ctx, meetingID.String())
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("latest outputs", err)
	}

	return &Results{
		Summary:       latest[entities.OutputTypeSummary],
		ActionItems:   latest[entities.OutputTypeActionItems],
		FollowUpEmail: latest[entities.OutputTypeFollowUp],
	}, nil
}

// Reprocess re-runs post-meeting processing for a completed session.
// Outputs are append-only; earlier rows are never touched.
func (s *Service) Reprocess(ctx context.Context, meetingID uuid.UUID) error {
	session, err := s.GetStatus(ctx, meetingID)
	if err != nil {
		return err
	}
	if session.Status != entities.SessionStatusCompleted {
		return apperrors.ErrSessionNotCompleted(meetingID.String(), string(session.Status))
	}
	return s.process(ctx, session)
}

// CancelRecording asks the provider to remove the bot from the call
func (s *Service) CancelRecording(ctx context.Context, meetingID uuid.UUID) (*recall.DeleteResult, error) {
	session, err := s.GetStatus(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if session.JobID == nil {
		return nil, apperrors.ErrJobNotFound("")
	}

	result, err := s.jobs.DeleteJob(ctx, *session.JobID)
	if err != nil {
		return nil, apperrors.ErrJobDeletionFailed(*session.JobID, err)
	}

	// A bot refusing deletion is still live; keep tracking it
	if result.Status != recall.StatusActiveCannotDelete {
		if derr := s.registry.Delete(ctx, meetingID); derr != nil {
			s.logger.Warn("⚠️ Session not removed from registry after cancel",
				zap.String("meeting_id", meetingID.String()), zap.Error(derr))
		}
	}
	return result, nil
}

// Stop shuts down every monitor goroutine and waits for them to exit
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.logger.Info("🛑 Meeting monitors stopped")
}

// process runs the post-meeting pipeline. A failed step aborts the pipeline
// but never fails the session; generation failures are per-kind.
func (s *Service) process(ctx context.Context, session *entities.MeetingSession) error {
	meetingID := session.ID.String()
	if session.JobID == nil {
		return apperrors.ErrJobNotFound("")
	}
	jobID := *session.JobID

	urls, err := s.jobs.FetchArtifactURLs(ctx, jobID)
	if err != nil {
		s.logger.Error("❌ Artifact URL fetch failed",
			zap.String("meeting_id", meetingID), zap.Error(err))
		return apperrors.ErrExternalAPIFailed("artifact urls", err)
	}

	transcript := s.acquireTranscript(ctx, meetingID, jobID, urls.TranscriptURL)
	if transcript == "" {
		s.logger.Error("❌ No transcript available",
			zap.String("meeting_id", meetingID))
		return apperrors.ErrTranscriptUnavailable(meetingID)
	}

	s.logger.Info("📜 Transcript acquired",
		zap.String("meeting_id", meetingID),
		zap.Int("length", len(transcript)))

	s.archiveTranscript(ctx, meetingID, transcript)

	if data, err := s.jobs.FetchRawJobData(ctx, jobID, false); err == nil && data != nil {
		session.SetBotData(data.Raw)
	}

	scope := knowledge.Scope{ClientID: session.ClientID, SubClientID: session.SubClientID}
	clientContext := s.clientContext(ctx, scope, session.Title)

	fullContext := buildMeetingContext(session, clientContext, transcript)

	s.generateArtifacts(ctx, session, scope, fullContext)

	session.MarkProcessed()
	if err := s.registry.Put(ctx, session); err != nil {
		s.logger.Warn("⚠️ Registry update failed after processing",
			zap.String("meeting_id", meetingID), zap.Error(err))
	}
	if err := s.meetings.Update(ctx, session); err != nil {
		s.logger.Warn("⚠️ Meeting row update failed after processing",
			zap.String("meeting_id", meetingID), zap.Error(err))
	}

	s.logger.Info("✅ Meeting fully processed",
		zap.String("meeting_id", meetingID))
	return nil
}

// acquireTranscript tries the download URL first, then scans the raw job
// payload for embedded transcript text
func (s *Service) acquireTranscript(ctx context.Context, meetingID, jobID, transcriptURL string) string {
	if transcriptURL != "" {
		text, err := s.downloadTranscript(ctx, transcriptURL)
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			s.logger.Warn("⚠️ Transcript download failed, scanning job data",
				zap.String("meeting_id", meetingID), zap.Error(err))
		}
	}

	data, err := s.jobs.FetchRawJobData(ctx, jobID, false)
	if err != nil {
		s.logger.Warn("⚠️ Raw job data fetch failed",
			zap.String("meeting_id", meetingID), zap.Error(err))
		return ""
	}
	return extractTranscriptFromJobData(data)
}

// archiveTranscript stores a copy in object storage, best-effort
func (s *Service) archiveTranscript(ctx context.Context, meetingID, transcript string) {
	if s.archiver == nil {
		return
	}
	location, err := s.archiver.ArchiveTranscript(ctx, meetingID, []byte(transcript))
	if err != nil {
		s.logger.Warn("⚠️ Transcript archive failed",
			zap.String("meeting_id", meetingID), zap.Error(err))
		return
	}
	s.logger.Info("💾 Transcript archived",
		zap.String("meeting_id", meetingID),
		zap.String("location", location))
}

// clientContext retrieves background snippets for the meeting's client
func (s *Service) clientContext(ctx context.Context, scope knowledge.Scope, title string) string {
	query := fmt.Sprintf("meeting %s project context background", title)

	results, err := s.retriever.Query(ctx, knowledge.QueryParams{
		Scope: scope,
		Query: query,
		TopK:  s.cfg.Knowledge.TopK,
	})
	if err != nil {
		s.logger.Warn("⚠️ Client context retrieval failed", zap.Error(err))
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	budget := s.cfg.Knowledge.SnippetBudget
	var parts []string
	for _, result := range results {
		text := result.Text
		if budget > 0 && len(text) > budget {
			text = text[:budget] + "..."
		}
		parts = append(parts, "Document: "+result.Filename, "Content: "+text, "---")
	}
	return strings.Join(parts, "\n")
}

// buildMeetingContext assembles the shared prompt context for all kinds
func buildMeetingContext(session *entities.MeetingSession, clientContext, transcript string) string {
	return fmt.Sprintf(`Meeting: %s
Attendees: %s

Client Context:
%s

Meeting Transcript:
%s`, session.Title, strings.Join(session.Attendees, ", "), clientContext, transcript)
}

// generateArtifacts produces the three meeting artifacts independently and
// persists each success. One kind failing never blocks the others.
func (s *Service) generateArtifacts(ctx context.Context, session *entities.MeetingSession, scope knowledge.Scope, fullContext string) {
	meetingID := session.ID.String()

	specs := []struct {
		kind      content.Kind
		prompt    string
		title     string
		recipient string
	}{
		{
			kind:   content.KindSummary,
			prompt: "Create a comprehensive meeting summary based on this transcript and client context: " + fullContext,
			title:  "Meeting Summary - " + session.Title,
		},
		{
			kind:   content.KindActionItems,
			prompt: "Extract and create detailed action items from this meeting, considering the client context: " + fullContext,
			title:  "Action Items - " + session.Title,
		},
		{
			kind:      content.KindFollowUp,
			prompt:    "Create a professional follow-up email for meeting attendees summarizing key points and next steps: " + fullContext,
			title:     "Follow-up Email - " + session.Title,
			recipient: firstAttendee(session.Attendees),
		},
	}

	for _, spec := range specs {
		result, err := s.generator.Generate(ctx, content.GenerateParams{
			Kind:          spec.kind,
			Prompt:        spec.prompt,
			Scope:         scope,
			RecipientName: spec.recipient,
		})
		if err != nil {
			s.logger.Error("❌ Artifact generation failed",
				zap.String("meeting_id", meetingID),
				zap.String("kind", string(spec.kind)),
				zap.Error(err))
			continue
		}

		output := entities.NewOutput(
			spec.kind.OutputType(),
			spec.title,
			result.Content,
			spec.prompt,
			result.ContextUsed,
			session.ClientID,
			session.SubClientID,
			&meetingID,
			result.TokensUsed,
		)

		if err := s.outputs.Store(ctx, output); err != nil {
			s.logger.Error("❌ Artifact persistence rejected",
				zap.String("meeting_id", meetingID),
				zap.String("kind", string(spec.kind)),
				zap.Error(err))
			continue
		}

		s.logger.Info("📝 Artifact stored",
			zap.String("meeting_id", meetingID),
			zap.String("kind", string(spec.kind)),
			zap.Int("tokens_used", result.TokensUsed))
	}
}

func firstAttendee(attendees []string) string {
	if len(attendees) > 0 {
		return attendees[0]
	}
	return ""
}
