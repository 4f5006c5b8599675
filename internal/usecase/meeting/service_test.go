package meeting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/lemur-ai/meeting-brain/errors"
	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	"github.com/lemur-ai/meeting-brain/internal/infrastructure/external/recall"
	"github.com/lemur-ai/meeting-brain/internal/usecase/content"
	"github.com/lemur-ai/meeting-brain/internal/usecase/knowledge"
	"github.com/lemur-ai/meeting-brain/pkg/config"
)

// memRegistry is an in-memory SessionRegistry for tests
type memRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entities.MeetingSession
}

func newMemRegistry() *memRegistry {
	return &memRegistry{sessions: make(map[uuid.UUID]*entities.MeetingSession)}
}

func (m *memRegistry) Put(_ context.Context, session *entities.MeetingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *memRegistry) Get(_ context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (m *memRegistry) List(_ context.Context) ([]*entities.MeetingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entities.MeetingSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memRegistry) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// fakeMeetings records calls without a database
type fakeMeetings struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entities.MeetingSession
}

func newFakeMeetings() *fakeMeetings {
	return &fakeMeetings{rows: make(map[uuid.UUID]*entities.MeetingSession)}
}

func (f *fakeMeetings) Create(_ context.Context, s *entities.MeetingSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *s
	f.rows[s.ID] = &copied
	return nil
}

func (f *fakeMeetings) Update(_ context.Context, s *entities.MeetingSession) error {
	return f.Create(context.Background(), s)
}

func (f *fakeMeetings) FindByID(_ context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *row
	return &copied, nil
}

func (f *fakeMeetings) ListByClient(_ context.Context, _ uuid.UUID, _ int) ([]*entities.MeetingSession, error) {
	return nil, nil
}

// fakeOutputs stores outputs in memory
type fakeOutputs struct {
	mu     sync.Mutex
	stored []*entities.Output
}

func (f *fakeOutputs) Store(_ context.Context, output *entities.Output) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, output)
	return nil
}

func (f *fakeOutputs) LatestByMeeting(_ context.Context, meetingID string) (map[entities.OutputType]*entities.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := make(map[entities.OutputType]*entities.Output)
	for _, o := range f.stored {
		if o.MeetingID != nil && *o.MeetingID == meetingID {
			latest[o.OutputType] = o
		}
	}
	return latest, nil
}

func (f *fakeOutputs) ListByClient(_ context.Context, _ uuid.UUID, _ int) ([]*entities.Output, error) {
	return nil, nil
}

func (f *fakeOutputs) types() map[entities.OutputType]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[entities.OutputType]int)
	for _, o := range f.stored {
		counts[o.OutputType]++
	}
	return counts
}

// fakeJobs scripts the recording provider
type fakeJobs struct {
	mu            sync.Mutex
	createErr     error
	statuses      []string
	statusIdx     int
	pollErr       error
	pollErrCount  int
	transcriptURL string
	rawData       *recall.JobData
	deleted       []string
	createCalls   int
}

func (f *fakeJobs) CreateJob(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createCalls++
	return "job-1", nil
}

func (f *fakeJobs) PollStatus(_ context.Context, jobID string) (*recall.StatusResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErrCount > 0 {
		f.pollErrCount--
		return nil, f.pollErr
	}
	status := f.statuses[f.statusIdx]
	if f.statusIdx < len(f.statuses)-1 {
		f.statusIdx++
	}
	return &recall.StatusResult{JobID: jobID, Status: status}, nil
}

func (f *fakeJobs) FetchArtifactURLs(_ context.Context, _ string) (*recall.ArtifactURLs, error) {
	return &recall.ArtifactURLs{TranscriptURL: f.transcriptURL}, nil
}

func (f *fakeJobs) FetchRawJobData(_ context.Context, _ string, _ bool) (*recall.JobData, error) {
	if f.rawData == nil {
		return &recall.JobData{Raw: map[string]interface{}{}}, nil
	}
	return f.rawData, nil
}

func (f *fakeJobs) DeleteJob(_ context.Context, jobID string) (*recall.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, jobID)
	return &recall.DeleteResult{JobID: jobID, Status: "deleted"}, nil
}

type stubRetriever struct{}

func (stubRetriever) Query(_ context.Context, _ knowledge.QueryParams) ([]knowledge.SearchResult, error) {
	return []knowledge.SearchResult{{Text: "Prior project notes.", Filename: "notes.txt"}}, nil
}

// stubGenerator succeeds for all kinds except those listed in failKinds
type stubGenerator struct {
	mu        sync.Mutex
	failKinds map[content.Kind]bool
	prompts   []string
}

func (g *stubGenerator) Generate(_ context.Context, params content.GenerateParams) (*content.GenerateResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, params.Prompt)
	if g.failKinds[params.Kind] {
		return nil, errors.New("provider down")
	}
	return &content.GenerateResult{
		Content:    fmt.Sprintf("generated %s", params.Kind),
		TokensUsed: 10,
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Recall: config.RecallConfig{BotName: "Lemur AI"},
		Knowledge: config.KnowledgeConfig{
			ChunkSize: 1000, ChunkOverlap: 200, TopK: 5, SnippetBudget: 500,
		},
		Monitor: config.MonitorConfig{
			PollInterval:         5 * time.Millisecond,
			MaxDuration:          5 * time.Second,
			MaxTransientFailures: 3,
		},
	}
}

type harness struct {
	svc      *Service
	registry *memRegistry
	meetings *fakeMeetings
	outputs  *fakeOutputs
	jobs     *fakeJobs
	gen      *stubGenerator
}

func newHarness(jobs *fakeJobs, cfg *config.Config) *harness {
	if cfg == nil {
		cfg = testConfig()
	}
	h := &harness{
		registry: newMemRegistry(),
		meetings: newFakeMeetings(),
		outputs:  &fakeOutputs{},
		jobs:     jobs,
		gen:      &stubGenerator{},
	}
	h.svc = NewService(h.registry, h.meetings, h.outputs, h.jobs, stubRetriever{}, h.gen, nil, cfg, zap.NewNop())
	return h
}

func startParams() StartParams {
	return StartParams{
		MeetingURL: "https://meet.example.com/abc",
		Title:      "Q3 Planning",
		ClientID:   uuid.New(),
		Attendees:  []string{"alex@example.com", "sam@example.com"},
	}
}

func waitForStatus(t *testing.T, h *harness, id uuid.UUID, status entities.SessionStatus) *entities.MeetingSession {
	t.Helper()
	var session *entities.MeetingSession
	require.Eventually(t, func() bool {
		s, err := h.registry.Get(context.Background(), id)
		if err != nil || s == nil {
			return false
		}
		session = s
		return s.Status == status
	}, 3*time.Second, 5*time.Millisecond)
	return session
}

func TestStart_HappyPathProcessesMeeting(t *testing.T) {
	transcriptSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Alex: we agreed on the Q3 roadmap.")
	}))
	defer transcriptSrv.Close()

	jobs := &fakeJobs{
		statuses:      []string{recall.StatusInCall, recall.StatusDone},
		transcriptURL: transcriptSrv.URL,
	}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)
	assert.Equal(t, "job-1", res.JobID)
	assert.Equal(t, "recording", res.Status)

	session := waitForStatus(t, h, res.MeetingID, entities.SessionStatusCompleted)

	require.Eventually(t, func() bool {
		s, _ := h.registry.Get(context.Background(), res.MeetingID)
		return s != nil && s.Processed
	}, 3*time.Second, 5*time.Millisecond)

	counts := h.outputs.types()
	assert.Equal(t, 1, counts[entities.OutputTypeSummary])
	assert.Equal(t, 1, counts[entities.OutputTypeActionItems])
	assert.Equal(t, 1, counts[entities.OutputTypeFollowUp])

	assert.NotNil(t, session.CompletedAt)

	results, err := h.svc.GetResults(context.Background(), res.MeetingID)
	require.NoError(t, err)
	require.NotNil(t, results.Summary)
	assert.Equal(t, "generated summary", results.Summary.Content)
}

func TestStart_DuplicateActiveRejected(t *testing.T) {
	jobs := &fakeJobs{statuses: []string{recall.StatusInCall}}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	params := startParams()
	params.MeetingID = uuid.New()

	_, err := h.svc.Start(context.Background(), params)
	require.NoError(t, err)

	_, err = h.svc.Start(context.Background(), params)
	require.Error(t, err)
	var appErr apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_SESSION_ALREADY_ACTIVE, appErr.Code)
}

func TestStart_ConcurrentDuplicatesDispatchOneBot(t *testing.T) {
	jobs := &fakeJobs{statuses: []string{recall.StatusInCall}}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	params := startParams()
	params.MeetingID = uuid.New()

	const callers = 8
	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.svc.Start(context.Background(), params); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load())

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	assert.Equal(t, 1, jobs.createCalls, "exactly one bot may be dispatched")
}

func TestStart_JobCreationFailureRegistersNothing(t *testing.T) {
	jobs := &fakeJobs{createErr: errors.New("provider rejected url")}
	h := newHarness(jobs, nil)

	_, err := h.svc.Start(context.Background(), startParams())
	require.Error(t, err)

	sessions, err := h.registry.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions, "no session may exist after a failed start")
}

func TestMonitor_TerminalFailure(t *testing.T) {
	jobs := &fakeJobs{statuses: []string{recall.StatusInCall, recall.StatusFatal}}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	session := waitForStatus(t, h, res.MeetingID, entities.SessionStatusFailed)
	assert.Equal(t, entities.FailureCauseRecordingFailed, session.FailureCause)
	assert.False(t, session.Processed, "failed sessions are never processed")
	assert.Empty(t, h.outputs.types())
}

func TestMonitor_ProviderUnreachable(t *testing.T) {
	jobs := &fakeJobs{
		statuses:     []string{recall.StatusInCall},
		pollErr:      errors.New("connection refused"),
		pollErrCount: 1000,
	}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	session := waitForStatus(t, h, res.MeetingID, entities.SessionStatusFailed)
	assert.Equal(t, entities.FailureCauseProviderUnreachable, session.FailureCause)
}

func TestMonitor_NonRetryablePollErrorFailsFast(t *testing.T) {
	// A single non-transient error must end the session without waiting for
	// the consecutive failure threshold
	jobs := &fakeJobs{
		statuses:     []string{recall.StatusInCall},
		pollErr:      errors.New("job has been deleted"),
		pollErrCount: 1,
	}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	session := waitForStatus(t, h, res.MeetingID, entities.SessionStatusFailed)
	assert.Equal(t, entities.FailureCauseProviderUnreachable, session.FailureCause)
}

func TestMonitor_TransientFailuresResetOnSuccess(t *testing.T) {
	// Two failures, then success: the counter must reset and the meeting
	// must still complete
	jobs := &fakeJobs{
		statuses:     []string{recall.StatusDone},
		pollErr:      errors.New("i/o timeout"),
		pollErrCount: 2,
		rawData: &recall.JobData{Raw: map[string]interface{}{
			"transcript": "embedded transcript text",
		}},
	}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	waitForStatus(t, h, res.MeetingID, entities.SessionStatusCompleted)
}

func TestCancelRecording_DeletesJobAndEvictsSession(t *testing.T) {
	jobs := &fakeJobs{statuses: []string{recall.StatusInCall}}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	result, err := h.svc.CancelRecording(context.Background(), res.MeetingID)
	require.NoError(t, err)
	assert.Equal(t, "deleted", result.Status)
	assert.Equal(t, []string{"job-1"}, jobs.deleted)

	evicted, err := h.registry.Get(context.Background(), res.MeetingID)
	require.NoError(t, err)
	assert.Nil(t, evicted)
}

func TestMonitor_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.Monitor.MaxDuration = 20 * time.Millisecond

	jobs := &fakeJobs{statuses: []string{recall.StatusInCall}}
	h := newHarness(jobs, cfg)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	session := waitForStatus(t, h, res.MeetingID, entities.SessionStatusFailed)
	assert.Equal(t, entities.FailureCauseTimeout, session.FailureCause)
}

func TestProcess_TranscriptFallbackFromJobData(t *testing.T) {
	jobs := &fakeJobs{
		statuses: []string{recall.StatusDone},
		// no transcript URL: the raw payload carries the text
		rawData: &recall.JobData{Raw: map[string]interface{}{
			"recordings": []interface{}{
				map[string]interface{}{
					"transcript": map[string]interface{}{"text": "fallback transcript"},
				},
			},
		}},
	}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, _ := h.registry.Get(context.Background(), res.MeetingID)
		return s != nil && s.Processed
	}, 3*time.Second, 5*time.Millisecond)
}

func TestProcess_FailingTranscriptURLFallsBackToJobData(t *testing.T) {
	// The signed URL keeps erroring; the transcript must come from the raw
	// job payload instead
	failingSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer failingSrv.Close()

	jobs := &fakeJobs{
		statuses:      []string{recall.StatusDone},
		transcriptURL: failingSrv.URL,
		rawData: &recall.JobData{Raw: map[string]interface{}{
			"transcript": "recovered from job data",
		}},
	}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	h.svc.downloadPolicy = func() backoff.BackOff {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = time.Millisecond
		policy.MaxElapsedTime = 20 * time.Millisecond
		return policy
	}

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, _ := h.registry.Get(context.Background(), res.MeetingID)
		return s != nil && s.Processed
	}, 3*time.Second, 5*time.Millisecond)

	h.gen.mu.Lock()
	defer h.gen.mu.Unlock()
	require.NotEmpty(t, h.gen.prompts)
	assert.Contains(t, h.gen.prompts[0], "recovered from job data")
}

func TestProcess_NoTranscriptLeavesSessionCompleted(t *testing.T) {
	jobs := &fakeJobs{statuses: []string{recall.StatusDone}}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	session := waitForStatus(t, h, res.MeetingID, entities.SessionStatusCompleted)

	// Give processing a moment to run and abort
	time.Sleep(50 * time.Millisecond)
	session, _ = h.registry.Get(context.Background(), res.MeetingID)
	assert.False(t, session.Processed, "no transcript means processed stays false")
	assert.Empty(t, h.outputs.types())
}

func TestProcess_OneKindFailingNeverBlocksOthers(t *testing.T) {
	jobs := &fakeJobs{
		statuses: []string{recall.StatusDone},
		rawData: &recall.JobData{Raw: map[string]interface{}{
			"transcript": "full transcript",
		}},
	}
	h := newHarness(jobs, nil)
	h.gen.failKinds = map[content.Kind]bool{content.KindActionItems: true}
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, _ := h.registry.Get(context.Background(), res.MeetingID)
		return s != nil && s.Processed
	}, 3*time.Second, 5*time.Millisecond)

	counts := h.outputs.types()
	assert.Equal(t, 1, counts[entities.OutputTypeSummary])
	assert.Zero(t, counts[entities.OutputTypeActionItems])
	assert.Equal(t, 1, counts[entities.OutputTypeFollowUp])
}

func TestReprocess_AppendsNewOutputs(t *testing.T) {
	jobs := &fakeJobs{
		statuses: []string{recall.StatusDone},
		rawData: &recall.JobData{Raw: map[string]interface{}{
			"transcript": "full transcript",
		}},
	}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, _ := h.registry.Get(context.Background(), res.MeetingID)
		return s != nil && s.Processed
	}, 3*time.Second, 5*time.Millisecond)

	require.NoError(t, h.svc.Reprocess(context.Background(), res.MeetingID))

	counts := h.outputs.types()
	assert.Equal(t, 2, counts[entities.OutputTypeSummary], "reprocessing appends, never overwrites")
}

func TestReprocess_RequiresCompletedSession(t *testing.T) {
	jobs := &fakeJobs{statuses: []string{recall.StatusInCall}}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	err = h.svc.Reprocess(context.Background(), res.MeetingID)
	require.Error(t, err)
	var appErr apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_SESSION_NOT_COMPLETED, appErr.Code)
}

func TestGetStatus_UnknownMeeting(t *testing.T) {
	h := newHarness(&fakeJobs{statuses: []string{recall.StatusInCall}}, nil)

	_, err := h.svc.GetStatus(context.Background(), uuid.New())
	require.Error(t, err)
	var appErr apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorCode_SESSION_NOT_FOUND, appErr.Code)
}

func TestListActive_FiltersTerminalSessions(t *testing.T) {
	jobs := &fakeJobs{statuses: []string{recall.StatusFatal}}
	h := newHarness(jobs, nil)
	defer h.svc.Stop()

	res, err := h.svc.Start(context.Background(), startParams())
	require.NoError(t, err)

	waitForStatus(t, h, res.MeetingID, entities.SessionStatusFailed)

	active, err := h.svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestExtractTranscriptFromJobData(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]interface{}
		want string
	}{
		{
			name: "top-level string",
			raw:  map[string]interface{}{"transcript": "plain text"},
			want: "plain text",
		},
		{
			name: "top-level object with text",
			raw:  map[string]interface{}{"transcript": map[string]interface{}{"text": "object text"}},
			want: "object text",
		},
		{
			name: "top-level object with content",
			raw:  map[string]interface{}{"transcript": map[string]interface{}{"content": "object content"}},
			want: "object content",
		},
		{
			name: "recording transcript",
			raw: map[string]interface{}{
				"recordings": []interface{}{
					map[string]interface{}{"transcript": "recording text"},
				},
			},
			want: "recording text",
		},
		{
			name: "media shortcut data",
			raw: map[string]interface{}{
				"recordings": []interface{}{
					map[string]interface{}{
						"media_shortcuts": map[string]interface{}{
							"transcript": map[string]interface{}{
								"data": map[string]interface{}{"text": "shortcut text"},
							},
						},
					},
				},
			},
			want: "shortcut text",
		},
		{
			name: "nothing anywhere",
			raw:  map[string]interface{}{"recordings": []interface{}{}},
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractTranscriptFromJobData(&recall.JobData{Raw: tc.raw})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFlattenTranscript(t *testing.T) {
	captions := `[{"participant":{"name":"Alex"},"words":[{"text":"hello"},{"text":"team"}]}]`
	assert.Equal(t, "Alex: hello team\n", flattenTranscript([]byte(captions)))

	plain := "not json at all"
	assert.Equal(t, plain, flattenTranscript([]byte(plain)))
}
