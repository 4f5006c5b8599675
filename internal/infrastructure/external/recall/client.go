package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lemur-ai/meeting-brain/pkg/config"
)

// Job status codes reported by the recording provider
const (
	StatusJoining       = "joining_call"
	StatusWaitingToJoin = "waiting_to_join"
	StatusInCall        = "in_call_recording"
	StatusDone          = "done"
	StatusFatal         = "fatal"
	StatusError         = "error"
	StatusFailed        = "failed"

	// StatusActiveCannotDelete means the provider refused deletion because
	// the bot is still in the call. Treated as a successful outcome.
	StatusActiveCannotDelete = "active_cannot_delete"
)

// IsDone reports whether a status code means the recording finished normally
func IsDone(status string) bool {
	return status == StatusDone
}

// IsFailed reports whether a status code is a terminal failure
func IsFailed(status string) bool {
	return status == StatusFatal || status == StatusError || status == StatusFailed
}

// Client wraps recording job provider operations
type Client interface {
	CreateJob(ctx context.Context, meetingURL, botName string) (string, error)
	PollStatus(ctx context.Context, jobID string) (*StatusResult, error)
	FetchArtifactURLs(ctx context.Context, jobID string) (*ArtifactURLs, error)
	FetchRawJobData(ctx context.Context, jobID string, forceRefresh bool) (*JobData, error)
	DeleteJob(ctx context.Context, jobID string) (*DeleteResult, error)
}

// StatusChange is one entry in a job's status history
type StatusChange struct {
	Code      string `json:"code"`
	CreatedAt string `json:"created_at,omitempty"`
}

// MediaShortcut holds one downloadable artifact reference
type MediaShortcut struct {
	Data struct {
		DownloadURL string `json:"download_url"`
	} `json:"data"`
}

// Recording is one recording attached to a job
type Recording struct {
	ID             string                   `json:"id"`
	Transcript     interface{}              `json:"transcript,omitempty"`
	MediaShortcuts map[string]MediaShortcut `json:"media_shortcuts,omitempty"`
}

// JobData holds a decoded job payload plus the raw map for fallback scans
type JobData struct {
	ID            string
	StatusChanges []StatusChange
	Recordings    []Recording
	Raw           map[string]interface{}
}

// StatusResult is the outcome of one status poll
type StatusResult struct {
	JobID         string
	Status        string
	HasRecordings bool
	Changes       []StatusChange
}

// ArtifactURLs holds the signed download URLs of a finished job
type ArtifactURLs struct {
	VideoURL      string
	AudioURL      string
	TranscriptURL string
}

// DeleteResult is the outcome of a delete request
type DeleteResult struct {
	JobID  string
	Status string // "deleted" or StatusActiveCannotDelete
}

// httpClient is the real provider implementation
type httpClient struct {
	apiKey  string
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	cache map[string]*JobData
}

// NewClient creates a recording job client from config
func NewClient(cfg *config.RecallConfig) Client {
	return &httpClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		cache:   make(map[string]*JobData),
	}
}

func (c *httpClient) headers(req *http.Request) {
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// CreateJob dispatches a recording bot to the meeting and returns its job ID.
// No retry: the caller must not leave half-registered sessions behind.
func (c *httpClient) CreateJob(ctx context.Context, meetingURL, botName string) (string, error) {
	payload := map[string]interface{}{
		"meeting_url": meetingURL,
		"bot_name":    botName,
		"recording_config": map[string]interface{}{
			"transcript": map[string]interface{}{
				"provider": map[string]interface{}{
					"meeting_captions": map[string]interface{}{},
				},
			},
		},
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/bot", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	c.headers(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("job creation returned status %d: %s", resp.StatusCode, string(body))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("job creation response missing id")
	}
	return created.ID, nil
}

// PollStatus fetches the job and reports its current status code
func (c *httpClient) PollStatus(ctx context.Context, jobID string) (*StatusResult, error) {
	data, err := c.FetchRawJobData(ctx, jobID, true)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		JobID:         jobID,
		Status:        inferStatus(data.StatusChanges, data.Recordings),
		HasRecordings: len(data.Recordings) > 0,
		Changes:       data.StatusChanges,
	}, nil
}

// inferStatus resolves the current status code. The last history entry wins;
// an empty history means the bot is in its initial state unless recordings
// already exist, in which case the job is done.
func inferStatus(changes []StatusChange, recordings []Recording) string {
	if len(changes) > 0 {
		return changes[len(changes)-1].Code
	}
	if len(recordings) > 0 {
		return StatusDone
	}
	return StatusWaitingToJoin
}

// FetchArtifactURLs extracts download URLs from the first recording. Always
// refetches: the URLs are signed and expire.
func (c *httpClient) FetchArtifactURLs(ctx context.Context, jobID string) (*ArtifactURLs, error) {
	data, err := c.FetchRawJobData(ctx, jobID, true)
	if err != nil {
		return nil, err
	}

	urls := &ArtifactURLs{}
	if len(data.Recordings) == 0 {
		return urls, nil
	}

	shortcuts := data.Recordings[0].MediaShortcuts
	if sc, ok := shortcuts["video_mixed"]; ok {
		urls.VideoURL = sc.Data.DownloadURL
	}
	if sc, ok := shortcuts["audio_mixed"]; ok {
		urls.AudioURL = sc.Data.DownloadURL
	}
	if sc, ok := shortcuts["transcript"]; ok {
		urls.TranscriptURL = sc.Data.DownloadURL
	}
	return urls, nil
}

// FetchRawJobData fetches and decodes the full job payload. The result is
// cached per job; pass forceRefresh to bypass the cache.
func (c *httpClient) FetchRawJobData(ctx context.Context, jobID string, forceRefresh bool) (*JobData, error) {
	if !forceRefresh {
		c.mu.Lock()
		cached, ok := c.cache[jobID]
		c.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/bot/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	c.headers(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("job fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	var typed struct {
		ID            string         `json:"id"`
		StatusChanges []StatusChange `json:"status_changes"`
		Recordings    []Recording    `json:"recordings"`
	}
	if err := json.Unmarshal(body, &typed); err != nil {
		return nil, err
	}

	data := &JobData{
		ID:            typed.ID,
		StatusChanges: typed.StatusChanges,
		Recordings:    typed.Recordings,
		Raw:           raw,
	}

	c.mu.Lock()
	c.cache[jobID] = data
	c.mu.Unlock()

	return data, nil
}

// DeleteJob removes the bot from the call. A 405 cannot_delete_bot response
// means the bot is mid-call and is reported as a non-error outcome.
func (c *httpClient) DeleteJob(ctx context.Context, jobID string) (*DeleteResult, error) {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+"/bot/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	c.headers(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed {
		var errBody struct {
			Code string `json:"code"`
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(body, &errBody)
		if strings.Contains(errBody.Code, "cannot_delete_bot") {
			return &DeleteResult{JobID: jobID, Status: StatusActiveCannotDelete}, nil
		}
		return nil, fmt.Errorf("job deletion returned status %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("job deletion returned status %d", resp.StatusCode)
	}

	c.mu.Lock()
	delete(c.cache, jobID)
	c.mu.Unlock()

	return &DeleteResult{JobID: jobID, Status: "deleted"}, nil
}
