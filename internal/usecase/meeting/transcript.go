package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/lemur-ai/meeting-brain/internal/infrastructure/external/recall"
)

// downloadTranscript fetches the transcript body from a signed URL with
// exponential backoff. Signed URLs can lag behind job completion.
func (s *Service) downloadTranscript(ctx context.Context, url string) (string, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("transcript download returned status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("transcript download returned status %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(s.downloadPolicy(), ctx)); err != nil {
		return "", err
	}

	return flattenTranscript(body), nil
}

// defaultDownloadPolicy retries missing or erroring signed URLs for up to
// two minutes
func defaultDownloadPolicy() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 2 * time.Second
	policy.MaxElapsedTime = 2 * time.Minute
	return policy
}

// flattenTranscript turns a caption-provider JSON payload into plain text.
// Anything that does not parse as the expected shape is returned verbatim.
func flattenTranscript(body []byte) string {
	var segments []struct {
		Participant struct {
			Name string `json:"name"`
		} `json:"participant"`
		Words []struct {
			Text string `json:"text"`
		} `json:"words"`
	}
	if err := json.Unmarshal(body, &segments); err != nil || len(segments) == 0 {
		return string(body)
	}

	var sb strings.Builder
	for _, seg := range segments {
		words := make([]string, 0, len(seg.Words))
		for _, w := range seg.Words {
			if w.Text != "" {
				words = append(words, w.Text)
			}
		}
		if len(words) == 0 {
			continue
		}
		if seg.Participant.Name != "" {
			sb.WriteString(seg.Participant.Name)
			sb.WriteString(": ")
		}
		sb.WriteString(strings.Join(words, " "))
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return string(body)
	}
	return sb.String()
}

// extractTranscriptFromJobData scans the raw job payload for embedded
// transcript text. First non-empty hit wins: top-level transcript field,
// then each recording's transcript, then media-shortcut transcript data.
func extractTranscriptFromJobData(data *recall.JobData) string {
	if data == nil {
		return ""
	}

	if text := transcriptText(data.Raw["transcript"]); text != "" {
		return text
	}

	recordings, _ := data.Raw["recordings"].([]interface{})
	for _, entry := range recordings {
		rec, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if text := transcriptText(rec["transcript"]); text != "" {
			return text
		}
		if shortcuts, ok := rec["media_shortcuts"].(map[string]interface{}); ok {
			if transcript, ok := shortcuts["transcript"].(map[string]interface{}); ok {
				if text := transcriptText(transcript["data"]); text != "" {
					return text
				}
			}
		}
	}

	return ""
}

// transcriptText pulls plain text out of a transcript value, which may be a
// bare string or an object carrying text/content fields
func transcriptText(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]interface{}:
		if text, ok := v["text"].(string); ok && text != "" {
			return text
		}
		if content, ok := v["content"].(string); ok && content != "" {
			return content
		}
	}
	return ""
}
