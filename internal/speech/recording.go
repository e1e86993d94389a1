package speech

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/wolfman30/clinic-intake-platform/pkg/logging"
)

// RecordingTranscriber downloads a Twilio call recording and transcribes
// it. Recording media URLs require the account's basic-auth credentials.
type RecordingTranscriber struct {
	service    *Service
	httpClient *http.Client
	accountSID string
	authToken  string
	logger     *logging.Logger
}

// NewRecordingTranscriber creates a transcriber for Twilio recording URLs.
// Credentials are optional; without them the fetch is unauthenticated.
func NewRecordingTranscriber(service *Service, accountSID, authToken string, logger *logging.Logger) *RecordingTranscriber {
	if service == nil {
		panic("speech: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RecordingTranscriber{
		service:    service,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		accountSID: accountSID,
		authToken:  authToken,
		logger:     logger,
	}
}

// TranscribeRecording fetches the recording audio and runs it through
// Whisper. Twilio serves WAV when the URL has no extension.
func (t *RecordingTranscriber) TranscribeRecording(ctx context.Context, recordingURL string) (string, error) {
	recordingURL = strings.TrimSpace(recordingURL)
	if recordingURL == "" {
		return "", fmt.Errorf("speech: empty recording url")
	}

	filename := path.Base(recordingURL)
	if path.Ext(filename) == "" {
		recordingURL += ".wav"
		filename += ".wav"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return "", fmt.Errorf("speech: build recording request: %w", err)
	}
	if t.accountSID != "" && t.authToken != "" {
		req.SetBasicAuth(t.accountSID, t.authToken)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech: fetch recording: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("speech: fetch recording: unexpected status %d", resp.StatusCode)
	}

	text, err := t.service.Transcribe(ctx, resp.Body, filename)
	if err != nil {
		return "", err
	}
	t.logger.Debug("transcribed call recording", "url", recordingURL, "chars", len(text))
	return text, nil
}
