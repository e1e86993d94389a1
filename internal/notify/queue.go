package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-intake-platform/internal/intake"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type jobType string

const jobTypeSummary jobType = "intake_summary"

// queuePayload carries everything the worker needs to build and send the
// summary, so it never has to re-read session state that may have expired.
type queuePayload struct {
	ID         string                   `json:"id"`
	Kind       jobType                  `json:"kind"`
	Session    *intake.Session          `json:"session,omitempty"`
	Transcript []intake.TranscriptEntry `json:"transcript,omitempty"`
}

func encodePayload(kind jobType, session *intake.Session, transcript []intake.TranscriptEntry) (queuePayload, string, error) {
	payload := queuePayload{
		ID:         uuid.NewString(),
		Kind:       kind,
		Session:    session,
		Transcript: transcript,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return queuePayload{}, "", fmt.Errorf("notify: encode payload: %w", err)
	}

	return payload, string(body), nil
}
