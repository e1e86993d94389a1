package notify

import (
	"context"
	"fmt"

	"github.com/wolfman30/clinic-intake-platform/internal/intake"
	"github.com/wolfman30/clinic-intake-platform/pkg/logging"
)

// Publisher enqueues intake summary jobs for asynchronous delivery.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueueSummary publishes an intake summary job. The session snapshot and
// transcript travel in the payload.
func (p *Publisher) EnqueueSummary(ctx context.Context, session *intake.Session, transcript []intake.TranscriptEntry) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if session == nil {
		return fmt.Errorf("notify: session required")
	}

	payload, body, err := encodePayload(jobTypeSummary, session, transcript)
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("notify: enqueue summary: %w", err)
	}

	p.logger.Debug("intake summary enqueued", "job_id", payload.ID, "call_sid", session.CallID)
	return nil
}
