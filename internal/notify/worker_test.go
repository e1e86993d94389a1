package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-intake-platform/internal/intake"
)

// recordingSender captures sent emails.
type recordingSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	fail bool
	done chan struct{}
}

func newRecordingSender() *recordingSender {
	return &recordingSender{done: make(chan struct{}, 16)}
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp down")
	}
	r.sent = append(r.sent, msg)
	r.done <- struct{}{}
	return nil
}

func (r *recordingSender) emails() []EmailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EmailMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

func terminalSession() *intake.Session {
	s := intake.NewSession("CA400")
	s.CallerPhone = "+15551230000"
	e := intake.NewEngine("Dr. Ahmed", "Sarah Eannarelli")
	for _, u := range []string{"John Doe", "01/02/1980", "555", "referral"} {
		e.Advance(context.Background(), s, u)
	}
	return s
}

func TestPublisherAndWorker_DeliverSummary(t *testing.T) {
	queue := NewMemoryQueue(8)
	sender := newRecordingSender()
	publisher := NewPublisher(queue, nil)
	worker := NewWorker(queue, sender, "frontdesk@clinic.example.com", nil, WithWorkerCount(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	session := terminalSession()
	transcript := []intake.TranscriptEntry{{Role: "caller", Text: "referral"}}
	require.NoError(t, publisher.EnqueueSummary(ctx, session, transcript))

	select {
	case <-sender.done:
	case <-time.After(3 * time.Second):
		t.Fatal("summary email was never sent")
	}

	cancel()
	worker.Wait()

	sent := sender.emails()
	require.Len(t, sent, 1)
	assert.Equal(t, "frontdesk@clinic.example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, "John Doe")
	assert.Contains(t, sent[0].Body, "Caller transferred to staff")
	assert.Contains(t, sent[0].Body, "[caller] referral")
}

func TestWorker_SkipsMalformedJob(t *testing.T) {
	queue := NewMemoryQueue(8)
	sender := newRecordingSender()
	worker := NewWorker(queue, sender, "frontdesk@clinic.example.com", nil, WithWorkerCount(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	require.NoError(t, queue.Send(ctx, "not json"))

	// Give the worker a moment to consume and discard it.
	time.Sleep(200 * time.Millisecond)
	cancel()
	worker.Wait()

	assert.Empty(t, sender.emails())
}

func TestPublisher_RequiresSession(t *testing.T) {
	publisher := NewPublisher(NewMemoryQueue(1), nil)
	assert.Error(t, publisher.EnqueueSummary(context.Background(), nil, nil))
}

func TestMemoryQueue_SendReceiveDelete(t *testing.T) {
	queue := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, queue.Send(ctx, "one"))
	require.NoError(t, queue.Send(ctx, "two"))

	messages, err := queue.Receive(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0].Body)
	assert.Equal(t, "two", messages[1].Body)

	assert.NoError(t, queue.Delete(ctx, messages[0].ReceiptHandle))
}

func TestMemoryQueue_ReceiveTimesOut(t *testing.T) {
	queue := NewMemoryQueue(1)

	start := time.Now()
	messages, err := queue.Receive(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}
