package intake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/clinic-intake-platform/internal/llm"
)

type fakeLLM struct {
	text string
	err  error
	req  llm.Request
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	f.req = req
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.text}, nil
}

func TestLLMMatcher_AcceptsVerbatimCandidate(t *testing.T) {
	client := &fakeLLM{text: "Speak to a Nurse"}
	m := NewLLMMatcher(client, "test-model", time.Second, nil)

	got, ok := m.Match(context.Background(), "can I talk to the nurse line", reasonOptions())

	assert.True(t, ok)
	assert.Equal(t, ReasonNurse, got)
	assert.Equal(t, "test-model", client.req.Model)
	assert.Contains(t, client.req.Messages[0].Content, "can I talk to the nurse line")
}

func TestLLMMatcher_RejectsNonVerbatimOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"paraphrase", "the caller wants to speak to a nurse"},
		{"wrong case", "speak to a nurse"},
		{"refusal", "None"},
		{"refusal lowercase", "none"},
		{"empty", ""},
		{"trailing noise", "Referral."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewLLMMatcher(&fakeLLM{text: tt.text}, "test-model", time.Second, nil)
			got, ok := m.Match(context.Background(), "whatever", reasonOptions())
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestLLMMatcher_TrimsWhitespace(t *testing.T) {
	m := NewLLMMatcher(&fakeLLM{text: "  Referral\n"}, "test-model", time.Second, nil)

	got, ok := m.Match(context.Background(), "I have a referral", reasonOptions())

	assert.True(t, ok)
	assert.Equal(t, ReasonReferral, got)
}

func TestLLMMatcher_ProviderErrorIsNoMatch(t *testing.T) {
	m := NewLLMMatcher(&fakeLLM{err: errors.New("throttled")}, "test-model", time.Second, nil)

	_, ok := m.Match(context.Background(), "schedule", reasonOptions())

	assert.False(t, ok)
}

func TestLLMMatcher_EmptyInputsShortCircuit(t *testing.T) {
	client := &fakeLLM{text: ReasonSchedule}
	m := NewLLMMatcher(client, "test-model", time.Second, nil)

	_, ok := m.Match(context.Background(), "  ", reasonOptions())
	assert.False(t, ok)

	_, ok = m.Match(context.Background(), "schedule", nil)
	assert.False(t, ok)

	m = NewLLMMatcher(nil, "test-model", time.Second, nil)
	_, ok = m.Match(context.Background(), "schedule", reasonOptions())
	assert.False(t, ok)
}
