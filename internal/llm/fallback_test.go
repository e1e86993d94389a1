package llm

import (
	"context"
	"errors"
	"testing"
)

type stubClient struct {
	resp  Response
	err   error
	calls int
}

func (s *stubClient) Complete(ctx context.Context, req Request) (Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestFallbackClient_PrimarySucceeds(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "primary"}}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	client := NewFallbackClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "primary" {
		t.Errorf("Text = %q, want %q", resp.Text, "primary")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestFallbackClient_PrimaryFails(t *testing.T) {
	primary := &stubClient{err: errors.New("throttled")}
	fallback := &stubClient{resp: Response{Text: "fallback"}}
	client := NewFallbackClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "fallback" {
		t.Errorf("Text = %q, want %q", resp.Text, "fallback")
	}
}

func TestFallbackClient_BothFail(t *testing.T) {
	primary := &stubClient{err: errors.New("throttled")}
	fallback := &stubClient{err: errors.New("quota exceeded")}
	client := NewFallbackClient(primary, fallback, nil)

	_, err := client.Complete(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error when both providers fail")
	}
	if err.Error() != "quota exceeded" {
		t.Errorf("error = %v, want fallback error", err)
	}
}

func TestFallbackClient_NoFallbackConfigured(t *testing.T) {
	primary := &stubClient{err: errors.New("throttled")}
	client := NewFallbackClient(primary, nil, nil)

	_, err := client.Complete(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected primary error to surface")
	}
}
