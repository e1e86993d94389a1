package speech

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	putCalls int
	lastKey  string
	lastBody []byte
	err      error
}

func (m *mockS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.putCalls++
	if m.err != nil {
		return nil, m.err
	}
	m.lastKey = *input.Key
	m.lastBody, _ = io.ReadAll(input.Body)
	return &s3.PutObjectOutput{}, nil
}

type mockSynth struct {
	audio []byte
	err   error
	calls int
}

func (m *mockSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.audio, nil
}

func TestPromptAudioStore_UploadAndCache(t *testing.T) {
	s3c := &mockS3{}
	synth := &mockSynth{audio: []byte("mp3")}
	store := NewPromptAudioStore(s3c, synth, "prompt-bucket", "us-east-1", nil)

	url, ok := store.PromptURL(context.Background(), "What is your full name?")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(url, "https://prompt-bucket.s3.us-east-1.amazonaws.com/prompts/v1/"))
	assert.True(t, strings.HasSuffix(url, ".mp3"))
	assert.Equal(t, []byte("mp3"), s3c.lastBody)

	// Second request for the same text hits the cache.
	again, ok := store.PromptURL(context.Background(), "What is your full name?")
	require.True(t, ok)
	assert.Equal(t, url, again)
	assert.Equal(t, 1, synth.calls)
	assert.Equal(t, 1, s3c.putCalls)
}

func TestPromptAudioStore_DistinctTextDistinctKeys(t *testing.T) {
	s3c := &mockS3{}
	store := NewPromptAudioStore(s3c, &mockSynth{audio: []byte("a")}, "b", "us-east-1", nil)

	first, _ := store.PromptURL(context.Background(), "What is your date of birth?")
	second, _ := store.PromptURL(context.Background(), "What is your phone number?")
	assert.NotEqual(t, first, second)
}

func TestPromptAudioStore_SynthFailureFallsBack(t *testing.T) {
	store := NewPromptAudioStore(&mockS3{}, &mockSynth{err: errors.New("tts down")}, "b", "us-east-1", nil)

	_, ok := store.PromptURL(context.Background(), "hello")
	assert.False(t, ok)
}

func TestPromptAudioStore_UploadFailureFallsBack(t *testing.T) {
	store := NewPromptAudioStore(&mockS3{err: errors.New("denied")}, &mockSynth{audio: []byte("a")}, "b", "us-east-1", nil)

	_, ok := store.PromptURL(context.Background(), "hello")
	assert.False(t, ok)
}

func TestPromptAudioStore_DisabledWithoutBucket(t *testing.T) {
	store := NewPromptAudioStore(&mockS3{}, &mockSynth{audio: []byte("a")}, "", "us-east-1", nil)

	assert.False(t, store.Enabled())
	_, ok := store.PromptURL(context.Background(), "hello")
	assert.False(t, ok)
}
