package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/clinic-intake-platform/pkg/logging"
)

// S3API is the subset of the S3 client used by PromptAudioStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Synthesizer renders prompt text as audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// PromptAudioStore synthesizes intake prompts once, uploads the audio to
// S3, and hands back public URLs for TwiML <Play>. Prompt text is a small
// fixed set, so URLs are cached for the life of the process. If bucket is
// empty the store is disabled and PromptURL reports not-found.
type PromptAudioStore struct {
	s3Client    S3API
	synthesizer Synthesizer
	bucket      string
	region      string
	logger      *logging.Logger

	mu   sync.Mutex
	urls map[string]string
}

// NewPromptAudioStore creates a prompt audio store.
func NewPromptAudioStore(s3Client S3API, synthesizer Synthesizer, bucket, region string, logger *logging.Logger) *PromptAudioStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &PromptAudioStore{
		s3Client:    s3Client,
		synthesizer: synthesizer,
		bucket:      bucket,
		region:      region,
		logger:      logger,
		urls:        make(map[string]string),
	}
}

// Enabled returns true if prompt audio is configured.
func (p *PromptAudioStore) Enabled() bool {
	return p != nil && p.bucket != "" && p.s3Client != nil && p.synthesizer != nil
}

// PromptURL returns the public URL of the synthesized audio for the given
// prompt text, uploading it on first use. The second return is false when
// the store is disabled or the upload failed; callers fall back to <Say>.
func (p *PromptAudioStore) PromptURL(ctx context.Context, text string) (string, bool) {
	if !p.Enabled() || text == "" {
		return "", false
	}

	key := promptKey(text)
	p.mu.Lock()
	if url, ok := p.urls[key]; ok {
		p.mu.Unlock()
		return url, true
	}
	p.mu.Unlock()

	audio, err := p.synthesizer.Synthesize(ctx, text)
	if err != nil {
		p.logger.Warn("prompt synthesis failed, falling back to live TTS", "error", err)
		return "", false
	}

	_, err = p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(audio),
		ContentType: aws.String("audio/mpeg"),
	})
	if err != nil {
		p.logger.Warn("prompt audio upload failed", "error", err, "s3_key", key)
		return "", false
	}

	url := p.objectURL(key)
	p.mu.Lock()
	p.urls[key] = url
	p.mu.Unlock()

	p.logger.Info("uploaded prompt audio", "s3_key", key, "bytes", len(audio))
	return url, true
}

func (p *PromptAudioStore) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
}

// promptKey derives a stable object key from the prompt text, so reworded
// prompts get fresh audio automatically.
func promptKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("prompts/v1/%s.mp3", hex.EncodeToString(sum[:8]))
}
