// Package speech wraps speech-to-text and text-to-speech for the voice
// line. Twilio's built-in recognizer handles the live call path; Whisper
// transcription covers recorded audio, and TTS pre-renders prompt audio so
// every caller hears the same voice.
package speech

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wolfman30/clinic-intake-platform/pkg/logging"
)

// audioAPI is the subset of the OpenAI client used by Service.
type audioAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Service transcribes caller audio and synthesizes prompt speech.
type Service struct {
	client audioAPI
	voice  string
	logger *logging.Logger
}

// NewService creates a speech service. Voice selects the TTS voice; empty
// falls back to "alloy".
func NewService(client audioAPI, voice string, logger *logging.Logger) *Service {
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, voice: voice, logger: logger}
}

// NewServiceFromAPIKey builds a Service on the hosted OpenAI API.
func NewServiceFromAPIKey(apiKey, voice string, logger *logging.Logger) *Service {
	return NewService(openai.NewClient(apiKey), voice, logger)
}

// Transcribe converts recorded call audio to text with Whisper. The
// filename tells the API the container format ("recording.wav").
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("speech: transcription not configured")
	}
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   audio,
		FilePath: filename,
		Language: "en",
	})
	if err != nil {
		return "", fmt.Errorf("speech: transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Synthesize renders text as MP3 audio.
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("speech: synthesis not configured")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("speech: empty synthesis input")
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("speech: read synthesized audio: %w", err)
	}
	return data, nil
}
