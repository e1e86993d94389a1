// Package handlers contains the HTTP handlers for the Twilio voice
// webhooks. Each inbound request is one turn of an intake conversation;
// the response is the TwiML for the next prompt.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-intake-platform/internal/intake"
	"github.com/wolfman30/clinic-intake-platform/internal/observability/metrics"
	"github.com/wolfman30/clinic-intake-platform/internal/telephony"
	"github.com/wolfman30/clinic-intake-platform/pkg/logging"
)

var voiceTracer = otel.Tracer("clinic.internal.http.voice")

// summaryPublisher enqueues the end-of-call summary for async delivery.
type summaryPublisher interface {
	EnqueueSummary(ctx context.Context, session *intake.Session, transcript []intake.TranscriptEntry) error
}

// promptAudio resolves prompt text to a pre-rendered audio URL.
type promptAudio interface {
	PromptURL(ctx context.Context, text string) (string, bool)
}

// recordingTranscriber converts recorded caller audio to text.
type recordingTranscriber interface {
	TranscribeRecording(ctx context.Context, recordingURL string) (string, error)
}

// VoiceWebhookConfig holds the dependencies for the voice handler.
type VoiceWebhookConfig struct {
	Engine    *intake.Engine
	Store     intake.SessionStore
	Publisher summaryPublisher
	// PromptAudio is optional; when nil every prompt is spoken with <Say>.
	PromptAudio promptAudio
	// Transcriber is optional; when set, turns that arrive with a recording
	// instead of a speech result are transcribed before advancing.
	Transcriber recordingTranscriber
	Metrics     *metrics.IntakeMetrics
	Logger      *logging.Logger
	// TwilioAuthToken enables signature validation when non-empty.
	TwilioAuthToken string
	// TransferNumber is dialed when the flow hands the caller to staff.
	TransferNumber string
	// VoicePath is the action URL gathers post back to.
	VoicePath string
}

// VoiceWebhookHandler drives intake conversations over Twilio voice webhooks.
type VoiceWebhookHandler struct {
	engine      *intake.Engine
	store       intake.SessionStore
	publisher   summaryPublisher
	promptAudio promptAudio
	transcriber recordingTranscriber
	metrics     *metrics.IntakeMetrics
	logger      *logging.Logger

	authToken      string
	transferNumber string
	voicePath      string
}

// NewVoiceWebhookHandler creates the voice webhook handler.
func NewVoiceWebhookHandler(cfg VoiceWebhookConfig) *VoiceWebhookHandler {
	if cfg.Engine == nil {
		panic("handlers: engine cannot be nil")
	}
	if cfg.Store == nil {
		panic("handlers: session store cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.VoicePath == "" {
		cfg.VoicePath = "/webhooks/twilio/voice"
	}
	return &VoiceWebhookHandler{
		engine:         cfg.Engine,
		store:          cfg.Store,
		publisher:      cfg.Publisher,
		promptAudio:    cfg.PromptAudio,
		transcriber:    cfg.Transcriber,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		authToken:      cfg.TwilioAuthToken,
		transferNumber: cfg.TransferNumber,
		voicePath:      cfg.VoicePath,
	}
}

// HandleVoice handles POST /webhooks/twilio/voice. The first request of a
// call gets the greeting; each subsequent request advances the dialogue by
// one turn.
func (h *VoiceWebhookHandler) HandleVoice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := voiceTracer.Start(r.Context(), "intake.voice.webhook")
	defer span.End()
	defer func() {
		h.metrics.ObserveWebhookLatency("voice", time.Since(start).Seconds())
	}()

	if h.authToken != "" {
		if !telephony.ValidateTwilioSignature(r, h.authToken, buildAbsoluteURL(r)) {
			h.logger.Warn("invalid twilio voice signature")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			span.RecordError(errors.New("invalid twilio voice signature"))
			return
		}
	}

	webhook, err := telephony.ParseVoiceWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse voice webhook", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}
	span.SetAttributes(
		attribute.String("clinic.twilio.call_sid", webhook.CallSid),
		attribute.String("clinic.twilio.call_status", webhook.CallStatus),
	)

	session, err := h.store.Get(ctx, webhook.CallSid)
	if err != nil {
		h.logger.Error("failed to load session", "error", err, "call_sid", webhook.CallSid)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		span.RecordError(err)
		return
	}

	var turn intake.Turn
	if session == nil {
		session = intake.NewSession(webhook.CallSid)
		session.CallerPhone = telephony.NormalizeE164(webhook.From)
		session.ClinicPhone = telephony.NormalizeE164(webhook.To)
		turn = h.engine.Greeting()
		h.metrics.ObserveCallStarted()
		h.logger.Info("intake call started", "call_sid", webhook.CallSid)
	} else {
		utterance := webhook.Utterance()
		if utterance == "" && webhook.RecordingURL != "" && h.transcriber != nil {
			text, err := h.transcriber.TranscribeRecording(ctx, webhook.RecordingURL)
			if err != nil {
				h.logger.Warn("failed to transcribe recording", "error", err, "call_sid", webhook.CallSid)
			} else {
				utterance = text
			}
		}
		if utterance != "" {
			h.appendTranscript(ctx, webhook.CallSid, "caller", utterance)
		}
		step := session.Step
		turn = h.engine.Advance(ctx, session, utterance)
		h.metrics.ObserveTurn(string(step), turnResult(turn))
	}
	h.appendTranscript(ctx, webhook.CallSid, "assistant", turn.Prompt)

	if turn.Terminal && !session.SummarySent {
		h.publishSummary(ctx, session)
		h.metrics.ObserveCallEnded(string(session.Outcome))
	}

	if err := h.store.Save(ctx, session); err != nil {
		// The turn already happened; answer the caller and let the next
		// webhook retry persistence.
		h.logger.Error("failed to save session", "error", err, "call_sid", webhook.CallSid)
		span.RecordError(err)
	}

	w.Header().Set("Content-Type", telephony.TwiMLContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.renderTurn(ctx, session, turn)))
}

// HandleStatus handles POST /webhooks/twilio/status. Calls that end before
// the flow finishes still get a summary so staff can call back.
func (h *VoiceWebhookHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := voiceTracer.Start(r.Context(), "intake.voice.status")
	defer span.End()
	defer func() {
		h.metrics.ObserveWebhookLatency("status", time.Since(start).Seconds())
	}()

	if h.authToken != "" {
		if !telephony.ValidateTwilioSignature(r, h.authToken, buildAbsoluteURL(r)) {
			h.logger.Warn("invalid twilio status signature")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	webhook, err := telephony.ParseVoiceWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse status callback", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("clinic.twilio.call_sid", webhook.CallSid))

	if !isFinalCallStatus(webhook.CallStatus) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	session, err := h.store.Get(ctx, webhook.CallSid)
	if err != nil {
		h.logger.Error("failed to load session for status", "error", err, "call_sid", webhook.CallSid)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if session == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !session.Terminal {
		session.Terminal = true
		session.Outcome = intake.OutcomeAbandoned
		h.logger.Info("intake call abandoned",
			"call_sid", webhook.CallSid,
			"collected_fields", len(session.Collected),
		)
	}
	if !session.SummarySent && len(session.Collected) > 0 {
		h.publishSummary(ctx, session)
		h.metrics.ObserveCallEnded(string(session.Outcome))
	}
	if err := h.store.Save(ctx, session); err != nil {
		h.logger.Error("failed to save session after status", "error", err, "call_sid", webhook.CallSid)
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck returns a simple health check response.
func (h *VoiceWebhookHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *VoiceWebhookHandler) renderTurn(ctx context.Context, session *intake.Session, turn intake.Turn) string {
	var tw telephony.TwiML
	if !turn.Terminal {
		opts := telephony.GatherOptions{
			Action: h.voicePath,
			Hints:  turn.Hints,
			Prompt: turn.Prompt,
		}
		if h.promptAudio != nil {
			if url, ok := h.promptAudio.PromptURL(ctx, turn.Prompt); ok {
				opts.AudioURL = url
			}
		}
		tw.Gather(opts)
		// Replay the prompt if the gather times out with no input.
		tw.Redirect(h.voicePath)
		return tw.Render()
	}

	tw.Say(turn.Prompt)
	if turn.Outcome == intake.OutcomeTransferred && h.transferNumber != "" {
		tw.Dial(h.transferNumber)
	} else {
		tw.Hangup()
	}
	return tw.Render()
}

func (h *VoiceWebhookHandler) publishSummary(ctx context.Context, session *intake.Session) {
	if h.publisher == nil {
		return
	}
	transcript, err := h.store.Transcript(ctx, session.CallID)
	if err != nil {
		h.logger.Warn("failed to load transcript for summary", "error", err, "call_sid", session.CallID)
	}
	if err := h.publisher.EnqueueSummary(ctx, session, transcript); err != nil {
		h.logger.Error("failed to enqueue intake summary", "error", err, "call_sid", session.CallID)
		return
	}
	session.SummarySent = true
}

func (h *VoiceWebhookHandler) appendTranscript(ctx context.Context, callSid, role, text string) {
	if text == "" {
		return
	}
	entry := intake.TranscriptEntry{Role: role, Text: text}
	if err := h.store.AppendTranscript(ctx, callSid, entry); err != nil {
		h.logger.Warn("failed to append transcript", "error", err, "call_sid", callSid)
	}
}

func turnResult(turn intake.Turn) string {
	switch {
	case turn.Terminal:
		return "terminal"
	case turn.Field != "":
		return "stored"
	default:
		return "reask"
	}
}

func isFinalCallStatus(status string) bool {
	switch status {
	case "completed", "busy", "failed", "no-answer", "canceled":
		return true
	}
	return false
}

func buildAbsoluteURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	if r.URL.Scheme != "" {
		return r.URL.String()
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "https"
		if r.TLS == nil {
			scheme = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return scheme + "://" + host + r.URL.RequestURI()
}
