// Package telephony handles the Twilio voice integration: webhook parsing
// and signature validation, phone number normalization, and TwiML rendering.
package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ValidateTwilioSignature validates that a request came from Twilio
func ValidateTwilioSignature(r *http.Request, authToken, webhookURL string) bool {
	signature := r.Header.Get("X-Twilio-Signature")
	if signature == "" {
		return false
	}

	if err := r.ParseForm(); err != nil {
		return false
	}

	payload := buildSignaturePayload(webhookURL, r.PostForm)
	expected := computeSignature(payload, authToken)

	return hmac.Equal([]byte(signature), []byte(expected))
}

// buildSignaturePayload creates the payload string for signature verification
func buildSignaturePayload(url string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// URL + sorted params, per Twilio's scheme
	var payload strings.Builder
	payload.WriteString(url)

	for _, key := range keys {
		for _, value := range params[key] {
			payload.WriteString(key)
			payload.WriteString(value)
		}
	}

	return payload.String()
}

// computeSignature computes the HMAC-SHA1 signature
func computeSignature(data, key string) string {
	h := hmac.New(sha1.New, []byte(key))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// VoiceWebhookRequest represents an incoming Twilio voice webhook
type VoiceWebhookRequest struct {
	CallSid      string
	AccountSid   string
	From         string
	To           string
	CallStatus   string
	Direction    string
	SpeechResult string
	Confidence   string
	Digits       string
	RecordingURL string
	CallDuration string
}

// Utterance returns what the caller said this turn: the speech recognizer
// result when present, otherwise any DTMF digits entered.
func (r *VoiceWebhookRequest) Utterance() string {
	if s := strings.TrimSpace(r.SpeechResult); s != "" {
		return s
	}
	return strings.TrimSpace(r.Digits)
}

// ParseVoiceWebhook parses a Twilio voice webhook request
func ParseVoiceWebhook(r *http.Request) (*VoiceWebhookRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("telephony: parse form: %w", err)
	}

	req := &VoiceWebhookRequest{
		CallSid:      r.FormValue("CallSid"),
		AccountSid:   r.FormValue("AccountSid"),
		From:         r.FormValue("From"),
		To:           r.FormValue("To"),
		CallStatus:   r.FormValue("CallStatus"),
		Direction:    r.FormValue("Direction"),
		SpeechResult: r.FormValue("SpeechResult"),
		Confidence:   r.FormValue("Confidence"),
		Digits:       r.FormValue("Digits"),
		RecordingURL: r.FormValue("RecordingUrl"),
		CallDuration: r.FormValue("CallDuration"),
	}
	if req.CallSid == "" {
		return nil, fmt.Errorf("telephony: webhook missing CallSid")
	}

	return req, nil
}
