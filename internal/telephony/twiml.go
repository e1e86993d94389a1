package telephony

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const twimlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// TwiMLContentType is the Content-Type Twilio expects on webhook replies.
const TwiMLContentType = "application/xml"

// GatherOptions configures a <Gather> verb collecting the caller's next
// utterance.
type GatherOptions struct {
	// Action is the webhook URL Twilio posts the result to.
	Action string
	// Hints biases the speech recognizer toward the expected answers.
	// Twilio caps the hints attribute at 500 characters.
	Hints []string
	// SpeechTimeout in seconds; "auto" when zero.
	SpeechTimeout int
	// AudioURL, when set, is played inside the gather instead of speaking
	// Prompt with <Say>.
	AudioURL string
	// Prompt is spoken inside the gather when AudioURL is empty.
	Prompt string
	// Voice for <Say>; empty uses defaultVoice.
	Voice string
}

const defaultVoice = "Polly.Joanna"

// TwiML accumulates response verbs in order and renders the XML document.
// The zero value is ready to use.
type TwiML struct {
	verbs []string
}

// Say appends a <Say> verb.
func (t *TwiML) Say(text string) *TwiML {
	return t.SayVoice(text, defaultVoice)
}

// SayVoice appends a <Say> verb with an explicit voice.
func (t *TwiML) SayVoice(text, voice string) *TwiML {
	if voice == "" {
		voice = defaultVoice
	}
	t.verbs = append(t.verbs, fmt.Sprintf(`<Say voice=%q>%s</Say>`, voice, escapeXML(text)))
	return t
}

// Play appends a <Play> verb for a pre-rendered audio URL.
func (t *TwiML) Play(audioURL string) *TwiML {
	t.verbs = append(t.verbs, fmt.Sprintf(`<Play>%s</Play>`, escapeXML(audioURL)))
	return t
}

// Gather appends a <Gather> accepting both speech and DTMF input. The
// prompt nests inside the gather so the caller can barge in.
func (t *TwiML) Gather(opts GatherOptions) *TwiML {
	var b strings.Builder
	b.WriteString(`<Gather input="speech dtmf" action="`)
	b.WriteString(escapeXML(opts.Action))
	b.WriteString(`" method="POST"`)
	if len(opts.Hints) > 0 {
		b.WriteString(` hints="`)
		b.WriteString(escapeXML(strings.Join(opts.Hints, ", ")))
		b.WriteString(`"`)
	}
	if opts.SpeechTimeout > 0 {
		fmt.Fprintf(&b, ` speechTimeout="%d"`, opts.SpeechTimeout)
	} else {
		b.WriteString(` speechTimeout="auto"`)
	}
	b.WriteString(`>`)
	if opts.AudioURL != "" {
		fmt.Fprintf(&b, `<Play>%s</Play>`, escapeXML(opts.AudioURL))
	} else if opts.Prompt != "" {
		voice := opts.Voice
		if voice == "" {
			voice = defaultVoice
		}
		fmt.Fprintf(&b, `<Say voice=%q>%s</Say>`, voice, escapeXML(opts.Prompt))
	}
	b.WriteString(`</Gather>`)
	t.verbs = append(t.verbs, b.String())
	return t
}

// Dial appends a <Dial> verb transferring the call to another number.
func (t *TwiML) Dial(number string) *TwiML {
	t.verbs = append(t.verbs, fmt.Sprintf(`<Dial>%s</Dial>`, escapeXML(number)))
	return t
}

// Redirect appends a <Redirect> verb. Used after an unanswered gather so
// the current prompt replays instead of the call dropping.
func (t *TwiML) Redirect(url string) *TwiML {
	t.verbs = append(t.verbs, fmt.Sprintf(`<Redirect method="POST">%s</Redirect>`, escapeXML(url)))
	return t
}

// Hangup appends a <Hangup> verb.
func (t *TwiML) Hangup() *TwiML {
	t.verbs = append(t.verbs, `<Hangup/>`)
	return t
}

// Render returns the complete TwiML document.
func (t *TwiML) Render() string {
	return twimlHeader + `<Response>` + strings.Join(t.verbs, "") + `</Response>`
}

func escapeXML(s string) string {
	var b strings.Builder
	// EscapeText only fails on a failing writer; strings.Builder never does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
