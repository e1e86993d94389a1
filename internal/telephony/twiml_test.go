package telephony

import (
	"strings"
	"testing"
)

func TestTwiML_GatherWithHints(t *testing.T) {
	var tw TwiML
	tw.Gather(GatherOptions{
		Action: "/webhooks/twilio/voice",
		Hints:  []string{"Medicaid", "Commercial"},
		Prompt: "What is your insurance?",
	})
	got := tw.Render()

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<Response>`,
		`input="speech dtmf"`,
		`action="/webhooks/twilio/voice"`,
		`hints="Medicaid, Commercial"`,
		`speechTimeout="auto"`,
		`<Say voice="Polly.Joanna">What is your insurance?</Say>`,
		`</Response>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered TwiML missing %q:\n%s", want, got)
		}
	}
}

func TestTwiML_GatherWithoutHintsOmitsAttribute(t *testing.T) {
	var tw TwiML
	tw.Gather(GatherOptions{Action: "/hook", Prompt: "What is your full name?"})
	if strings.Contains(tw.Render(), "hints=") {
		t.Error("hints attribute should be absent for free-text prompts")
	}
}

func TestTwiML_GatherPrefersAudioURL(t *testing.T) {
	var tw TwiML
	tw.Gather(GatherOptions{
		Action:   "/hook",
		AudioURL: "https://bucket.s3.amazonaws.com/prompts/name.mp3",
		Prompt:   "spoken fallback",
	})
	got := tw.Render()
	if !strings.Contains(got, `<Play>https://bucket.s3.amazonaws.com/prompts/name.mp3</Play>`) {
		t.Errorf("expected Play verb, got:\n%s", got)
	}
	if strings.Contains(got, "<Say") {
		t.Error("Say should be omitted when audio URL is set")
	}
}

func TestTwiML_SayThenHangup(t *testing.T) {
	var tw TwiML
	tw.Say("Goodbye.").Hangup()
	got := tw.Render()

	want := `<Say voice="Polly.Joanna">Goodbye.</Say><Hangup/>`
	if !strings.Contains(got, want) {
		t.Errorf("got:\n%s\nwant substring:\n%s", got, want)
	}
}

func TestTwiML_Dial(t *testing.T) {
	var tw TwiML
	tw.Say("Transferring you now.").Dial("+15559990000")
	if !strings.Contains(tw.Render(), `<Dial>+15559990000</Dial>`) {
		t.Errorf("missing Dial verb:\n%s", tw.Render())
	}
}

func TestTwiML_EscapesContent(t *testing.T) {
	var tw TwiML
	tw.Say(`Press "1" for <tones> & more`)
	got := tw.Render()
	if strings.Contains(got, "<tones>") {
		t.Errorf("unescaped angle brackets in:\n%s", got)
	}
	if !strings.Contains(got, "&amp;") {
		t.Errorf("ampersand not escaped in:\n%s", got)
	}
}

func TestTwiML_Redirect(t *testing.T) {
	var tw TwiML
	tw.Redirect("/webhooks/twilio/voice")
	if !strings.Contains(tw.Render(), `<Redirect method="POST">/webhooks/twilio/voice</Redirect>`) {
		t.Errorf("missing Redirect verb:\n%s", tw.Render())
	}
}
