package intake

import (
	"strings"
	"time"
)

// Step tags the conversation position explicitly rather than inferring it
// from which fields happen to be missing.
type Step string

const (
	StepName                   Step = "name"
	StepDOB                    Step = "dob"
	StepPhone                  Step = "phone"
	StepReason                 Step = "reason"
	StepPatientType            Step = "patient_type"
	StepProvider               Step = "provider"
	StepInsurance              Step = "insurance"
	StepMedicaidID             Step = "medicaid_id"
	StepMemberID               Step = "member_id"
	StepGroupID                Step = "group_id"
	StepSubscriberName         Step = "subscriber_name"
	StepSubscriberRelationship Step = "subscriber_relationship"
	StepSubscriberPhone        Step = "subscriber_phone"
	StepSubscriberDOB          Step = "subscriber_dob"
	StepSubscriberSex          Step = "subscriber_sex"
	StepDone                   Step = "done"
)

// Outcome records how a session ended.
type Outcome string

const (
	OutcomeTransferred       Outcome = "transferred"
	OutcomeMedicaidRecorded  Outcome = "medicaid_recorded"
	OutcomeInsuranceRecorded Outcome = "insurance_recorded"
	OutcomeCompleted         Outcome = "completed"
	OutcomeAbandoned         Outcome = "abandoned"
)

// Session tracks the state of one intake call. It is exclusively owned by
// that call; the engine mutates it in place, at most one field per turn.
type Session struct {
	// CallID is the telephony provider's call identifier (Twilio CallSid).
	CallID string `json:"call_id"`
	// CallerPhone is the patient's number in E.164, when known.
	CallerPhone string `json:"caller_phone,omitempty"`
	// ClinicPhone is the number that received the call.
	ClinicPhone string `json:"clinic_phone,omitempty"`
	// Collected holds every resolved field. Append-only: a field, once
	// set, is never overwritten for the remainder of the call, and blank
	// values are never stored.
	Collected map[Field]string `json:"collected"`
	// Step is the current conversation position.
	Step Step `json:"step"`
	// Terminal is true once the automated flow has ended.
	Terminal bool `json:"terminal"`
	// Outcome records how the call ended, once Terminal.
	Outcome Outcome `json:"outcome,omitempty"`
	// SummarySent guards against dispatching the intake summary twice.
	SummarySent bool `json:"summary_sent,omitempty"`
	// Turns counts inbound utterances processed.
	Turns int `json:"turns"`

	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// NewSession creates an empty session for a call.
func NewSession(callID string) *Session {
	now := time.Now().UTC()
	return &Session{
		CallID:         callID,
		Collected:      make(map[Field]string),
		Step:           StepName,
		StartedAt:      now,
		LastActivityAt: now,
	}
}

// Value returns the collected value for a field.
func (s *Session) Value(field Field) (string, bool) {
	v, ok := s.Collected[field]
	return v, ok
}

// set stores a value for a field. It reports false without mutating the
// session when the value is blank or the field was already collected.
func (s *Session) set(field Field, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if s.Collected == nil {
		s.Collected = make(map[Field]string)
	}
	if _, exists := s.Collected[field]; exists {
		return false
	}
	s.Collected[field] = value
	return true
}

// end marks the session terminal with the given outcome.
func (s *Session) end(outcome Outcome) {
	s.Terminal = true
	s.Outcome = outcome
	s.Step = StepDone
}
