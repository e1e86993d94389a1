package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-intake-platform/pkg/logging"
)

// OptionMatcher resolves an utterance against a closed option set with
// higher precision than the local keyword/fuzzy matcher. Implementations
// must return ok=false on any failure; the engine then falls back to local
// matching. A nil matcher is a valid configuration.
type OptionMatcher interface {
	Match(ctx context.Context, utterance string, options []string) (string, bool)
}

// Turn is the engine's reply for one inbound utterance.
type Turn struct {
	// Prompt is the text to speak to the caller.
	Prompt string
	// Hints bias the next speech-recognition pass toward the expected
	// answers. Empty for free-text steps.
	Hints []string
	// Terminal is true when the automated flow has ended; the transport
	// should hang up or transfer after playing Prompt.
	Terminal bool
	// Field names the field stored this turn, if any.
	Field Field
	// Outcome is set on terminal turns.
	Outcome Outcome
}

const defaultMatchTimeout = 2 * time.Second

// Engine advances intake sessions. It is stateless across calls: all
// per-call state lives in the Session passed to Advance, so a single Engine
// serves concurrent calls safely.
type Engine struct {
	provider1    string
	provider2    string
	matcher      OptionMatcher
	matchTimeout time.Duration
	logger       *logging.Logger
}

// EngineOption customizes engine behavior.
type EngineOption func(*Engine)

// WithMatcher injects an optional high-precision option matcher. Matcher
// calls are bounded by timeout; zero means the default.
func WithMatcher(m OptionMatcher, timeout time.Duration) EngineOption {
	return func(e *Engine) {
		e.matcher = m
		if timeout > 0 {
			e.matchTimeout = timeout
		}
	}
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(logger *logging.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine with the two configured provider display
// names, used verbatim in prompts and as match candidates.
func NewEngine(provider1, provider2 string, opts ...EngineOption) *Engine {
	e := &Engine{
		provider1:    provider1,
		provider2:    provider2,
		matchTimeout: defaultMatchTimeout,
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Greeting returns the opening turn for a freshly answered call.
func (e *Engine) Greeting() Turn {
	return Turn{Prompt: promptName}
}

// Advance processes one caller utterance: it resolves the utterance for the
// session's current step, stores at most one field, and returns the next
// prompt. It never returns an error and never panics; malformed input at a
// closed step simply re-asks the question, and a terminal session keeps
// returning a well-formed closing turn.
func (e *Engine) Advance(ctx context.Context, s *Session, utterance string) Turn {
	if s == nil {
		return Turn{Prompt: promptSaved, Terminal: true, Outcome: OutcomeCompleted}
	}
	if s.Collected == nil {
		s.Collected = make(map[Field]string)
	}
	if s.Step == "" {
		s.Step = StepName
	}
	s.Turns++
	s.LastActivityAt = time.Now().UTC()

	if s.Terminal {
		return Turn{Prompt: promptSaved, Terminal: true, Outcome: s.Outcome}
	}

	utterance = strings.TrimSpace(utterance)

	switch s.Step {
	case StepName:
		return e.collectFreeText(s, FieldName, utterance, StepDOB)
	case StepDOB:
		return e.collectFreeText(s, FieldDOB, utterance, StepPhone)
	case StepPhone:
		return e.collectFreeText(s, FieldPhone, utterance, StepReason)
	case StepReason:
		return e.resolveReason(ctx, s, utterance)
	case StepPatientType:
		return e.resolvePatientType(ctx, s, utterance)
	case StepProvider:
		return e.resolveProvider(ctx, s, utterance)
	case StepInsurance:
		return e.resolveInsurance(ctx, s, utterance)
	case StepMedicaidID:
		if utterance == "" {
			return e.ask(s.Step)
		}
		s.set(FieldMedicaidID, utterance)
		s.end(OutcomeMedicaidRecorded)
		return Turn{Prompt: promptMedicaidDone, Terminal: true, Field: FieldMedicaidID, Outcome: OutcomeMedicaidRecorded}
	case StepMemberID, StepGroupID, StepSubscriberName, StepSubscriberRelationship,
		StepSubscriberPhone, StepSubscriberDOB, StepSubscriberSex:
		return e.collectCommercial(s, utterance)
	default:
		s.end(OutcomeCompleted)
		return Turn{Prompt: promptSaved, Terminal: true, Outcome: OutcomeCompleted}
	}
}

// collectFreeText stores a verbatim utterance and moves to the next step.
// Blank input re-asks the current question; nothing is stored.
func (e *Engine) collectFreeText(s *Session, field Field, utterance string, next Step) Turn {
	if utterance == "" {
		return e.ask(s.Step)
	}
	s.set(field, utterance)
	s.Step = next
	turn := e.ask(next)
	turn.Field = field
	return turn
}

func (e *Engine) resolveReason(ctx context.Context, s *Session, utterance string) Turn {
	reason, ok := e.resolveOption(ctx, utterance, reasonOptions())
	if !ok {
		return e.ask(StepReason)
	}
	s.set(FieldReason, reason)

	if reason == ReasonReferral || reason == ReasonNurse {
		s.end(OutcomeTransferred)
		return Turn{
			Prompt:   fmt.Sprintf(promptTransfer, strings.ToLower(reason)),
			Terminal: true,
			Field:    FieldReason,
			Outcome:  OutcomeTransferred,
		}
	}

	s.Step = StepPatientType
	turn := e.ask(StepPatientType)
	turn.Field = FieldReason
	return turn
}

func (e *Engine) resolvePatientType(ctx context.Context, s *Session, utterance string) Turn {
	patientType, ok := e.resolveOption(ctx, utterance, patientTypeOptions())
	if !ok {
		return e.ask(StepPatientType)
	}
	s.set(FieldPatientType, patientType)
	s.Step = StepProvider
	turn := e.ask(StepProvider)
	turn.Field = FieldPatientType
	return turn
}

func (e *Engine) resolveProvider(ctx context.Context, s *Session, utterance string) Turn {
	provider, ok := e.resolveOption(ctx, utterance, []string{e.provider1, e.provider2})
	if !ok {
		return Turn{Prompt: promptProviderReask}
	}
	s.set(FieldProvider, provider)
	s.Step = StepInsurance
	turn := e.ask(StepInsurance)
	turn.Field = FieldProvider
	return turn
}

func (e *Engine) resolveInsurance(ctx context.Context, s *Session, utterance string) Turn {
	insurance, ok := e.resolveOption(ctx, utterance, insuranceOptions())
	if !ok {
		return Turn{Prompt: promptInsuranceReask, Hints: insuranceOptions()}
	}
	s.set(FieldInsurance, insurance)

	if insurance == InsuranceMedicaid {
		s.Step = StepMedicaidID
		return Turn{Prompt: promptMedicaidID, Field: FieldInsurance}
	}
	s.Step = StepMemberID
	return Turn{Prompt: promptMemberID, Field: FieldInsurance}
}

// collectCommercial walks the fixed seven-field Commercial sequence, storing
// one field per turn in declared order.
func (e *Engine) collectCommercial(s *Session, utterance string) Turn {
	if utterance == "" {
		return e.ask(s.Step)
	}
	for i, field := range commercialFields {
		if _, done := s.Collected[field]; done {
			continue
		}
		s.set(field, utterance)
		if i+1 < len(commercialFields) {
			next := commercialFields[i+1]
			s.Step = Step(next)
			return Turn{Prompt: commercialPrompts[next], Field: field}
		}
		s.end(OutcomeInsuranceRecorded)
		return Turn{Prompt: promptInsuranceDone, Terminal: true, Field: field, Outcome: OutcomeInsuranceRecorded}
	}
	// Every commercial field already present.
	s.end(OutcomeInsuranceRecorded)
	return Turn{Prompt: promptInsuranceDone, Terminal: true, Outcome: OutcomeInsuranceRecorded}
}

// ask returns the question (and hints) for a step, used both to advance and
// to re-ask after a no-match or blank utterance.
func (e *Engine) ask(step Step) Turn {
	switch step {
	case StepName:
		return Turn{Prompt: promptName}
	case StepDOB:
		return Turn{Prompt: promptDOB}
	case StepPhone:
		return Turn{Prompt: promptPhone}
	case StepReason:
		return Turn{Prompt: promptReason, Hints: reasonOptions()}
	case StepPatientType:
		return Turn{Prompt: promptPatientType, Hints: patientTypeOptions()}
	case StepProvider:
		return Turn{Prompt: fmt.Sprintf("Which provider would you like to see? %s or %s?", e.provider1, e.provider2)}
	case StepInsurance:
		return Turn{Prompt: promptInsurance, Hints: insuranceOptions()}
	case StepMedicaidID:
		return Turn{Prompt: promptMedicaidID}
	case StepMemberID, StepGroupID, StepSubscriberName, StepSubscriberRelationship,
		StepSubscriberPhone, StepSubscriberDOB, StepSubscriberSex:
		return Turn{Prompt: commercialPrompts[Field(step)]}
	default:
		return Turn{Prompt: promptSaved, Terminal: true, Outcome: OutcomeCompleted}
	}
}

// resolveOption tries the injected matcher first, then the local
// keyword/fuzzy matcher. Matcher failures and timeouts degrade silently to
// the local path; a matcher result is accepted only when it equals one of
// the candidates verbatim.
func (e *Engine) resolveOption(ctx context.Context, utterance string, options []string) (string, bool) {
	if e.matcher != nil && utterance != "" {
		matchCtx, cancel := context.WithTimeout(ctx, e.matchTimeout)
		matched, ok := e.safeMatch(matchCtx, utterance, options)
		cancel()
		if ok {
			for _, option := range options {
				if matched == option {
					return option, true
				}
			}
			e.logger.Debug("matcher returned non-candidate text, falling back", "matched", matched)
		}
	}
	return MatchOption(utterance, options)
}

// safeMatch shields Advance from a misbehaving matcher implementation.
func (e *Engine) safeMatch(ctx context.Context, utterance string, options []string) (matched string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("option matcher panicked", "panic", fmt.Sprint(r))
			matched, ok = "", false
		}
	}()
	return e.matcher.Match(ctx, utterance, options)
}
