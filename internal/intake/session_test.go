package intake

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s := NewSession("CA123")

	assert.Equal(t, "CA123", s.CallID)
	assert.Equal(t, StepName, s.Step)
	assert.False(t, s.Terminal)
	assert.NotNil(t, s.Collected)
	assert.False(t, s.StartedAt.IsZero())
}

func TestSession_SetIsWriteOnce(t *testing.T) {
	s := NewSession("CA123")

	require.True(t, s.set(FieldName, "John Doe"))
	assert.False(t, s.set(FieldName, "Someone Else"))

	got, _ := s.Value(FieldName)
	assert.Equal(t, "John Doe", got)
}

func TestSession_SetRejectsBlank(t *testing.T) {
	s := NewSession("CA123")

	assert.False(t, s.set(FieldName, ""))
	assert.False(t, s.set(FieldName, "  \t "))
	assert.Empty(t, s.Collected)
}

func TestSession_SetTrimsWhitespace(t *testing.T) {
	s := NewSession("CA123")

	require.True(t, s.set(FieldPhone, "  555-123-4567  "))
	got, _ := s.Value(FieldPhone)
	assert.Equal(t, "555-123-4567", got)
}

func TestSession_End(t *testing.T) {
	s := NewSession("CA123")
	s.end(OutcomeTransferred)

	assert.True(t, s.Terminal)
	assert.Equal(t, OutcomeTransferred, s.Outcome)
	assert.Equal(t, StepDone, s.Step)
}

func TestSession_JSONRoundTrip(t *testing.T) {
	s := NewSession("CA123")
	s.set(FieldName, "John Doe")
	s.set(FieldInsurance, InsuranceMedicaid)
	s.Step = StepMedicaidID
	s.Turns = 7

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored Session
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, s.CallID, restored.CallID)
	assert.Equal(t, s.Step, restored.Step)
	assert.Equal(t, s.Turns, restored.Turns)
	assert.Equal(t, s.Collected, restored.Collected)
}
