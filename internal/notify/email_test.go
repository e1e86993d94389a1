package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(_ context.Context, input *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	mock := &mockSES{}
	sender := NewSESSender(mock, SESConfig{FromEmail: "noreply@clinic.example.com", FromName: "Front Desk"}, nil)
	require.NotNil(t, sender)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "staff@clinic.example.com",
		Subject: "Intake call summary: John Doe",
		Body:    "Full name: John Doe",
	})

	require.NoError(t, err)
	require.NotNil(t, mock.input)
	assert.Equal(t, "Front Desk <noreply@clinic.example.com>", aws.ToString(mock.input.FromEmailAddress))
	assert.Equal(t, []string{"staff@clinic.example.com"}, mock.input.Destination.ToAddresses)
	assert.Equal(t, "Intake call summary: John Doe", aws.ToString(mock.input.Content.Simple.Subject.Data))
	assert.Equal(t, "Full name: John Doe", aws.ToString(mock.input.Content.Simple.Body.Text.Data))
	assert.Nil(t, mock.input.Content.Simple.Body.Html)
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&mockSES{err: errors.New("throttled")}, SESConfig{FromEmail: "a@b.c"}, nil)

	err := sender.Send(context.Background(), EmailMessage{To: "x@y.z", Subject: "s", Body: "b"})
	assert.Error(t, err)
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}

type flakySender struct {
	err   error
	calls int
}

func (f *flakySender) Send(context.Context, EmailMessage) error {
	f.calls++
	return f.err
}

func TestFailoverSender_FallsBack(t *testing.T) {
	primary := &flakySender{err: errors.New("primary down")}
	secondary := &flakySender{}
	sender := NewFailoverSender(nil, primary, secondary)

	err := sender.Send(context.Background(), EmailMessage{To: "x@y.z"})

	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFailoverSender_AllFail(t *testing.T) {
	sender := NewFailoverSender(nil, &flakySender{err: errors.New("a")}, &flakySender{err: errors.New("b")})
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: "x@y.z"}))
}

func TestFailoverSender_SkipsNilSenders(t *testing.T) {
	ok := &flakySender{}
	sender := NewFailoverSender(nil, nil, ok)
	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: "x@y.z"}))
	assert.Equal(t, 1, ok.calls)
}

func TestNewSendGridSender_RequiresAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, nil))
}
