package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSESMailer_Send(t *testing.T) {
	tests := []struct {
		name       string
		fromName   string
		html       string
		text       string
		wantSource string
	}{
		{name: "html and text", fromName: "Speaker Hub", html: "<p>hi</p>", text: "hi", wantSource: "Speaker Hub <noreply@example.com>"},
		{name: "text only without from name", text: "hi", wantSource: "noreply@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeSES{}
			m := newSESMailer(client, "noreply@example.com", tt.fromName, discardLogger())

			require.NoError(t, m.Send(context.Background(), "ada@example.com", "Welcome", tt.html, tt.text))
			require.NotNil(t, client.input)
			assert.Equal(t, tt.wantSource, aws.ToString(client.input.Source))
			assert.Equal(t, []string{"ada@example.com"}, client.input.Destination.ToAddresses)
			assert.Equal(t, "Welcome", aws.ToString(client.input.Message.Subject.Data))
			if tt.html == "" {
				assert.Nil(t, client.input.Message.Body.Html)
			} else {
				assert.Equal(t, tt.html, aws.ToString(client.input.Message.Body.Html.Data))
			}
			assert.Equal(t, tt.text, aws.ToString(client.input.Message.Body.Text.Data))
		})
	}
}

func TestSESMailer_SendError(t *testing.T) {
	boom := errors.New("throttled")
	m := newSESMailer(&fakeSES{err: boom}, "noreply@example.com", "", discardLogger())

	err := m.Send(context.Background(), "ada@example.com", "Welcome", "", "hi")
	require.ErrorIs(t, err, boom)
}

func TestNewMailer(t *testing.T) {
	tests := []struct {
		name    string
		config  MailerConfig
		wantSES bool
		wantErr bool
	}{
		{name: "noop", config: MailerConfig{Provider: "noop"}},
		{name: "empty provider", config: MailerConfig{}},
		{name: "unknown provider", config: MailerConfig{Provider: "smtp"}},
		{name: "ses", config: MailerConfig{Provider: "ses", FromAddress: "noreply@example.com", SES: SESConfig{Region: "eu-west-1"}}, wantSES: true},
		{name: "ses without sender", config: MailerConfig{Provider: "ses"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMailer(tt.config, discardLogger())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, isSES := m.(*sesMailer)
			assert.Equal(t, tt.wantSES, isSES)
			if !isSES {
				assert.NoError(t, m.Send(context.Background(), "a@example.com", "s", "h", "t"))
			}
		})
	}
}
