package services

import (
	"context"
	"errors"
	"testing"

	"speakerhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return nil
}

type fakeRenderer struct {
	err          error
	templateName string
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	f.templateName = templateName
	d := data.(*domain.WelcomeMessageEmailData)
	return "Welcome " + d.Name, "<p>Hi " + d.Name + "</p>", "Hi " + d.Name, nil
}

func TestEmailService_SendWelcomeMessage(t *testing.T) {
	ctx := context.Background()
	data := &domain.WelcomeMessageEmailData{Email: "ada@example.com", Name: "Ada"}

	t.Run("renders and sends", func(t *testing.T) {
		mailer, renderer := &fakeMailer{}, &fakeRenderer{}
		svc := NewEmailService(mailer, renderer, discardLogger())

		require.NoError(t, svc.SendWelcomeMessage(ctx, data))
		assert.Equal(t, "welcome", renderer.templateName)
		assert.Equal(t, "ada@example.com", mailer.to)
		assert.Equal(t, "Welcome Ada", mailer.subject)
		assert.Equal(t, "Hi Ada", mailer.text)
	})

	t.Run("render failure", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{err: errors.New("bad template")}, discardLogger())
		require.Error(t, svc.SendWelcomeMessage(ctx, data))
	})

	t.Run("send failure", func(t *testing.T) {
		sendErr := errors.New("ses throttled")
		svc := NewEmailService(&fakeMailer{err: sendErr}, &fakeRenderer{}, discardLogger())
		require.ErrorIs(t, svc.SendWelcomeMessage(ctx, data), sendErr)
	})

	t.Run("nil data", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, discardLogger())
		require.Error(t, svc.SendWelcomeMessage(ctx, nil))
	})
}
