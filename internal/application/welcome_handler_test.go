package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registration/internal/application"
	"github.com/oksasatya/go-user-registration/internal/domain/event"
	"github.com/oksasatya/go-user-registration/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-registration/pkg/mailer/templates"
)

func TestWelcomeEmailHandler_EnqueuesJob(t *testing.T) {
	pub := &recordingPublisher{}
	h := application.NewWelcomeEmailHandler(pub, mailtpl.WithAppName("Registry"))

	err := h.HandleUserCreated(context.Background(), event.NewUserCreated("id-1", "bob_02", "bob@example.com", false))
	require.NoError(t, err)

	jobs := pub.all()
	require.Len(t, jobs, 1)
	job, ok := jobs[0].payload.(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "bob@example.com", job.To)
	assert.Equal(t, mailtpl.Welcome, job.Template)
	assert.Equal(t, "bob_02", job.Data["Username"])
	assert.Equal(t, "Registry", job.Data["AppName"])
	assert.Equal(t, true, job.Data["PasswordPending"])
	assert.NotContains(t, job.Data, "Password")
}

func TestWelcomeEmailHandler_PublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("amqp down")}
	h := application.NewWelcomeEmailHandler(pub)

	err := h.HandleUserCreated(context.Background(), event.NewUserCreated("id-1", "a_b", "a@example.com", true))
	assert.ErrorIs(t, err, pub.err)
}
