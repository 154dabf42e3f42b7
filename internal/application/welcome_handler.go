package application

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-user-registration/internal/domain/event"
	"github.com/oksasatya/go-user-registration/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-registration/pkg/mailer/templates"
)

// WelcomeEmailHandler enqueues a welcome email for every created user.
// The email never carries a password.
type WelcomeEmailHandler struct {
	Pub  JobPublisher
	Opts []mailtpl.Option
}

func NewWelcomeEmailHandler(pub JobPublisher, opts ...mailtpl.Option) *WelcomeEmailHandler {
	return &WelcomeEmailHandler{Pub: pub, Opts: opts}
}

func (h *WelcomeEmailHandler) HandleUserCreated(ctx context.Context, evt event.UserCreated) error {
	opts := append([]mailtpl.Option{mailtpl.WithPasswordPending(!evt.HasPassword)}, h.Opts...)
	job := mailer.EmailJob{
		To:       evt.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.ToMap(mailtpl.NewWelcomeData(evt.Username, evt.Email, opts...)),
	}
	if err := h.Pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("enqueue welcome email: %w", err)
	}
	return nil
}
