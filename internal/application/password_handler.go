package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/internal/domain/event"
	repo "github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/security"
)

// DeferredPasswordHandler completes registrations that arrived without a
// password by generating one in the background.
type DeferredPasswordHandler struct {
	Repo      repo.UserRepository
	Passwords PasswordService
	Length    int
	Logger    *logrus.Logger
}

// NewDeferredPasswordHandler builds the handler. Lengths below
// security.MinPasswordLength fall back to security.DefaultPasswordLength.
func NewDeferredPasswordHandler(repo repo.UserRepository, passwords PasswordService, length int, logger *logrus.Logger) *DeferredPasswordHandler {
	if length < security.MinPasswordLength {
		if length > 0 && logger != nil {
			logger.WithField("length", length).Warnf("generated password length below %d, using %d", security.MinPasswordLength, security.DefaultPasswordLength)
		}
		length = security.DefaultPasswordLength
	}
	return &DeferredPasswordHandler{Repo: repo, Passwords: passwords, Length: length, Logger: logger}
}

// HandleUserCreated is subscribed to event.TopicUserCreated. A user that has
// vanished, or already holds a password, is left alone.
func (h *DeferredPasswordHandler) HandleUserCreated(ctx context.Context, evt event.UserCreated) error {
	if evt.HasPassword {
		return nil
	}
	log := h.Logger.WithField("user_id", evt.UserID)
	log.Info("generating password for user")

	plain, err := h.Passwords.GenerateSecurePassword(h.Length)
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}
	hash, err := h.Passwords.HashPassword(plain)
	if err != nil {
		return fmt.Errorf("hash generated password: %w", err)
	}

	u, err := h.Repo.FindByID(ctx, evt.UserID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		log.Debug("user gone before password generation, skipping")
		return nil
	}
	if u.HasPassword() {
		log.Debug("user already has a password, skipping")
		return nil
	}

	if _, err := h.Repo.Update(ctx, u.WithPassword(hash)); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	passwordsGenerated.Add(1)
	log.Info("password generated and updated for user")
	return nil
}
