package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	domerrors "github.com/oksasatya/go-user-registration/internal/domain/errors"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/event"
	repo "github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/security"
)

type UserService struct {
	Repo      repo.UserRepository
	Passwords PasswordService
	IDs       IDGenerator
	Events    EventPublisher
	Logger    *logrus.Logger
}

func NewUserService(repo repo.UserRepository, passwords PasswordService, ids IDGenerator, events EventPublisher, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:      repo,
		Passwords: passwords,
		IDs:       ids,
		Events:    events,
		Logger:    logger,
	}
}

type CreateUserInput struct {
	Username string
	Email    string
	// Password is plaintext and optional; empty means none supplied.
	Password string
}

// CreateUserResponse is the public projection of a created user. It never
// carries the password or its hash.
type CreateUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateUser registers a user. It returns *domerrors.AlreadyExistsError when the
// email is taken and *domerrors.InvalidCredentialError when a supplied password
// is too weak; any other error comes from the store or id generator.
//
// The email check is not transactional: concurrent registrations with the same
// email can both pass it.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*CreateUserResponse, error) {
	existing, err := s.Repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, &domerrors.AlreadyExistsError{Field: "email", Value: in.Email}
	}

	id, err := s.IDs.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	hasProvidedPassword := in.Password != ""
	var hash string
	if hasProvidedPassword {
		if !s.Passwords.ValidateStrength(in.Password) {
			return nil, &domerrors.InvalidCredentialError{Reason: security.PolicyDescription}
		}
		hash, err = s.Passwords.HashPassword(in.Password)
		if domerrors.IsDomainError(err) {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	saved, err := s.Repo.Save(ctx, entity.NewUser(id, in.Username, in.Email, hash))
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	usersCreated.Add(1)

	evt := event.NewUserCreated(saved.ID, saved.Username, saved.Email, hasProvidedPassword)
	if err := s.Events.Publish(ctx, event.TopicUserCreated, evt); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", saved.ID).Warn("publish user created event failed")
	}

	return &CreateUserResponse{ID: saved.ID, Username: saved.Username, Email: saved.Email}, nil
}
