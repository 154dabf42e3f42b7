package repository

import (
	"context"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
)

// UserRepository defines the durable storage for users.
// Lookups return (nil, nil) when no user matches.
type UserRepository interface {
	Save(ctx context.Context, u entity.User) (entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u entity.User) (entity.User, error)
}
