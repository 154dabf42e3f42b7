package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
)

var (
	ErrDuplicateID  = errors.New("memory: duplicate user id")
	ErrUserNotFound = errors.New("memory: user not found")
)

// UserRepository keeps users in process memory. Used by tests and STORE_DRIVER=memory.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]entity.User)}
}

func (r *UserRepository) Save(_ context.Context, u entity.User) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return entity.User{}, ErrDuplicateID
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) Update(_ context.Context, u entity.User) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return entity.User{}, ErrUserNotFound
	}
	r.users[u.ID] = u
	return u, nil
}

// Len reports the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

var _ repository.UserRepository = (*UserRepository)(nil)
