package application_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/security"
)

// spyRepo wraps the memory repository and counts writes.
type spyRepo struct {
	*memory.UserRepository

	mu      sync.Mutex
	saves   int
	updates int

	findErr   error
	saveErr   error
	updateErr error
}

func newSpyRepo() *spyRepo {
	return &spyRepo{UserRepository: memory.NewUserRepository()}
}

func (r *spyRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.UserRepository.FindByEmail(ctx, email)
}

func (r *spyRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.UserRepository.FindByID(ctx, id)
}

func (r *spyRepo) Save(ctx context.Context, u entity.User) (entity.User, error) {
	r.mu.Lock()
	r.saves++
	r.mu.Unlock()
	if r.saveErr != nil {
		return entity.User{}, r.saveErr
	}
	return r.UserRepository.Save(ctx, u)
}

func (r *spyRepo) Update(ctx context.Context, u entity.User) (entity.User, error) {
	r.mu.Lock()
	r.updates++
	r.mu.Unlock()
	if r.updateErr != nil {
		return entity.User{}, r.updateErr
	}
	return r.UserRepository.Update(ctx, u)
}

func (r *spyRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves + r.updates
}

type published struct {
	topic   string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, payload: payload})
	return p.err
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, body any) error {
	return p.Publish(ctx, "", body)
}

func (p *recordingPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

type sequenceIDs struct {
	ids []string
	err error
}

func (g *sequenceIDs) Generate() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if len(g.ids) == 0 {
		return "", errors.New("out of ids")
	}
	id := g.ids[0]
	g.ids = g.ids[1:]
	return id, nil
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestPasswords() *security.PasswordService {
	// Use min cost for fast tests.
	return security.NewPasswordService(bcrypt.MinCost)
}

func mustFind(t *testing.T, repo *spyRepo, id string) entity.User {
	t.Helper()
	u, err := repo.UserRepository.FindByID(context.Background(), id)
	if err != nil || u == nil {
		t.Fatalf("FindByID(%s): %v %v", id, u, err)
	}
	return *u
}
