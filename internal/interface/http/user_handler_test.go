package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userapp "github.com/oksasatya/go-user-registration/internal/application"
	"github.com/oksasatya/go-user-registration/internal/domain/event"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/eventbus"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/idgen"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/security"
	handlers "github.com/oksasatya/go-user-registration/internal/interface/http"
	"github.com/oksasatya/go-user-registration/internal/interface/middleware"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type eventLog struct {
	mu     sync.Mutex
	events []event.UserCreated
}

func (l *eventLog) record(_ context.Context, evt event.UserCreated) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
	return nil
}

func (l *eventLog) snapshot() []event.UserCreated {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]event.UserCreated(nil), l.events...)
}

type app struct {
	router    *gin.Engine
	repo      *memory.UserRepository
	passwords *security.PasswordService
	events    *eventLog
}

// newApp wires the registration route the way cmd/main.go does, on the
// in-memory store and a real bus.
func newApp(t *testing.T) *app {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := memory.NewUserRepository()
	passwords := security.NewPasswordService(bcrypt.MinCost)
	bus := eventbus.New(logger, 16)
	t.Cleanup(func() { _ = bus.Close() })

	deferred := userapp.NewDeferredPasswordHandler(repo, passwords, 0, logger)
	require.NoError(t, bus.Subscribe(event.TopicUserCreated, "deferred-password", eventbus.Handle(deferred.HandleUserCreated)))
	log := &eventLog{}
	require.NoError(t, bus.Subscribe(event.TopicUserCreated, "event-log", eventbus.Handle(log.record)))

	svc := userapp.NewUserService(repo, passwords, idgen.NewUUIDGenerator(), bus, logger)
	h := handlers.NewUserHandler(svc, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.POST("/api/v1/users", h.Create)
	return &app{router: r, repo: repo, passwords: passwords, events: log}
}

func (a *app) register(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

func TestCreate_WithPassword(t *testing.T) {
	a := newApp(t)

	w, body := a.register(t, `{"username":"alice01","email":"alice@example.com","password":"Str0ng!Pass"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "alice01", body["username"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotContains(t, body, "password")
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	u, err := a.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEmpty(t, u.Password)
	assert.NotEqual(t, "Str0ng!Pass", u.Password)
	assert.True(t, a.passwords.ComparePassword("Str0ng!Pass", u.Password))

	require.Eventually(t, func() bool { return len(a.events.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, a.events.snapshot()[0].HasPassword)
}

func TestCreate_WithoutPasswordGetsOneGenerated(t *testing.T) {
	a := newApp(t)

	w, body := a.register(t, `{"username":"bob_02","email":"bob@example.com"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "bob_02", body["username"])
	assert.Equal(t, "bob@example.com", body["email"])
	id := body["id"].(string)

	require.Eventually(t, func() bool { return len(a.events.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	evt := a.events.snapshot()[0]
	assert.Equal(t, id, evt.UserID)
	assert.False(t, evt.HasPassword)

	require.Eventually(t, func() bool {
		u, err := a.repo.FindByID(context.Background(), id)
		return err == nil && u != nil && u.HasPassword()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	a := newApp(t)

	w, _ := a.register(t, `{"username":"carol","email":"carol@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := a.register(t, `{"username":"carol_2","email":"carol@example.com","password":"Str0ng!Pass"}`)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 409, body["statusCode"])
	assert.Equal(t, "Conflict", body["error"])
	assert.Equal(t, "User with email 'carol@example.com' already exists", body["message"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, 1, a.repo.Len())
}

func TestCreate_WeakPassword(t *testing.T) {
	a := newApp(t)

	w, body := a.register(t, `{"username":"dave","email":"dave@example.com","password":"weak"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 400, body["statusCode"])
	assert.Equal(t, "Bad Request", body["error"])
	assert.Equal(t, "Invalid password: "+security.PolicyDescription, body["message"])
	assert.Equal(t, 0, a.repo.Len())
}

func TestCreate_PasswordOverBcryptLimit(t *testing.T) {
	a := newApp(t)
	// 72 characters, 73 bytes: passes binding, rejected by bcrypt
	long := "Aa1!é" + strings.Repeat("x", 67)

	w, body := a.register(t, `{"username":"gina","email":"gina@example.com","password":"`+long+`"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid argument: password must be at most 72 bytes", body["message"])
	assert.Equal(t, 0, a.repo.Len())
}

func TestCreate_ValidationErrors(t *testing.T) {
	a := newApp(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing username", `{"email":"e@example.com"}`, "username"},
		{"short username", `{"username":"ab","email":"e@example.com"}`, "username"},
		{"bad username chars", `{"username":"ab-cd","email":"e@example.com"}`, "username"},
		{"bad email", `{"username":"erin","email":"nope"}`, "email"},
		{"malformed json", `{"username":`, "payload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := a.register(t, tc.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Bad Request", body["error"])
			details, ok := body["details"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, details, tc.field)
		})
	}
	assert.Equal(t, 0, a.repo.Len())
}

type failingCreator struct{ err error }

func (f failingCreator) CreateUser(context.Context, userapp.CreateUserInput) (*userapp.CreateUserResponse, error) {
	return nil, f.err
}

func TestCreate_InfrastructureErrorIsHidden(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := handlers.NewUserHandler(failingCreator{err: errors.New("save user: connection refused")}, logger)
	r := gin.New()
	r.POST("/api/v1/users", h.Create)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString(`{"username":"frank","email":"frank@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), `"message":"internal server error"`)
}
