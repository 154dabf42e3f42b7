package main

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-user-registration/config"
	"github.com/oksasatya/go-user-registration/internal/application"
	"github.com/oksasatya/go-user-registration/internal/container"
)

func seedConfig() *config.Config {
	return &config.Config{StoreDriver: config.StoreMemory, BcryptCost: bcrypt.MinCost, EventBufferSize: 8}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newMemoryContainer(t *testing.T) *container.Container {
	t.Helper()
	c, err := container.New(context.Background(), seedConfig(), quietLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestRun_WaitsForGeneratedPassword(t *testing.T) {
	err := run(seedConfig(), quietLogger(), application.CreateUserInput{Username: "demo_user", Email: "demo@example.com"})
	assert.NoError(t, err)
}

func TestRun_ReturnsErrorsInsteadOfExiting(t *testing.T) {
	cfg := seedConfig()
	cfg.StoreDriver = "mongo"

	err := run(cfg, quietLogger(), application.CreateUserInput{Username: "demo_user", Email: "demo@example.com"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "initialise application")

	err = run(seedConfig(), quietLogger(), application.CreateUserInput{Username: "demo_user", Email: "demo@example.com", Password: "weak"})
	assert.ErrorContains(t, err, "create user")
}

func TestWaitForPassword_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newMemoryContainer(t)

	err := waitForPassword(ctx, c, "missing")

	assert.ErrorIs(t, err, context.Canceled)
}
