package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/config"
	"github.com/oksasatya/go-user-registration/internal/application"
	"github.com/oksasatya/go-user-registration/internal/container"
	domerrors "github.com/oksasatya/go-user-registration/internal/domain/errors"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
)

// seed registers a demo user through the same workflow as the API. Without
// -password the account is created without a credential and the deferred
// password handler assigns one.
func main() {
	username := flag.String("username", "demo_user", "username to register")
	email := flag.String("email", "demo@example.com", "email to register")
	password := flag.String("password", "", "optional plaintext password")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	in := application.CreateUserInput{Username: *username, Email: *email, Password: *password}
	if err := run(cfg, logger, in); err != nil {
		logger.WithError(err).Error("seed failed")
		os.Exit(1)
	}
}

// run owns the container so it is always closed, draining the bus before the
// store goes away, whichever way seeding ends.
func run(cfg *config.Config, logger *logrus.Logger, in application.CreateUserInput) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialise application: %w", err)
	}
	defer c.Close()

	res, err := c.Users.CreateUser(ctx, in)
	if errors.Is(err, domerrors.ErrAlreadyExists) {
		logger.WithField("email", in.Email).Info("demo user already present")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	log := logger.WithField("user_id", res.ID).WithField("email", res.Email)

	if in.Password == "" {
		if err := waitForPassword(ctx, c, res.ID); err != nil {
			return err
		}
	}
	log.Info("seeded user")
	return nil
}

// waitForPassword polls until the deferred password handler has stored a hash.
func waitForPassword(ctx context.Context, c *container.Container, id string) error {
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		u, err := c.Store.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find seeded user: %w", err)
		}
		if u != nil && u.HasPassword() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for generated password: %w", ctx.Err())
		case <-tick.C:
		}
	}
}
