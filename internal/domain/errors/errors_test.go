package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlreadyExistsError(t *testing.T) {
	var err error = &AlreadyExistsError{Field: "email", Value: "alice@example.com"}

	assert.Equal(t, "User with email 'alice@example.com' already exists", err.Error())
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.False(t, errors.Is(err, ErrInvalidCredential))

	var ae *AlreadyExistsError
	assert.True(t, errors.As(fmt.Errorf("create user: %w", err), &ae))
	assert.Equal(t, "email", ae.Field)
}

func TestInvalidCredentialError(t *testing.T) {
	var err error = &InvalidCredentialError{Reason: "too weak"}

	assert.Equal(t, "Invalid password: too weak", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidCredential))
	assert.False(t, errors.Is(err, ErrAlreadyExists))
}

func TestIsDomainError(t *testing.T) {
	assert.True(t, IsDomainError(&AlreadyExistsError{Field: "email", Value: "x"}))
	assert.True(t, IsDomainError(fmt.Errorf("wrap: %w", &InvalidCredentialError{Reason: "r"})))
	assert.True(t, IsDomainError(fmt.Errorf("%w: length 4", ErrInvalidArgument)))
	assert.False(t, IsDomainError(errors.New("connection refused")))
	assert.False(t, IsDomainError(nil))
}
