package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// AlreadyExistsError reports a uniqueness violation on a user field.
type AlreadyExistsError struct {
	Field string
	Value string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("User with %s '%s' already exists", e.Field, e.Value)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// InvalidCredentialError reports a password that does not satisfy the policy.
type InvalidCredentialError struct {
	Reason string
}

func (e *InvalidCredentialError) Error() string {
	return "Invalid password: " + e.Reason
}

func (e *InvalidCredentialError) Is(target error) bool { return target == ErrInvalidCredential }

// IsDomainError reports whether err is an expected, user-facing failure.
// Anything else is an infrastructure failure.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrInvalidArgument)
}
