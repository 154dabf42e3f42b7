package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	domerrors "github.com/oksasatya/go-user-registration/internal/domain/errors"
)

const (
	// DefaultCost is the bcrypt work factor used for stored credentials.
	DefaultCost = 12
	// DefaultPasswordLength is the length of generated passwords.
	DefaultPasswordLength = 12
	// MinPasswordLength applies to both user supplied and generated passwords.
	MinPasswordLength = 8

	PolicyDescription = "Password must be at least 8 characters long and contain uppercase, lowercase, number, and special character"
)

const (
	lowercase    = "abcdefghijklmnopqrstuvwxyz"
	uppercase    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
	specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	allChars     = lowercase + uppercase + digits + specialChars
)

// PasswordService validates, hashes and generates passwords.
// Plaintext passed through it must never be logged or persisted.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a service hashing with the given bcrypt cost.
// Out of range costs fall back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// ValidateStrength reports whether password satisfies the policy. Length is
// counted in characters, not bytes.
func (s *PasswordService) ValidateStrength(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength &&
		strings.ContainsAny(password, lowercase) &&
		strings.ContainsAny(password, uppercase) &&
		strings.ContainsAny(password, digits) &&
		strings.ContainsAny(password, specialChars)
}

// HashPassword hashes the plain text password using bcrypt.
// It is CPU bound and blocks for the duration of the work factor.
// Inputs longer than 72 bytes are rejected with ErrInvalidArgument.
func (s *PasswordService) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password must be at most 72 bytes", domerrors.ErrInvalidArgument)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ComparePassword compares a bcrypt hash with a plain password.
func (s *PasswordService) ComparePassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// GenerateSecurePassword returns a random password of the given length holding
// at least one character of each class. All randomness comes from crypto/rand.
func (s *PasswordService) GenerateSecurePassword(length int) (string, error) {
	if length < MinPasswordLength {
		return "", fmt.Errorf("%w: password length must be at least %d characters", domerrors.ErrInvalidArgument, MinPasswordLength)
	}

	out := make([]byte, 0, length)
	for _, set := range []string{uppercase, lowercase, digits, specialChars} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := randomChar(allChars)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// Fisher-Yates
	for i := len(out) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func randomChar(set string) (byte, error) {
	i, err := randomIndex(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

// randomIndex returns a uniform value in [0, n).
func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}
