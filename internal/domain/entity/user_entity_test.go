package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testID       = "123e4567-e89b-12d3-a456-426614174000"
	testUsername = "testuser"
	testEmail    = "test@example.com"
	testHash     = "$2a$12$abcdefghijklmnopqrstuv"
)

func TestNewUser(t *testing.T) {
	u := NewUser(testID, testUsername, testEmail, testHash)

	assert.Equal(t, testID, u.ID)
	assert.Equal(t, testUsername, u.Username)
	assert.Equal(t, testEmail, u.Email)
	assert.Equal(t, testHash, u.Password)
	assert.True(t, u.HasPassword())
}

func TestNewUser_WithoutPassword(t *testing.T) {
	u := NewUser(testID, testUsername, testEmail, "")

	assert.Empty(t, u.Password)
	assert.False(t, u.HasPassword())
}

func TestUser_WithPassword(t *testing.T) {
	orig := NewUser(testID, testUsername, testEmail, "")

	updated := orig.WithPassword(testHash)

	assert.Equal(t, testHash, updated.Password)
	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, orig.Username, updated.Username)
	assert.Equal(t, orig.Email, updated.Email)
	// receiver untouched
	assert.Empty(t, orig.Password)
	assert.False(t, orig.HasPassword())
}
