package application

import "context"

// IDGenerator issues globally unique, opaque user identifiers.
type IDGenerator interface {
	Generate() (string, error)
}

// EventPublisher hands a payload to every subscriber of topic without waiting for them.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// PasswordService covers the lifecycle of secret material.
type PasswordService interface {
	ValidateStrength(password string) bool
	HashPassword(plain string) (string, error)
	ComparePassword(plain, hash string) bool
	GenerateSecurePassword(length int) (string, error)
}

// JobPublisher enqueues a JSON job on an external queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
