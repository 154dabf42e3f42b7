package event

import "time"

// TopicUserCreated is the bus topic a UserCreated event is published on.
const TopicUserCreated = "user.created"

// UserCreated is emitted once a user has been persisted.
// HasPassword records whether the registration request supplied a password,
// captured before persistence.
type UserCreated struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	HasPassword bool      `json:"has_password"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewUserCreated(userID, username, email string, hasPassword bool) UserCreated {
	return UserCreated{
		UserID:      userID,
		Username:    username,
		Email:       email,
		HasPassword: hasPassword,
		OccurredAt:  time.Now().UTC(),
	}
}
