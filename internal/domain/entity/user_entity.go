package entity

// User is the aggregate root for the registration domain.
// It is a value: copies are cheap and updates produce a new User.
//
// Password holds a bcrypt hash, never plaintext. An empty string means
// no credential has been set yet.
type User struct {
	ID       string
	Username string
	Email    string
	Password string
}

func NewUser(id, username, email, password string) User {
	return User{ID: id, Username: username, Email: email, Password: password}
}

// WithPassword returns a copy of u carrying the given password hash.
func (u User) WithPassword(hash string) User {
	u.Password = hash
	return u
}

func (u User) HasPassword() bool {
	return u.Password != ""
}
