// Package auth implements single-user credential checks and cookie sessions
// persisted through the kv storage port.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates a failed login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is the authenticated principal.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Service validates credentials for the single configured user. The password
// is hashed at construction so the plaintext never outlives startup.
type Service struct {
	user User
	hash []byte
}

// NewService hashes the configured password and returns the service.
func NewService(username, password, displayName string) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Service{
		user: User{ID: "1", Username: username, Name: displayName, Role: "admin"},
		hash: hash,
	}, nil
}

// Authenticate returns the user when the credentials match.
func (s *Service) Authenticate(username, password string) (*User, error) {
	if username != s.user.Username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user := s.user
	return &user, nil
}

// UserByID returns the configured user when id matches.
func (s *Service) UserByID(id string) (*User, bool) {
	if id != s.user.ID {
		return nil, false
	}
	user := s.user
	return &user, true
}
