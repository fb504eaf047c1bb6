package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/wirehub-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register an existing email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidEmail is returned when the email doesn't meet constraints.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when the password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service verifies login credentials. With no store configured the
// broker runs open-access: any non-empty email is accepted.
type Service struct {
	store store.UserStore
}

// NewService creates a new authentication service. userStore may be nil.
func NewService(userStore store.UserStore) *Service {
	return &Service{store: userStore}
}

// Authenticate checks email and password against the credential store.
func (s *Service) Authenticate(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidEmail
	}
	if s.store == nil {
		return nil
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return ErrInvalidCredentials
	}
	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Register provisions a user in the credential store.
func (s *Service) Register(ctx context.Context, email, password string) (*store.User, error) {
	if s.store == nil {
		return nil, errors.New("no credential store configured")
	}

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrUserExists
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, hashed)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
