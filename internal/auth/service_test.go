package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/wirehub-server/internal/store"
)

type memoryStore struct {
	users map[string]*store.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[string]*store.User)}
}

func (m *memoryStore) CreateUser(_ context.Context, email, passwordHash string) (*store.User, error) {
	u := &store.User{
		ID:           int64(len(m.users) + 1),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[email] = u
	return u, nil
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (m *memoryStore) Close() error { return nil }

func TestOpenAccessAcceptsAnyEmail(t *testing.T) {
	svc := NewService(nil)

	if err := svc.Authenticate(context.Background(), "anyone@x", ""); err != nil {
		t.Fatalf("open-access login rejected: %v", err)
	}
	if err := svc.Authenticate(context.Background(), "", ""); err != ErrInvalidEmail {
		t.Fatalf("empty email accepted: %v", err)
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(newMemoryStore())

	if _, err := svc.Register(context.Background(), "c1@x", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Authenticate(context.Background(), "c1@x", "hunter22"); err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}
	if err := svc.Authenticate(context.Background(), "c1@x", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("wrong password accepted: %v", err)
	}
	if err := svc.Authenticate(context.Background(), "ghost@x", "hunter22"); err != ErrInvalidCredentials {
		t.Fatalf("unknown user accepted: %v", err)
	}
}

func TestRegisterConstraints(t *testing.T) {
	svc := NewService(newMemoryStore())

	if _, err := svc.Register(context.Background(), "not-an-email", "hunter22"); err != ErrInvalidEmail {
		t.Fatalf("bad email accepted: %v", err)
	}
	if _, err := svc.Register(context.Background(), "c1@x", "short"); err != ErrInvalidPassword {
		t.Fatalf("short password accepted: %v", err)
	}

	if _, err := svc.Register(context.Background(), "c1@x", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "c1@x", "hunter22"); err != ErrUserExists {
		t.Fatalf("duplicate registration accepted: %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in the clear")
	}
	if err := ComparePassword(hash, "hunter22"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password compared equal")
	}
}
