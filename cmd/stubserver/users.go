package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DateJoined   time.Time `json:"date_joined"`
}

// UserStore is an in-memory user registry for the development backend.
type UserStore struct {
	mu     sync.RWMutex
	byMail map[string]*User
	nextID int64
}

func NewUserStore() *UserStore {
	return &UserStore{
		byMail: make(map[string]*User),
		nextID: 1,
	}
}

// Create registers a user, rejecting duplicates and weak input.
func (s *UserStore) Create(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters long")
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byMail[email]; exists {
		return nil, fmt.Errorf("user already exists")
	}

	user := &User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		DateJoined:   NowTimeFunc(),
	}
	s.nextID++
	s.byMail[email] = user
	return user, nil
}

func (s *UserStore) GetByEmail(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byMail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

// Authenticate verifies the password for an email.
func (s *UserStore) Authenticate(email, password string) (*User, error) {
	user, err := s.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("passwords not matched")
	}
	return user, nil
}

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password with a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
