package service

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("wrong email or password")

// AuthService checks the single administrator credential.
type AuthService struct {
	email        string
	passwordHash []byte
}

// NewAuthService falls back to hashing defaultPassword when no hash is configured.
func NewAuthService(email, passwordHash, defaultPassword string) (*AuthService, error) {
	hash := []byte(passwordHash)
	if passwordHash == "" {
		generated, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash default password: %w", err)
		}
		hash = generated
	}
	return &AuthService{email: strings.ToLower(strings.TrimSpace(email)), passwordHash: hash}, nil
}

func (s *AuthService) CheckCredentials(email, password string) error {
	if strings.ToLower(strings.TrimSpace(email)) != s.email {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
