package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"livecart/internal/core/apperror"
)

// Credentials is the configured merchant account. The tool is
// single-merchant: one username, one bcrypt hash, both from config.
type Credentials struct {
	Username     string
	PasswordHash string
}

// HashPassword produces a bcrypt hash for a plaintext password. Used by
// setup tooling, not by the request path.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Service handles merchant login.
type Service struct {
	creds Credentials
	jwt   *JWTService
}

// NewService creates an auth service.
func NewService(creds Credentials, jwtSvc *JWTService) *Service {
	return &Service{creds: creds, jwt: jwtSvc}
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Login verifies the merchant credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	if username != s.creds.Username {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.jwt.GenerateAccessToken(username)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("issue token: %w", err))
	}
	return &Token{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Validate checks a bearer token and returns the username.
func (s *Service) Validate(ctx context.Context, token string) (string, error) {
	username, err := s.jwt.ValidateToken(token)
	if err != nil {
		return "", apperror.NewUnauthorized("invalid or expired token")
	}
	return username, nil
}
