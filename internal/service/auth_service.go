package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"workflow_api/internal/domain"
	"workflow_api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users  UserStore
	tokens *TokenIssuer
	hasher PasswordHasher
}

func NewAuthService(users UserStore, tokens *TokenIssuer, hasher PasswordHasher) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher}
}

func credentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", invalid("Username and password are required")
	}
	return username, nil
}

// Register creates a user and returns a token for it.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, *domain.User, error) {
	username, err := credentials(username, password)
	if err != nil {
		return "", nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", nil, invalid("Password is too long")
		}
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{Username: username, Password: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", nil, ErrUsernameTaken
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	username, err := credentials(username, password)
	if err != nil {
		return "", nil, err
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if !s.hasher.Check(password, u.Password) {
		return "", nil, ErrInvalidPassword
	}

	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

// Verify resolves a bearer token to a user id.
func (s *AuthService) Verify(token string) (int64, error) {
	return s.tokens.Parse(token)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
