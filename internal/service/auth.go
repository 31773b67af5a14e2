// Package service holds the business rules. Handlers call services;
// services call repositories, the AI client and the pure packages
// (fitness, plan). Nothing in here knows about HTTP.
//
//	Handler (HTTP) → Service (rules) → Repository (DB)
//	                                 ↘ ai.Completer, session.Store
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 6

const errBadCredentials = "invalid email or password"

// AuthService handles registration, login and token issuing.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued token so the handler can set
// the cookie and respond in one step. Session.SessionID keys chat history.
type AuthResult struct {
	User    *model.User
	Token   string
	Session auth.Identity
}

// Register creates a password account and signs it in.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, &apperror.AppError{Err: apperror.ErrConflict, Message: "email already registered", Field: "email"}
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return s.issue(user)
}

// Login checks email and password. Unknown email and wrong password give
// the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(errBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperror.Unauthorized(errBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.issue(user)
}

// LoginOrRegisterGitHub signs in the account with the GitHub email,
// creating a password-less one on first login.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}
	email, err := normalizeEmail(ghUser.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Info("user authenticated via GitHub", slog.String("userID", user.ID), slog.String("login", ghUser.Login))
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{Email: email, Name: ghUser.Name, ProfilePhoto: ghUser.AvatarURL}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating GitHub user %s: %w", ghUser.Login, err)
		}
		s.logger.Info("user registered via GitHub", slog.String("userID", user.ID), slog.String("login", ghUser.Login))
	default:
		return nil, fmt.Errorf("service/auth: looking up GitHub user %s: %w", ghUser.Login, err)
	}

	return s.issue(user)
}

// GetUserByID returns the user for an authenticated request.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("missing user")
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, id, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token, Session: id}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.ValidationFailed("email", "invalid email format")
	}
	return email, nil
}
