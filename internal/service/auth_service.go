package service

import (
	"context"

	"hbnb/internal/apperrors"
	"hbnb/internal/auth"
	"hbnb/internal/domain"
	"hbnb/internal/repository"
)

// AuthService exchanges credentials for access tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, caller auth.Principal) (*domain.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

var errInvalidCredentials = apperrors.Unauthorized("invalid credentials")

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", errInvalidCredentials
	}

	user, err := s.users.GetByAttribute(ctx, "email", email)
	if err != nil {
		return "", storeError("find user by email", err)
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		return "", errInvalidCredentials
	}

	if s.tokens == nil {
		return "", apperrors.Unavailable("token issuing is not configured")
	}
	token, err := s.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		return "", apperrors.Internal("issue token", err)
	}
	return token, nil
}

func (s *authService) Me(ctx context.Context, caller auth.Principal) (*domain.User, error) {
	if err := auth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, caller.UserID)
	if err != nil {
		return nil, storeError("get user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return sanitizeUser(user), nil
}
