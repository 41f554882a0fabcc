package service

import (
	"context"

	"artexpo-ticketing/internal/auth"
	"artexpo-ticketing/internal/model"
	"artexpo-ticketing/internal/repository"
	apperrors "artexpo-ticketing/pkg/app_errors"
)

// TokenPair carries the two tokens handed out on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error)
	// Refresh exchanges a stored refresh token for a fresh access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID int) error
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	issuer *auth.TokenIssuer
}

func NewAuthService(users repository.UserRepository, issuer *auth.TokenIssuer) AuthService {
	return &AuthServiceImpl{users: users, issuer: issuer}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if !auth.VerifyPassword(user.Password, password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	access, err := s.issuer.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.issuer.IssueRefresh(user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, user, nil
}

func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (string, error) {
	principal, err := s.issuer.Verify(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return "", apperrors.ErrInvalidToken
	}

	// A refresh token is only honored while it is the one on record; logout
	// and re-login both rotate it.
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return "", apperrors.ErrInvalidToken
	}

	return s.issuer.IssueAccess(user.ID, user.Role)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, userID int) error {
	return s.users.SetRefreshToken(ctx, userID, nil)
}
