// Package service holds the session lifecycle: register, login, refresh,
// logout. Handlers translate its sentinel errors into HTTP statuses.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/Nekrasovv/web_store/internal/models"
	"github.com/Nekrasovv/web_store/internal/repo"
	"github.com/Nekrasovv/web_store/pkg/hash"
	"github.com/Nekrasovv/web_store/pkg/logging"
	"github.com/Nekrasovv/web_store/pkg/tokens"
)

var (
	ErrValidation          = errors.New("missing required fields")
	ErrConflict            = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type AuthService struct {
	Store         repo.CredentialStore
	JWTSecret     []byte
	RefreshSecret []byte
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || email == "" || password == "" {
		return nil, ErrValidation
	}

	if _, err := s.Store.FindByUsernameOrEmail(ctx, username, email); err == nil {
		l.Warn("register_conflict", "username", username)
		return nil, ErrConflict
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("register_failed", "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := s.Store.Insert(ctx, user); err != nil {
		l.Error("register_failed", "error", err)
		return nil, err
	}

	l.Info("register_successful", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// same answer as a wrong password, so callers cannot probe usernames
			l.Warn("login_failed", "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("login_failed", "error", err)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	return pair, nil
}

// Refresh verifies the presented cookie value against both the signature and
// the persisted copy, then rotates the pair. A logged-out user therefore
// cannot refresh even while the old token's signature is still valid.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.ParseRefreshClaims(rawToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "reason", "invalid token", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "reason", "user no longer exists", "user_id", userID)
			return nil, ErrUnauthenticated
		}
		l.Error("refresh_failed", "error", err)
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != rawToken {
		l.Warn("refresh_failed", "reason", "token revoked", "user_id", userID)
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("refresh_failed", "error", err)
		return nil, err
	}

	l.Info("refresh_successful", "user_id", user.ID)
	return pair, nil
}

// Logout nulls the persisted refresh-token value and reports which identity
// was logged out.
func (s *AuthService) Logout(ctx context.Context, rawToken string) (uint, error) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	claims, err := tokens.ParseRefreshClaims(rawToken, s.RefreshSecret)
	if err != nil {
		l.Warn("logout_failed", "reason", "invalid token", "error", err)
		return 0, ErrInvalidRefreshToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return 0, ErrInvalidRefreshToken
	}

	// nulling an already-null value is a no-op, so repeat logouts succeed
	if err := s.Store.ClearRefreshToken(ctx, userID); err != nil {
		l.Error("logout_failed", "error", err)
		return 0, err
	}

	l.Info("logout_successful", "user_id", userID)
	return userID, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := time.Now()

	accessToken, accessExp, err := tokens.NewAccessToken(user.ID, user.Username, user.Role, s.JWTSecret, now)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := tokens.NewRefreshToken(user.ID, user.Role, s.RefreshSecret, now)
	if err != nil {
		return nil, err
	}

	if err := s.Store.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		User:         user,
	}, nil
}
