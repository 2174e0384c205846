package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"clipstream/api/internal/config"
	"clipstream/api/internal/models"
	"clipstream/api/internal/repository"
	"clipstream/api/internal/security"
)

// principalStore is the slice of the user repository the issuer needs.
type principalStore interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	SetSessionToken(ctx context.Context, id string, token string) error
	SwapSessionToken(ctx context.Context, id string, prev string, next string) error
	ClearSessionToken(ctx context.Context, id string) error
}

// TokenPair is one issuance event. Access proves recent authentication and
// is never stored; Session is persisted on the user row and is good for
// exactly one rotation.
type TokenPair struct {
	Access  string
	Session string
}

type TokenService struct {
	users principalStore
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewTokenService(users principalStore, cfg *config.AppConfig, log zerolog.Logger) *TokenService {
	return &TokenService{
		users: users,
		cfg:   cfg,
		log:   log,
	}
}

// Issue mints a fresh token pair and overwrites the stored session token.
// Any prior session token dies here regardless of its expiry. Failures are
// server-side faults, never the caller's.
func (s *TokenService) Issue(ctx context.Context, userID string) (TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue: load user: %w", err)
	}

	pair, err := s.mint(user)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.users.SetSessionToken(ctx, user.ID, pair.Session); err != nil {
		return TokenPair{}, fmt.Errorf("issue: persist session token: %w", err)
	}

	return pair, nil
}

// Authenticate verifies an access token and loads its principal with
// sensitive fields stripped. Callers wanting optional auth simply ignore
// the error and proceed anonymously.
func (s *TokenService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	claims, err := security.ParseAccessToken(token, s.cfg.Security.JWTAccessSecret)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%w: principal gone", ErrUnauthorized)
		}
		return models.User{}, err
	}

	return user.Sanitized(), nil
}

// Rotate exchanges a session token for a fresh pair. The swap is a
// conditional update keyed on the presented value, so of two concurrent
// rotations with the same token at most one wins; the loser and any replay
// of a superseded token get ErrUnauthorized.
func (s *TokenService) Rotate(ctx context.Context, sessionToken string) (TokenPair, error) {
	if sessionToken == "" {
		return TokenPair{}, fmt.Errorf("%w: missing session token", ErrUnauthorized)
	}

	claims, err := security.ParseSessionToken(sessionToken, s.cfg.Security.JWTSessionSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, fmt.Errorf("%w: principal gone", ErrUnauthorized)
		}
		return TokenPair{}, err
	}

	pair, err := s.mint(user)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.users.SwapSessionToken(ctx, user.ID, sessionToken, pair.Session); err != nil {
		if errors.Is(err, repository.ErrTokenMismatch) {
			return TokenPair{}, fmt.Errorf("%w: session token expired or reused", ErrUnauthorized)
		}
		return TokenPair{}, fmt.Errorf("rotate: persist session token: %w", err)
	}

	return pair, nil
}

// Revoke clears the stored session token. Already-issued access tokens stay
// valid until they expire; the short TTL bounds that window.
func (s *TokenService) Revoke(ctx context.Context, userID string) error {
	if err := s.users.ClearSessionToken(ctx, userID); err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	return nil
}

func (s *TokenService) mint(user models.User) (TokenPair, error) {
	access, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		user.Username,
		string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return TokenPair{}, fmt.Errorf("mint access token: %w", err)
	}

	session, err := security.GenerateSessionToken(
		s.cfg.Security.JWTSessionSecret,
		user.ID,
		s.cfg.Security.JWTSessionTTL,
	)
	if err != nil {
		return TokenPair{}, fmt.Errorf("mint session token: %w", err)
	}

	return TokenPair{Access: access, Session: session}, nil
}
