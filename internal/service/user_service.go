package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"clipstream/api/internal/ids"
	"clipstream/api/internal/models"
	"clipstream/api/internal/repository"
	"clipstream/api/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	users  *repository.UserRepository
	subs   *repository.SubscriptionRepository
	tokens *TokenService
	log    zerolog.Logger
}

func NewUserService(
	users *repository.UserRepository,
	subs *repository.SubscriptionRepository,
	tokens *TokenService,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:  users,
		subs:   subs,
		tokens: tokens,
		log:    log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

type AuthResult struct {
	User   models.User
	Tokens TokenPair
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Username = strings.TrimSpace(strings.ToLower(input.Username))
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: username, email and password required", ErrValidation)
	}

	for _, identifier := range []string{input.Username, input.Email} {
		if _, err := s.users.FindByIdentifier(ctx, identifier); err == nil {
			return AuthResult{}, fmt.Errorf("%w: already registered", ErrValidation)
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, err
		}
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: passwordHash,
		Role:         models.UserRoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user.Sanitized(), Tokens: pair}, nil
}

func (s *UserService) Login(ctx context.Context, identifier, password string) (AuthResult, error) {
	identifier = strings.TrimSpace(strings.ToLower(identifier))

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user.Sanitized(), Tokens: pair}, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.tokens.Revoke(ctx, userID)
}

// Channel returns a public profile with subscriber counts. When viewerID is
// non-empty the viewer's own subscription state is included, which is how
// anonymous and signed-in callers share the endpoint.
func (s *UserService) Channel(ctx context.Context, username string, viewerID string) (models.ChannelProfile, error) {
	user, err := s.users.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.ChannelProfile{}, fmt.Errorf("%w: channel %s", ErrNotFound, username)
		}
		return models.ChannelProfile{}, err
	}

	subscribers, err := s.subs.CountSubscribers(ctx, user.ID)
	if err != nil {
		return models.ChannelProfile{}, err
	}
	subscribedTo, err := s.subs.CountSubscribedTo(ctx, user.ID)
	if err != nil {
		return models.ChannelProfile{}, err
	}

	profile := models.ChannelProfile{
		User:         user.Sanitized(),
		Subscribers:  subscribers,
		SubscribedTo: subscribedTo,
	}

	if viewerID != "" {
		subscribed, err := s.subs.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return models.ChannelProfile{}, err
		}
		profile.ViewerSubscribed = subscribed
	}

	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, fullName, email string) (models.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, fullName, strings.TrimSpace(strings.ToLower(email))); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return models.User{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	return user.Sanitized(), nil
}
