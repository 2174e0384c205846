package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"clipstream/api/internal/config"
	"clipstream/api/internal/models"
	"clipstream/api/internal/repository"
	"clipstream/api/internal/security"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	store := &fakeUserStore{users: make(map[string]*models.User)}
	for i := range users {
		u := users[i]
		store.users[u.ID] = &u
	}
	return store
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return *user, nil
}

func (f *fakeUserStore) SetSessionToken(ctx context.Context, id string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	t := token
	user.SessionToken = &t
	return nil
}

func (f *fakeUserStore) SwapSessionToken(ctx context.Context, id string, prev string, next string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok || user.SessionToken == nil || *user.SessionToken != prev {
		return repository.ErrTokenMismatch
	}
	t := next
	user.SessionToken = &t
	return nil
}

func (f *fakeUserStore) ClearSessionToken(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.SessionToken = nil
	return nil
}

func (f *fakeUserStore) storedToken(id string) *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].SessionToken
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTAccessSecret:  "access-secret",
			JWTSessionSecret: "session-secret",
			JWTAccessTTL:     15 * time.Minute,
			JWTSessionTTL:    time.Hour,
		},
	}
}

func testUser() models.User {
	return models.User{
		ID:       "u1",
		Username: "alice",
		Role:     models.UserRoleUser,
	}
}

func TestIssueThenAuthenticate(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser())
	svc := NewTokenService(store, testConfig(), zerolog.Nop())

	pair, err := svc.Issue(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if pair.Access == "" || pair.Session == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if stored := store.storedToken("u1"); stored == nil || *stored != pair.Session {
		t.Fatalf("session token not persisted")
	}

	user, err := svc.Authenticate(context.Background(), pair.Access)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("authenticated wrong user: %q", user.ID)
	}
	if user.PasswordHash != nil || user.SessionToken != nil {
		t.Fatalf("sensitive fields not stripped")
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser())
	cfg := testConfig()
	svc := NewTokenService(store, cfg, zerolog.Nop())

	expired, err := security.GenerateAccessToken(cfg.Security.JWTAccessSecret, "u1", "alice", "user", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), expired); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticateMissingAndMalformed(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser())
	svc := NewTokenService(store, testConfig(), zerolog.Nop())

	for _, token := range []string{"", "not.a.jwt"} {
		if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestAuthenticatePrincipalGone(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser())
	cfg := testConfig()
	svc := NewTokenService(store, cfg, zerolog.Nop())

	token, err := security.GenerateAccessToken(cfg.Security.JWTAccessSecret, "deleted", "ghost", "user", time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for missing principal, got %v", err)
	}
}

func TestRotateInvalidatesPriorToken(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser())
	svc := NewTokenService(store, testConfig(), zerolog.Nop())

	pair, err := svc.Issue(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	rotated, err := svc.Rotate(context.Background(), pair.Session)
	if err != nil {
		t.Fatalf("first Rotate error: %v", err)
	}
	if rotated.Session == pair.Session {
		t.Fatalf("rotation returned the same session token")
	}

	// The superseded token is dead even though its expiry has not elapsed.
	if _, err := svc.Rotate(context.Background(), pair.Session); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized on reuse, got %v", err)
	}

	if stored := store.storedToken("u1"); stored == nil || *stored != rotated.Session {
		t.Fatalf("stored token is not the rotation winner")
	}
}

func TestConcurrentRotateSingleWinner(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser())
	svc := NewTokenService(store, testConfig(), zerolog.Nop())

	pair, err := svc.Issue(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	type outcome struct {
		pair TokenPair
		err  error
	}
	results := make(chan outcome, 2)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < 2; i++ {
		go func() {
			start.Wait()
			p, err := svc.Rotate(context.Background(), pair.Session)
			results <- outcome{pair: p, err: err}
		}()
	}
	start.Done()

	var winners []TokenPair
	var losses int
	for i := 0; i < 2; i++ {
		res := <-results
		if res.err == nil {
			winners = append(winners, res.pair)
		} else if errors.Is(res.err, ErrUnauthorized) {
			losses++
		} else {
			t.Fatalf("unexpected rotate error: %v", res.err)
		}
	}

	if len(winners) != 1 || losses != 1 {
		t.Fatalf("expected exactly one winner and one loser, got %d winners %d losers", len(winners), losses)
	}
	if stored := store.storedToken("u1"); stored == nil || *stored != winners[0].Session {
		t.Fatalf("stored token does not match the winner's session token")
	}
}

func TestRevokeClearsStoredToken(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore(testUser())
	svc := NewTokenService(store, testConfig(), zerolog.Nop())

	pair, err := svc.Issue(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if err := svc.Revoke(context.Background(), "u1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if stored := store.storedToken("u1"); stored != nil {
		t.Fatalf("session token not cleared")
	}

	if _, err := svc.Rotate(context.Background(), pair.Session); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after revoke, got %v", err)
	}
}

func TestIssueUnknownPrincipal(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	svc := NewTokenService(store, testConfig(), zerolog.Nop())

	if _, err := svc.Issue(context.Background(), "nobody"); err == nil {
		t.Fatalf("expected error for unknown principal")
	}
}
