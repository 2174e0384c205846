package security

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := GenerateAccessToken("secret", "u1", "alice", "user", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := ParseAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" || claims.Role != "user" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestAccessTokenExpired(t *testing.T) {
	t.Parallel()

	token, err := GenerateAccessToken("secret", "u1", "alice", "user", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := ParseAccessToken(token, "secret"); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := GenerateAccessToken("right", "u1", "alice", "user", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := ParseAccessToken(token, "wrong"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := GenerateSessionToken("secret", "u1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	claims, err := ParseSessionToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseSessionToken error: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestSessionTokenNotValidAsAccessToken(t *testing.T) {
	t.Parallel()

	// Distinct secrets keep the two token families apart even though both
	// are HS512 JWTs.
	token, err := GenerateSessionToken("session-secret", "u1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}

	if _, err := ParseAccessToken(token, "access-secret"); err == nil {
		t.Fatalf("session token accepted as access token")
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseAccessToken("not.a.jwt", "secret"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
	if _, err := ParseSessionToken("", "secret"); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
