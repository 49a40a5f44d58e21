package auth

import (
	"testing"
	"time"

	"github.com/codelens/internal/config"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer(config.AuthConfig{
		JWTSecret:  "test-secret",
		Issuer:     "codelens-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
}

func TestIssuePairAndVerify(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.IssuePair("user-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("Expected both tokens to be issued")
	}
	if pair.Access == pair.Refresh {
		t.Error("Expected distinct access and refresh tokens")
	}

	userID, err := issuer.VerifyAccess(pair.Access)
	if err != nil {
		t.Fatalf("Expected access token to verify, got %v", err)
	}
	if userID != "user-1" {
		t.Errorf("Expected subject 'user-1', got '%s'", userID)
	}

	userID, err = issuer.VerifyRefresh(pair.Refresh)
	if err != nil {
		t.Fatalf("Expected refresh token to verify, got %v", err)
	}
	if userID != "user-1" {
		t.Errorf("Expected subject 'user-1', got '%s'", userID)
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.IssuePair("user-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := issuer.VerifyAccess(pair.Refresh); err == nil {
		t.Error("Expected refresh token to be rejected as access token")
	}
	if _, err := issuer.VerifyRefresh(pair.Access); err == nil {
		t.Error("Expected access token to be rejected as refresh token")
	}
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	issuer := testIssuer()
	other := NewTokenIssuer(config.AuthConfig{
		JWTSecret:  "different-secret",
		Issuer:     "codelens-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})

	pair, err := other.IssuePair("user-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := issuer.VerifyAccess(pair.Access); err == nil {
		t.Error("Expected token signed with another secret to be rejected")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer(config.AuthConfig{
		JWTSecret:  "test-secret",
		Issuer:     "codelens-test",
		AccessTTL:  -time.Minute,
		RefreshTTL: -time.Minute,
	})

	pair, err := issuer.IssuePair("user-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := issuer.VerifyAccess(pair.Access); err == nil {
		t.Error("Expected expired access token to be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := testIssuer()

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.VerifyAccess(token); err == nil {
			t.Errorf("Expected token %q to be rejected", token)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if hash == "secret-password" {
		t.Fatal("Expected hash to differ from plaintext")
	}

	if !CheckPassword(hash, "secret-password") {
		t.Error("Expected correct password to verify")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("Expected wrong password to be rejected")
	}
	if CheckPassword("", "anything") {
		t.Error("Expected empty hash to reject all passwords")
	}
}
