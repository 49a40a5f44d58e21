package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func newAuthedClient(server string) *Client {
	c := NewClient(server)
	c.Session().SetCredentials(CredentialPair{Access: "T1", Refresh: "R1"})
	return c
}

func TestListLinkedAccountsGroupsByProvider(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/accounts/" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string][]map[string]string{
			"github": {
				{"provider": "github", "uid": "gh-1", "username": "octocat"},
				{"provider": "github", "uid": "gh-2", "username": "octodog", "label": "work"},
			},
			"google": {
				{"provider": "google", "uid": "goog-1", "email": "dev@gmail.com"},
			},
		})
	})

	c := newAuthedClient(server.URL)
	accounts, err := c.ListLinkedAccounts(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(accounts["github"]) != 2 {
		t.Errorf("Expected two github accounts, got %d", len(accounts["github"]))
	}
	if len(accounts["google"]) != 1 {
		t.Errorf("Expected one google account, got %d", len(accounts["google"]))
	}
	if accounts["github"][1].Label != "work" {
		t.Errorf("Expected label preserved, got %q", accounts["github"][1].Label)
	}
}

func TestBeginConnectReturnsAuthorizeURL(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/connect/github" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
			return
		}
		w.Header().Set("Location", "https://github.com/login/oauth/authorize?state=signed")
		w.WriteHeader(http.StatusFound)
	})

	c := newAuthedClient(server.URL)
	location, err := c.BeginConnect(context.Background(), "github")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(location, "https://github.com/login/oauth/authorize") {
		t.Errorf("Unexpected authorize URL: %s", location)
	}
}

func TestBeginConnectExpiredSession(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
	})

	c := newAuthedClient(server.URL)
	if _, err := c.BeginConnect(context.Background(), "github"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Expected ErrSessionExpired, got %v", err)
	}
	if c.Session().IsAuthenticated() {
		t.Error("Expected session cleared")
	}
}

func TestUnlinkNotFound(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Account not found"})
	})

	c := newAuthedClient(server.URL)
	err := c.Unlink(context.Background(), "github", "no-such-uid")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestSetLabelValidatesLength(t *testing.T) {
	server, requests := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Unexpected request")
	})

	c := newAuthedClient(server.URL)
	var validationErr *ValidationError
	err := c.SetLabel(context.Background(), "github", "gh-1", strings.Repeat("x", 101))
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if *requests != 0 {
		t.Errorf("Expected zero requests, got %d", *requests)
	}
}

func TestSetLabelAcceptsMaxLength(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/accounts/label/" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"detail": "Label updated"})
	})

	c := newAuthedClient(server.URL)
	if err := c.SetLabel(context.Background(), "github", "gh-1", strings.Repeat("x", 100)); err != nil {
		t.Fatalf("Expected 100-character label accepted, got %v", err)
	}
}
