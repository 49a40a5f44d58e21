// Package client is the Go SDK for the codelens API. It owns the credential
// pair lifecycle: tokens are installed on successful authentication, attached
// to outbound requests, and dropped the moment a protected call reports 401.
package client

import "sync"

// CredentialPair holds the access/refresh bearer tokens issued after
// authentication
type CredentialPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SessionStore holds the current credential pair. It is an explicit object
// injected into the Client rather than ambient state, and is safe for
// concurrent use.
type SessionStore struct {
	mu   sync.RWMutex
	pair CredentialPair
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// SetCredentials installs a credential pair
func (s *SessionStore) SetCredentials(pair CredentialPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
}

// ClearCredentials drops the stored pair. Safe to call repeatedly; concurrent
// clears are idempotent.
func (s *SessionStore) ClearCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = CredentialPair{}
}

// IsAuthenticated reports whether a full credential pair is present. No local
// expiry check is performed; expiry is discovered reactively through a 401.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.Access != "" && s.pair.Refresh != ""
}

// Credentials returns the stored pair and whether it is complete
func (s *SessionStore) Credentials() (CredentialPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, s.pair.Access != "" && s.pair.Refresh != ""
}
