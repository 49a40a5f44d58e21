package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/codelens/internal/config"
)

// Token types carried in the typ claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken indicates a token that failed signature or claim checks
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongTokenType indicates a token used in the wrong role (e.g. an
	// access token presented for refresh)
	ErrWrongTokenType = errors.New("wrong token type")
)

// CredentialPair is the access/refresh token pair issued on successful
// authentication
type CredentialPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims are the JWT claims carried by both token types
type Claims struct {
	TokenType string `json:"typ"`
	jwt.StandardClaims
}

// TokenIssuer issues and verifies credential pairs
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer creates a token issuer from auth configuration
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

// IssuePair issues a fresh credential pair for a user
func (t *TokenIssuer) IssuePair(userID string) (*CredentialPair, error) {
	access, err := t.sign(userID, TokenTypeAccess, t.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := t.sign(userID, TokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &CredentialPair{Access: access, Refresh: refresh}, nil
}

func (t *TokenIssuer) sign(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// VerifyAccess verifies an access token and returns the user ID
func (t *TokenIssuer) VerifyAccess(tokenStr string) (string, error) {
	return t.verify(tokenStr, TokenTypeAccess)
}

// VerifyRefresh verifies a refresh token and returns the user ID
func (t *TokenIssuer) VerifyRefresh(tokenStr string) (string, error) {
	return t.verify(tokenStr, TokenTypeRefresh)
}

func (t *TokenIssuer) verify(tokenStr, wantType string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return "", ErrWrongTokenType
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
