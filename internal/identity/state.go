package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// stateTTL bounds the time between redirect and callback
const stateTTL = 10 * time.Minute

// ErrInvalidState indicates a callback state that failed verification
var ErrInvalidState = errors.New("invalid oauth state")

// State is the signed payload round-tripped through the provider redirect.
// It carries the flow intent and, for connect flows, the user performing
// the link.
type State struct {
	Provider string
	Intent   Intent
	UserID   string // set for connect intent only
}

type stateClaims struct {
	Provider string `json:"prv"`
	Intent   string `json:"int"`
	UserID   string `json:"uid,omitempty"`
	jwt.StandardClaims
}

// StateCodec signs and verifies OAuth state tokens
type StateCodec struct {
	secret []byte
}

// NewStateCodec creates a state codec with the given signing secret
func NewStateCodec(secret string) *StateCodec {
	return &StateCodec{secret: []byte(secret)}
}

// Encode signs a state for the provider redirect
func (c *StateCodec) Encode(state State) (string, error) {
	now := time.Now()
	claims := stateClaims{
		Provider: state.Provider,
		Intent:   string(state.Intent),
		UserID:   state.UserID,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(stateTTL).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies a callback state and returns its payload
func (c *StateCodec) Decode(tokenStr string) (*State, error) {
	claims := &stateClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidState
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidState
	}
	intent := Intent(claims.Intent)
	if intent != IntentLogin && intent != IntentConnect {
		return nil, ErrInvalidState
	}
	if intent == IntentConnect && claims.UserID == "" {
		return nil, ErrInvalidState
	}
	return &State{
		Provider: claims.Provider,
		Intent:   intent,
		UserID:   claims.UserID,
	}, nil
}
