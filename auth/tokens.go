package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long a login token stays valid.
const DefaultTokenTTL = time.Hour

var (
	// ErrInvalidToken is returned for tokens that are malformed, badly
	// signed or expired.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrTokenRevoked is returned for tokens invalidated by logout.
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrMissingBearer is returned when a request carries no bearer token.
	ErrMissingBearer = errors.New("missing or invalid authorization header")
)

// TokenIssuer signs and verifies HS256 session tokens whose subject is an
// account number, and remembers tokens revoked by logout until they expire.
type TokenIssuer struct {
	key []byte
	ttl time.Duration

	// now is replaced in tests.
	now func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // token id -> expiry
}

// NewTokenIssuer creates an issuer signing with secret. An empty secret
// selects a random key, so tokens do not survive a restart.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		rand.Read(secret)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		key:     secret,
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue returns a signed token for accountNumber and its expiry.
func (t *TokenIssuer) Issue(accountNumber string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   accountNumber,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign token: %w", err)
	}
	return signed, expires, nil
}

// Validate returns the account number a live token was issued for.
func (t *TokenIssuer) Validate(token string) (string, error) {
	claims, err := t.parse(token)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	_, revoked := t.revoked[claims.ID]
	t.mu.Unlock()
	if revoked {
		return "", ErrTokenRevoked
	}
	return claims.Subject, nil
}

// Revoke invalidates a live token. Revoking a token twice fails with
// ErrTokenRevoked.
func (t *TokenIssuer) Revoke(token string) error {
	claims, err := t.parse(token)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.revoked[claims.ID]; ok {
		return ErrTokenRevoked
	}

	now := t.now()
	for id, expires := range t.revoked {
		if !expires.After(now) {
			delete(t.revoked, id)
		}
	}
	t.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

func (t *TokenIssuer) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}
