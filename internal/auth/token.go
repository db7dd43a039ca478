// Package auth issues and verifies the bearer tokens that carry a caller's
// identity between requests.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a bearer token fails signature, expiry
// or claim validation. The underlying cause is not exposed to callers.
var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager signs and parses HS256 tokens with a single symmetric key.
// Key size validation happens at configuration load, before the manager is
// constructed.
type TokenManager struct {
	key []byte
	ttl time.Duration
}

func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{
		key: key,
		ttl: ttl,
	}
}

// Issue creates a signed token whose subject is the user id. The token is
// valid from now until the configured TTL elapses.
func (m *TokenManager) Issue(userID int64) (string, error) {
	const op = "auth.TokenManager.Issue"

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("%s: failed to sign token: %w", op, err)
	}

	return signed, nil
}

// Parse validates a token string and returns the user id it carries.
func (m *TokenManager) Parse(tokenString string) (int64, error) {
	const op = "auth.TokenManager.Parse"

	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.key, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return c.UserID, nil
}
