package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionType = "auth"

// ErrInvalidSession is returned for any session credential that can't
// be trusted, whatever the reason
var ErrInvalidSession = errors.New("session is invalid or expired")

type sessionClaims struct {
	UserID uint   `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// MakeSessionToken signs the cookie-backed session credential. The ttl
// is longer for "remember me" logins, shorter otherwise.
func MakeSessionToken(userID uint, secret []byte, ttl time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: userID,
		Type:   sessionType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	})

	return t.SignedString(secret)
}

// ParseSessionToken resolves a session credential back to the user ID
// it was issued for. Expiry is enforced by the exp claim. A reset token
// never parses as a session because it carries no type claim.
func ParseSessionToken(token string, secret []byte) (uint, error) {
	claims := &sessionClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidSession
	}

	if claims.Type != sessionType || claims.UserID == 0 {
		return 0, ErrInvalidSession
	}

	return claims.UserID, nil
}
