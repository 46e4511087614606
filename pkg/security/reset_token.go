package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ResetTokenMaxAge is how long a password reset link stays usable
const ResetTokenMaxAge = 30 * time.Minute

const resetPurpose = "password_reset"

// ErrInvalidToken covers every verification failure. Callers must not
// learn whether the signature, the purpose or the age was the problem.
var ErrInvalidToken = errors.New("reset token is expired or invalid")

type resetClaims struct {
	UserID  uint   `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// MakeResetToken signs a self-contained password reset token for the
// given user. Nothing is persisted, the token itself is the state.
func MakeResetToken(userID uint, secret []byte, issuedAt time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		UserID:  userID,
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	})

	return t.SignedString(secret)
}

// VerifyResetToken returns the user ID a token was issued for. It fails
// closed with ErrInvalidToken on a bad signature, a malformed token, a
// wrong purpose or a token older than maxAge.
func VerifyResetToken(token string, secret []byte, maxAge time.Duration) (uint, error) {
	claims := &resetClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	if claims.Purpose != resetPurpose || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}

	if claims.IssuedAt == nil || time.Since(claims.IssuedAt.Time) >= maxAge {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
