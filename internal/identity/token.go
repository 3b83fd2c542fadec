package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims the job board API issues.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns user_id, falling back to the standard sub claim.
func (c *Claims) Principal() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// FromToken derives an identity from a bearer token.
//
// An empty token is None. When secret is empty the signature is not checked; the
// server remains the authority and will reject a forged token. An expired token is None.
func FromToken(tokenString string, secret []byte) (Identity, error) {
	if tokenString == "" {
		return None(), nil
	}

	claims := &Claims{}
	if len(secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return Unknown(), fmt.Errorf("malformed token: %w", err)
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			return None(), nil
		}
	} else {
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return None(), nil
			}
			return Unknown(), fmt.Errorf("invalid token: %w", err)
		}
		if !token.Valid {
			return Unknown(), fmt.Errorf("token is not valid")
		}
	}

	sub := claims.Principal()
	if sub == "" {
		return Unknown(), fmt.Errorf("token carries no user_id or sub claim")
	}
	return Present(sub), nil
}
