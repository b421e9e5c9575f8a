package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload inside an invite token. The token is what
// an invite link carries: it binds the link to one session id, signed so
// a tampered or fabricated link fails verification before it ever touches
// hub state. This is link integrity, not user authentication — there are
// no user identities in the system.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Invites issues and verifies session tokens with a shared HMAC secret.
// HS256 is enough here: a single service both issues and verifies.
type Invites struct {
	secret string
	ttl    time.Duration
}

func NewInvites(secret string, ttl time.Duration) *Invites {
	return &Invites{secret: secret, ttl: ttl}
}

// Issue signs a token carrying the session id, valid for the session TTL.
func (i *Invites) Issue(sessionID string) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "devcord",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.secret))
	if err != nil {
		return "", fmt.Errorf("sign invite token: %w", err)
	}
	return signed, nil
}

// Verify validates a token string and returns the session id it carries.
// It checks the signature, the expiry, and that the signing method is
// HMAC (rejecting algorithm-switching tricks).
func (i *Invites) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(i.secret), nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("parse invite token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid invite token claims")
	}
	if claims.SessionID == "" {
		return "", fmt.Errorf("invite token missing session id")
	}
	return claims.SessionID, nil
}
