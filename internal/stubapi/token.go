package stubapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issueToken builds and signs an HS256 JWT for an operator.  The payload
// carries the subject (username), the "rol" claim the terminal routes on,
// and the standard issued-at and expiry claims.
func issueToken(secret []byte, username, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": username,
		"rol": role,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseToken verifies raw with secret and returns its claims.  Only HMAC
// signed tokens are accepted.
func parseToken(secret []byte, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
