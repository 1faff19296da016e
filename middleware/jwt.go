package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krtchnt/zenki/cache"
)

// Claims is the JWT payload.
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// GenerateToken signs a JWT for the given user with the given secret and TTL.
func GenerateToken(uid int64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a JWT string and returns the claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// SessionKey is the cache key that keeps a token's session alive.
func SessionKey(token string) string {
	return "session:" + token
}

// IssueSession signs a token for uid and registers its session in c for ttl.
// Logging in lives outside this service; this is how that subsystem, tests
// and the -issue-token flag hand out tokens.
func IssueSession(ctx context.Context, c cache.Cache, uid int64, secret string, ttl time.Duration) (string, error) {
	token, err := GenerateToken(uid, secret, ttl)
	if err != nil {
		return "", err
	}
	if err := c.Set(ctx, SessionKey(token), "1", ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate checks a raw token and its cached session and returns the user id.
func Authenticate(ctx context.Context, c cache.Cache, token, secret string) (int64, error) {
	claims, err := ParseToken(token, secret)
	if err != nil {
		return 0, errInvalidToken
	}
	cacheCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	exists, err := c.Exists(cacheCtx, SessionKey(token))
	if err != nil || !exists {
		return 0, errSessionExpired
	}
	return claims.UserID, nil
}

var (
	errInvalidToken   = errors.New("invalid token")
	errSessionExpired = errors.New("session expired")
)
