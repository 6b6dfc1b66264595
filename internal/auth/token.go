// Package auth issues and verifies contributor session tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionExpired  = errors.New("session expired")
)

// Claims identify a contributor. Issued is a unix timestamp checked against
// the configured lifetime, independently of any exp claim.
type Claims struct {
	Email  string `json:"email"`
	Issued int64  `json:"issued"`
	jwt.RegisteredClaims
}

// TokenService signs and parses HS256 session tokens.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenService(secret string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Issue returns a signed token for email. Sessions are issued by the account
// service that shares JWT_SECRET; this backend only parses them.
func (s *TokenService) Issue(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", fmt.Errorf("%w: empty email", ErrUnauthenticated)
	}

	now := s.now()
	claims := &Claims{
		Email:  email,
		Issued: now.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token and returns its claims. Bad signatures and
// malformed tokens yield ErrUnauthenticated; tokens older than the lifetime
// yield ErrSessionExpired.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("%w: token has no email", ErrUnauthenticated)
	}
	if s.now().Sub(time.Unix(claims.Issued, 0)) > s.lifetime {
		return nil, ErrSessionExpired
	}
	return claims, nil
}
