// Package service implements the business operations of the acquisitions
// API: token issuance, authentication, and user management over the store.
package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/acquisitions/api/database/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenSigning = errors.New("failed to sign token")
	ErrInvalidToken = errors.New("invalid token")
)

type tokenClaims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the bearer tokens carrying a principal.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Sign produces a signed token for the principal with the configured expiry.
func (s *TokenService) Sign(p model.Principal) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(p.Id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", ErrTokenSigning
	}
	return token, nil
}

// Verify validates signature and expiry and reconstructs the principal.
func (s *TokenService) Verify(token string) (model.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Principal{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return model.Principal{}, ErrInvalidToken
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return model.Principal{}, ErrInvalidToken
	}
	return model.Principal{Id: id, Email: claims.Email, Role: claims.Role}, nil
}
