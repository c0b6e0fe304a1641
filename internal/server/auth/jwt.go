// Package auth implements the two stateless primitives of the service:
// the credential hasher and the token codec.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the JWT payload: standard claims plus the identity claim.
// The random jti keeps two tokens issued within the same second distinct.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// TokenCodec signs identity claims into HS256 tokens and verifies them.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenCodec(cfg *config.Config) *TokenCodec {
	return &TokenCodec{
		secret:   []byte(cfg.SecretKey),
		validity: cfg.TokenValidityDuration,
		now:      time.Now,
	}
}

// WithClock returns a copy of c reading time from now.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Sign issues a token for claim expiring one validity window from now.
func (c *TokenCodec) Sign(claim models.Claim) (string, error) {
	issued := c.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expiry(issued, c.validity)),
		},
		UserID: claim.ID,
		Email:  claim.Email,
		Name:   claim.Name,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// expiry is issued+validity rounded up to a whole second, since exp is
// encoded in whole seconds. A token is never valid for less than validity.
func expiry(issued time.Time, validity time.Duration) time.Time {
	exp := issued.Add(validity)
	if t := exp.Truncate(time.Second); !t.Equal(exp) {
		return t.Add(time.Second)
	}
	return exp
}

// Verify checks the signature and expiry of tokenString and returns its claim.
// It fails with common.ErrTokenExpired when only the expiry is at fault and
// with common.ErrTokenInvalid otherwise.
func (c *TokenCodec) Verify(tokenString string) (models.Claim, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Claim{}, common.ErrTokenExpired
		}
		return models.Claim{}, common.ErrTokenInvalid
	}

	if !token.Valid || claims.UserID == "" || claims.Email == "" {
		return models.Claim{}, common.ErrTokenInvalid
	}

	return models.Claim{ID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
}
