// Package jwtauth verifies locally signed HS256 access tokens. It is the
// alternative to Anubis introspection for self-hosted deployments.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/riskibarqy/fantasy-racing/internal/domain/user"
	"github.com/riskibarqy/fantasy-racing/internal/usecase"
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

func NewVerifier(secret, issuer string, leeway time.Duration) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Verifier{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		leeway: leeway,
		now:    time.Now,
	}, nil
}

func (v *Verifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return user.Principal{}, fmt.Errorf("%w: token expired", usecase.ErrUnauthorized)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, errUnexpectedSigningMethod):
			return user.Principal{}, fmt.Errorf("%w: invalid token signature", usecase.ErrUnauthorized)
		default:
			return user.Principal{}, fmt.Errorf("%w: invalid token: %v", usecase.ErrUnauthorized, err)
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return user.Principal{}, fmt.Errorf("%w: invalid token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return user.Principal{}, fmt.Errorf("%w: token subject is empty", usecase.ErrUnauthorized)
	}

	return user.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
	}, nil
}

// Issue signs a token for userID. Used by local tooling and tests.
func (v *Verifier) Issue(userID, email string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
