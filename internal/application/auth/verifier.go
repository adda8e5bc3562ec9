package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homelinks-backend/internal/infrastructure/supabase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audience carried by end-user access tokens on the auth platform.
const Audience = "authenticated"

// TokenVerifier turns a bearer token into verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

type accessClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 access tokens signed with the project JWT secret.
type JWTVerifier struct {
	Secret []byte
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Claims, error) {
	if len(v.Secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}
	var c accessClaims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return v.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(Audience),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	sub, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &Claims{Subject: sub, Email: c.Email, ExpiresAt: c.ExpiresAt.Time}, nil
}

// UserResolver resolves a token against the auth server.
type UserResolver interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// GoTrueVerifier delegates verification to the auth server (GET /auth/v1/user).
type GoTrueVerifier struct {
	Client UserResolver
}

func (v *GoTrueVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	u, err := v.Client.GetUser(ctx, token)
	if err != nil {
		if errors.Is(err, supabase.ErrUnauthorized) || errors.Is(err, supabase.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	sub, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if u.BannedUntil != nil && u.BannedUntil.After(time.Now()) {
		return nil, fmt.Errorf("%w: user is banned", ErrInvalidToken)
	}
	return &Claims{Subject: sub, Email: u.Email}, nil
}

// Issuer signs access tokens in the same shape the auth platform does.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
}

// Issue returns a signed token for the user and its expiry.
func (i *Issuer) Issue(userID uuid.UUID, email string, now time.Time) (string, time.Time, error) {
	ttl := i.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := now.Add(ttl)
	claims := accessClaims{
		Email: email,
		Role:  Audience,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}
