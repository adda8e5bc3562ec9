package middleware

import (
	"context"
	"errors"
	"strings"

	"homelinks-backend/internal/application/auth"
	"homelinks-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const sessionLocal = "session"

// SessionResolver turns bearer tokens into sessions and answers admin membership.
type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// GetSession returns the session resolved for this request (nil when unauthenticated).
func GetSession(c *fiber.Ctx) *auth.Session {
	s, _ := c.Locals(sessionLocal).(*auth.Session)
	return s
}

// SetSession stores s for downstream handlers.
func SetSession(c *fiber.Ctx, s *auth.Session) {
	c.Locals(sessionLocal, s)
}

func authenticate(c *fiber.Ctx, r SessionResolver) (*auth.Session, error) {
	s, err := r.Authenticate(c.UserContext(), BearerToken(c))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenMissing):
			return nil, response.Unauthorized(c, auth.ErrTokenMissing.Error())
		case errors.Is(err, auth.ErrInvalidToken):
			return nil, response.Unauthorized(c, auth.ErrInvalidToken.Error())
		default:
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Msg("auth: resolving session failed")
			return nil, response.Internal(c)
		}
	}
	return s, nil
}

// RequireBearer rejects requests without a valid, unblocked user token (401).
func RequireBearer(r SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := authenticate(c, r)
		if s == nil {
			return err
		}
		SetSession(c, s)
		return c.Next()
	}
}

// RequireAdmin checks identity first (401), then admin set membership (403) on every call.
func RequireAdmin(r SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := authenticate(c, r)
		if s == nil {
			return err
		}
		ok, err := r.IsAdmin(c.UserContext(), s.UserID)
		if err != nil {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Msg("auth: admin check failed")
			return response.Internal(c)
		}
		if !ok {
			log.Info().Str("user_id", s.UserID.String()).Str("path", c.Path()).Msg("auth: non-admin denied")
			return response.Forbidden(c, auth.ErrNotAdmin.Error())
		}
		s.IsAdmin = true
		SetSession(c, s)
		return c.Next()
	}
}
