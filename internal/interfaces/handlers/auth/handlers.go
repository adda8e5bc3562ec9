package auth

import (
	"context"
	"errors"

	authsvc "homelinks-backend/internal/application/auth"
	"homelinks-backend/internal/middleware"
	"homelinks-backend/internal/pkg/response"
	"homelinks-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Reauthenticator resolves a fresh session, admin flag included.
type Reauthenticator interface {
	Reauthenticate(ctx context.Context, token string) (*authsvc.Session, error)
}

// Welcomer greets new local accounts by email.
type Welcomer interface {
	SendWelcome(ctx context.Context, toEmail, firstName string) error
}

// Handlers holds dependencies for auth endpoints. Local is nil unless local sign-in is enabled.
type Handlers struct {
	Sessions Reauthenticator
	Local    *authsvc.LocalAccounts
	Mailer   Welcomer // optional
}

type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session GET /api/v1/auth/session re-resolves the caller's identity and admin flag.
func (h *Handlers) Session(c *fiber.Ctx) error {
	sess, err := h.Sessions.Reauthenticate(c.UserContext(), middleware.BearerToken(c))
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrTokenMissing), errors.Is(err, authsvc.ErrInvalidToken):
			return response.Unauthorized(c, err.Error())
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("auth/session: resolving session failed")
		return response.Internal(c)
	}
	return response.OK(c, fiber.Map{
		"user":       sessionUser{ID: sess.UserID.String(), Email: sess.Email},
		"isAdmin":    sess.IsAdmin,
		"resolvedAt": sess.ResolvedAt,
	})
}

// Signup POST /api/v1/auth/signup
func (h *Handlers) Signup(c *fiber.Ctx) error {
	if h.Local == nil {
		return response.NotFound(c, authsvc.ErrLocalAuthDisabled.Error())
	}
	var in authsvc.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	u, err := h.Local.Signup(c.UserContext(), in)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			return response.Invalid(c, verrs.Error(), verrs)
		case errors.Is(err, authsvc.ErrEmailTaken), errors.Is(err, authsvc.ErrMobileTaken):
			return response.Error(c, err.Error(), fiber.StatusConflict)
		}
		log.Error().Err(err).Msg("auth/signup: failed")
		return response.Internal(c)
	}
	log.Info().Str("user_id", u.ID.String()).Msg("auth/signup: account created")
	if h.Mailer != nil {
		// A failed welcome mail does not fail the signup.
		if err := h.Mailer.SendWelcome(c.UserContext(), u.Email, in.FirstName); err != nil {
			log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("auth/signup: welcome email failed")
		}
	}
	return response.Created(c, fiber.Map{"user": sessionUser{ID: u.ID.String(), Email: u.Email}})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.Local == nil {
		return response.NotFound(c, authsvc.ErrLocalAuthDisabled.Error())
	}
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, authsvc.ErrEmailPasswordRequired.Error())
	}
	res, err := h.Local.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			return response.Unauthorized(c, err.Error())
		case errors.Is(err, authsvc.ErrAccountBlocked):
			return response.Forbidden(c, err.Error())
		}
		log.Error().Err(err).Msg("auth/login: failed")
		return response.Internal(c)
	}
	return response.OK(c, res)
}
