package account

import (
	"errors"
	"strings"

	"homelinks-backend/internal/application/moderation"
	usersvc "homelinks-backend/internal/application/user"
	"homelinks-backend/internal/middleware"
	"homelinks-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handlers serves the signed-in user's own account.
type Handlers struct {
	Users *usersvc.Service
}

// Profile GET /api/v1/account/profile
func (h *Handlers) Profile(c *fiber.Ctx) error {
	sess := middleware.GetSession(c)
	p, err := h.Users.GetProfile(c.UserContext(), sess.UserID)
	if err != nil {
		if errors.Is(err, usersvc.ErrNotFound) {
			return response.NotFound(c, err.Error())
		}
		log.Error().Err(err).Str("user_id", sess.UserID.String()).Msg("account: profile lookup failed")
		return response.Internal(c)
	}
	return response.OK(c, fiber.Map{"profile": p})
}

type deleteSelfRequest struct {
	UserID string `json:"userId"`
}

// DeleteSelf POST /functions/v1/user-self-delete
func (h *Handlers) DeleteSelf(c *fiber.Ctx) error {
	var req deleteSelfRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return response.BadRequest(c, usersvc.ErrUserIDRequired.Error())
	}
	sess := middleware.GetSession(c)
	id, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return response.Forbidden(c, usersvc.ErrNotSelf.Error())
	}
	if err := h.Users.DeleteSelf(c.UserContext(), sess, id); err != nil {
		switch {
		case errors.Is(err, usersvc.ErrNotSelf):
			log.Warn().Str("user_id", sess.UserID.String()).Str("target", id.String()).Msg("account: self-delete for another user refused")
			return response.Forbidden(c, err.Error())
		case errors.Is(err, usersvc.ErrUserIDRequired):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, moderation.ErrUserNotFound):
			return response.NotFound(c, err.Error())
		}
		log.Error().Err(err).Str("user_id", sess.UserID.String()).Msg("account: self-delete failed")
		return response.Internal(c)
	}
	log.Info().Str("user_id", id.String()).Msg("account: deleted by owner")
	return response.Message(c, "Account deleted successfully.")
}
