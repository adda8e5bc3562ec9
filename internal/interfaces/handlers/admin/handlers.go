package admin

import (
	"bytes"
	"context"
	"errors"
	"strings"

	authsvc "homelinks-backend/internal/application/auth"
	"homelinks-backend/internal/application/moderation"
	propertysvc "homelinks-backend/internal/application/properties"
	usersvc "homelinks-backend/internal/application/user"
	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/middleware"
	"homelinks-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Property and user actions accepted by the action endpoints.
const (
	ActionApproveProperty    = "approveProperty"
	ActionDisapproveProperty = "disapproveProperty"
	ActionDeleteUser         = "deleteUser"
	ActionBlockUser          = "blockUser"
	ActionUnblockUser        = "unblockUser"
)

// Handlers serves the admin console. Every route sits behind RequireAdmin.
type Handlers struct {
	Properties *propertysvc.Service
	Moderation *moderation.Service
	Users      *usersvc.Service
}

// ListProperties GET /functions/v1/admin-properties?page=&limit=&status=
func (h *Handlers) ListProperties(c *fiber.Ctx) error {
	status := domain.PropertyStatus(strings.ToLower(c.Query("status")))
	if status != "" && !status.Valid() {
		return response.BadRequest(c, "Invalid status filter.")
	}
	items, total, err := h.Properties.AdminList(c.UserContext(), propertysvc.AdminListParams{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", propertysvc.DefaultPageSize),
		Status: status,
	})
	if err != nil {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("admin: property list failed")
		return response.Error(c, propertysvc.ErrFetchFailed.Error(), fiber.StatusInternalServerError)
	}
	return response.OK(c, fiber.Map{"properties": items, "totalCount": total})
}

// PropertyEvents GET /functions/v1/admin-properties/:id/events
func (h *Handlers) PropertyEvents(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.NotFound(c, moderation.ErrPropertyNotFound.Error())
	}
	events, err := h.Properties.Events(c.UserContext(), id)
	if err != nil {
		log.Error().Err(err).Str("property_id", id.String()).Msg("admin: events lookup failed")
		return response.Internal(c)
	}
	return response.OK(c, fiber.Map{"events": events})
}

type propertyActionRequest struct {
	Action     string `json:"action"`
	PropertyID string `json:"propertyId"`
}

// PropertyAction POST /functions/v1/admin-property-actions
func (h *Handlers) PropertyAction(c *fiber.Ctx) error {
	var req propertyActionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if strings.TrimSpace(req.PropertyID) == "" {
		return response.BadRequest(c, moderation.ErrPropertyIDRequired.Error())
	}
	var apply func(context.Context, *authsvc.Session, uuid.UUID) error
	var message string
	switch req.Action {
	case ActionApproveProperty:
		apply, message = h.Moderation.ApproveProperty, "Property approved successfully."
	case ActionDisapproveProperty:
		apply, message = h.Moderation.RejectProperty, "Property disapproved successfully."
	default:
		return response.BadRequest(c, moderation.ErrInvalidAction.Error())
	}
	id, err := uuid.Parse(strings.TrimSpace(req.PropertyID))
	if err != nil {
		return response.NotFound(c, moderation.ErrPropertyNotFound.Error())
	}

	if err := apply(c.UserContext(), middleware.GetSession(c), id); err != nil {
		return moderationError(c, err)
	}
	return response.Message(c, message)
}

// ListUsers GET /functions/v1/admin-users?page=&limit=&format=csv
// A CSV request without page or limit exports every user.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	csvExport := strings.EqualFold(c.Query("format"), "csv")
	if csvExport && c.Query("page") == "" && c.Query("limit") == "" {
		var buf bytes.Buffer
		n, err := h.Users.ExportCSV(c.UserContext(), &buf)
		if err != nil {
			log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("admin: csv export failed")
			return response.Error(c, usersvc.ErrFetchFailed.Error(), fiber.StatusInternalServerError)
		}
		log.Info().Int("rows", n).Msg("admin: users exported")
		return sendCSV(c, buf.Bytes())
	}

	defaultLimit := usersvc.DefaultPageSize
	if csvExport {
		defaultLimit = usersvc.MaxPageSize
	}
	rows, total, err := h.Users.AdminList(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", defaultLimit))
	if err != nil {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("admin: user list failed")
		return response.Error(c, usersvc.ErrFetchFailed.Error(), fiber.StatusInternalServerError)
	}
	if !csvExport {
		return response.OK(c, fiber.Map{"users": rows, "totalCount": total})
	}

	var buf bytes.Buffer
	if err := usersvc.WriteCSV(&buf, rows); err != nil {
		log.Error().Err(err).Msg("admin: csv export failed")
		return response.Internal(c)
	}
	return sendCSV(c, buf.Bytes())
}

func sendCSV(c *fiber.Ctx, body []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="homelinks_users.csv"`)
	return c.Send(body)
}

type userActionRequest struct {
	Action string `json:"action"`
	UserID string `json:"userId"`
}

// UserAction POST /functions/v1/admin-actions
func (h *Handlers) UserAction(c *fiber.Ctx) error {
	var req userActionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body.")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return response.BadRequest(c, moderation.ErrUserIDRequired.Error())
	}
	var apply func(context.Context, *authsvc.Session, uuid.UUID) error
	var message string
	switch req.Action {
	case ActionDeleteUser:
		apply, message = h.Moderation.DeleteUser, "User deleted successfully."
	case ActionBlockUser:
		apply, message = h.Moderation.BlockUser, "User blocked successfully."
	case ActionUnblockUser:
		apply, message = h.Moderation.UnblockUser, "User unblocked successfully."
	default:
		return response.BadRequest(c, moderation.ErrInvalidAction.Error())
	}
	id, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return response.NotFound(c, moderation.ErrUserNotFound.Error())
	}

	if err := apply(c.UserContext(), middleware.GetSession(c), id); err != nil {
		return moderationError(c, err)
	}
	return response.Message(c, message)
}

func moderationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, moderation.ErrPropertyNotFound), errors.Is(err, moderation.ErrUserNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, moderation.ErrTransitionNotAllowed):
		return response.Error(c, err.Error(), fiber.StatusConflict)
	}
	log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("admin: action failed")
	return response.Internal(c)
}
