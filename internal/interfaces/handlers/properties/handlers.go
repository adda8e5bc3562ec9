package properties

import (
	"errors"

	propertysvc "homelinks-backend/internal/application/properties"
	uploadsvc "homelinks-backend/internal/application/uploads"
	"homelinks-backend/internal/middleware"
	"homelinks-backend/internal/pkg/response"
	"homelinks-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const imagesField = "images"

// Handlers serves the public catalogue and the owner's listings.
type Handlers struct {
	Service *propertysvc.Service
}

// Search GET /api/v1/properties
func (h *Handlers) Search(c *fiber.Ctx) error {
	props, err := h.Service.Search(c.UserContext(), propertysvc.Filter{
		TransactionType: c.Query("transactionType"),
		District:        c.Query("district"),
		Query:           c.Query("query"),
		PropertyType:    c.Query("propertyType"),
		Limit:           c.QueryInt("limit", 0),
	})
	if err != nil {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("properties: search failed")
		return response.Error(c, propertysvc.ErrFetchFailed.Error(), fiber.StatusInternalServerError)
	}
	return response.OK(c, fiber.Map{"properties": props})
}

// Get GET /api/v1/properties/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.NotFound(c, propertysvc.ErrNotFound.Error())
	}
	prop, err := h.Service.GetPublic(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, propertysvc.ErrNotFound) {
			return response.NotFound(c, err.Error())
		}
		log.Error().Err(err).Str("property_id", id.String()).Msg("properties: get failed")
		return response.Error(c, propertysvc.ErrFetchFailed.Error(), fiber.StatusInternalServerError)
	}
	return response.OK(c, fiber.Map{"property": prop})
}

// Mine GET /api/v1/properties/mine
func (h *Handlers) Mine(c *fiber.Ctx) error {
	sess := middleware.GetSession(c)
	props, err := h.Service.ListByOwner(c.UserContext(), sess.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", sess.UserID.String()).Msg("properties: owner list failed")
		return response.Error(c, propertysvc.ErrFetchFailed.Error(), fiber.StatusInternalServerError)
	}
	return response.OK(c, fiber.Map{"properties": props})
}

// Submit POST /api/v1/properties (multipart: listing fields plus images)
func (h *Handlers) Submit(c *fiber.Ctx) error {
	var in propertysvc.SubmitInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid form data.")
	}
	// Field errors are reported before image errors.
	if _, err := propertysvc.ValidateInput(in); err != nil {
		return validationFailed(c, err)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, uploadsvc.ErrNoImages.Error())
	}
	files, err := uploadsvc.FromMultipart(form.File[imagesField])
	if err != nil {
		if uploadsvc.IsValidationError(err) {
			return response.BadRequest(c, err.Error())
		}
		log.Error().Err(err).Msg("properties: reading multipart files failed")
		return response.Internal(c)
	}

	sess := middleware.GetSession(c)
	prop, err := h.Service.Submit(c.UserContext(), sess, in, files)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs), uploadsvc.IsValidationError(err):
			return validationFailed(c, err)
		case errors.Is(err, propertysvc.ErrSessionRequired):
			return response.Unauthorized(c, err.Error())
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("user_id", sess.UserID.String()).Msg("properties: submission failed")
		return response.Error(c, propertysvc.ErrSubmitFailed.Error(), fiber.StatusInternalServerError)
	}
	log.Info().Str("user_id", sess.UserID.String()).Str("property_id", prop.ID.String()).Msg("properties: submitted for review")
	return response.Created(c, fiber.Map{
		"message":  "Property submitted successfully! It will be reviewed by an admin.",
		"property": prop,
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return response.Invalid(c, verrs.Error(), verrs)
	}
	return response.BadRequest(c, err.Error())
}
