package uploads

import (
	uploadsvc "homelinks-backend/internal/application/uploads"
	"homelinks-backend/internal/middleware"
	"homelinks-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ImagesField is the multipart field carrying listing images.
const ImagesField = "images"

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

// UploadPropertyImages POST /functions/v1/upload-property-image
func (h *Handlers) UploadPropertyImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil || len(form.File[ImagesField]) == 0 {
		return response.BadRequest(c, "No image files provided.")
	}
	files, err := uploadsvc.FromMultipart(form.File[ImagesField])
	if err != nil {
		if uploadsvc.IsValidationError(err) {
			return response.BadRequest(c, err.Error())
		}
		log.Error().Err(err).Msg("upload: reading multipart files failed")
		return response.Internal(c)
	}

	stored, err := h.Service.UploadAll(c.UserContext(), files)
	if err != nil {
		if uploadsvc.IsValidationError(err) {
			return response.BadRequest(c, err.Error())
		}
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Int("files", len(files)).Msg("upload: storing images failed")
		return response.Error(c, "Image upload failed. Please try again.", fiber.StatusBadGateway)
	}
	ev := log.Info().Int("count", len(stored))
	if sess := middleware.GetSession(c); sess != nil {
		ev = ev.Str("user_id", sess.UserID.String())
	}
	ev.Msg("upload: images stored")
	return response.OK(c, fiber.Map{"urls": uploadsvc.URLs(stored)})
}
