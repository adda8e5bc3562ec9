package response

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the error JSON shape shared by every endpoint.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is returned by action endpoints on success.
type MessageBody struct {
	Message string `json:"message"`
}

// Message sends a 200 OK response with { message }.
func Message(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(MessageBody{Message: message})
}

// OK sends a 200 OK response with body as-is.
func OK(c *fiber.Ctx, body interface{}) error {
	return c.Status(fiber.StatusOK).JSON(body)
}

// Created sends a 201 Created response with body as-is.
func Created(c *fiber.Ctx, body interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(body)
}

// Error sends { error } with the given status code.
func Error(c *fiber.Ctx, message string, statusCode int) error {
	return c.Status(statusCode).JSON(ErrorBody{Error: message})
}

// BadRequest sends 400 with { error }.
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusBadRequest)
}

// Unauthorized sends 401 with { error }.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized)
}

// Forbidden sends 403 with { error }.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden)
}

// NotFound sends 404 with { error }.
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusNotFound)
}

// Internal sends a 500 with a generic message. Callers log the cause.
func Internal(c *fiber.Ctx) error {
	return Error(c, "Internal Server Error", fiber.StatusInternalServerError)
}

// ValidationBody is returned for rejected form input.
type ValidationBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Invalid sends 400 with { error, fields }.
func Invalid(c *fiber.Ctx, message string, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ValidationBody{Error: message, Fields: fields})
}
