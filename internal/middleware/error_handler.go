package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"homelinks-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// ErrorEntry is one record of the rolling server error log read by the health report.
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	TraceID string    `json:"trace_id,omitempty"`
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
}

// NewErrorHandler returns the global error handler. Errors come back as { error };
// 5xx causes are logged and kept in the Redis error log when rdb is set.
func NewErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("unhandled error")
			recordError(rdb, ErrorEntry{
				Time:    time.Now().UTC(),
				TraceID: GetTraceID(c),
				Method:  c.Method(),
				Path:    c.Path(),
				Status:  code,
				Message: err.Error(),
			})
		}
		return response.Error(c, message, code)
	}
}

// ErrorLog records 5xx responses that handlers write themselves. Errors returned up the chain
// are recorded by the error handler. Health paths are skipped.
func ErrorLog(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil || rdb == nil || skipHealthMarker(c.Path()) {
			return err
		}
		status := c.Response().StatusCode()
		if status < fiber.StatusInternalServerError {
			return nil
		}
		message := utils.StatusMessage(status)
		var body response.ErrorBody
		if json.Unmarshal(c.Response().Body(), &body) == nil && body.Error != "" {
			message = body.Error
		}
		recordError(rdb, ErrorEntry{
			Time:    time.Now().UTC(),
			TraceID: GetTraceID(c),
			Method:  c.Method(),
			Path:    c.Path(),
			Status:  status,
			Message: message,
		})
		return nil
	}
}

func recordError(rdb *redis.Client, e ErrorEntry) {
	if rdb == nil {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, b)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("error log: redis write failed")
	}
}
