package health

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"homelinks-backend/internal/middleware"
	"homelinks-backend/internal/pkg/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	_, rdb := testutil.Redis(t)
	h := &Handlers{Rdb: rdb}
	app := fiber.New()
	app.Get("/health/errors", h.Errors)

	ctx := context.Background()
	require.NoError(t, rdb.LPush(ctx, middleware.KeyErrorLog, `{"path":"/a","status":500,"message":"boom"}`, "junk").Err())

	resp, err := app.Test(httptest.NewRequest("GET", "/health/errors", nil))
	require.NoError(t, err)
	var out []middleware.ErrorEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "/a", out[0].Path)
	assert.Equal(t, 500, out[0].Status)
}

func TestJSON_DegradedWithoutDependencies(t *testing.T) {
	h := &Handlers{}
	app := fiber.New()
	app.Get("/health/json", h.JSON)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "issue", out["status"])
	assert.Equal(t, "homelinks-api", out["service"])
}

func TestReset_RequiresKey(t *testing.T) {
	_, rdb := testutil.Redis(t)
	app := fiber.New()
	app.Get("/reset", (&Handlers{Rdb: rdb}).Reset)

	resp, err := app.Test(httptest.NewRequest("GET", "/reset?key=", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	app = fiber.New()
	app.Get("/reset", (&Handlers{Rdb: rdb, HealthAdminKey: "k"}).Reset)
	require.NoError(t, rdb.Set(context.Background(), middleware.KeyReqTotal, 5, 0).Err())
	resp, err = app.Test(httptest.NewRequest("GET", "/reset?key=k", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, rdb.Exists(context.Background(), middleware.KeyReqTotal).Val())
	assert.EqualValues(t, 1, rdb.Exists(context.Background(), middleware.KeyStartTime).Val())
}
