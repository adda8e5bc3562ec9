package properties

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"homelinks-backend/internal/application/auth"
	propertysvc "homelinks-backend/internal/application/properties"
	uploadsvc "homelinks-backend/internal/application/uploads"
	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/middleware"
	"homelinks-backend/internal/pkg/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPropertyHandlers(t *testing.T) (*fiber.App, *gorm.DB, *testutil.MemoryStore, domain.User) {
	db := testutil.DB(t)
	store := &testutil.MemoryStore{}
	owner := testutil.SeedUser(t, db, "owner@example.com", false)
	h := &Handlers{Service: &propertysvc.Service{DB: db, Uploads: &uploadsvc.Service{Store: store}}}

	app := fiber.New()
	withOwner := func(c *fiber.Ctx) error {
		middleware.SetSession(c, &auth.Session{UserID: owner.ID, Email: owner.Email})
		return c.Next()
	}
	app.Get("/properties", h.Search)
	app.Get("/properties/mine", withOwner, h.Mine)
	app.Get("/properties/:id", h.Get)
	app.Post("/properties", withOwner, h.Submit)
	return app, db, store, owner
}

func decode(t *testing.T, r io.Reader) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func validFields() map[string]string {
	return map[string]string{
		"title":           "Two bedroom flat",
		"description":     "Close to metro station, school and hospital.",
		"price":           "3500000",
		"district":        "Thrissur",
		"locality":        "Punkunnam",
		"propertyType":    "Apartment",
		"transactionType": "For Rent",
	}
}

func TestSearch_ReturnsEmptyArray(t *testing.T) {
	app, _, _, _ := setupPropertyHandlers(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/properties", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"properties":[]}`, string(raw))
}

func TestSearch_LimitAndFilters(t *testing.T) {
	app, db, _, owner := setupPropertyHandlers(t)
	testutil.SeedProperty(t, db, owner.ID, "House one", domain.StatusApproved)
	testutil.SeedProperty(t, db, owner.ID, "House two", domain.StatusApproved)
	testutil.SeedProperty(t, db, owner.ID, "House three", domain.StatusPending)

	resp, err := app.Test(httptest.NewRequest("GET", "/properties?limit=1", nil))
	require.NoError(t, err)
	assert.Len(t, decode(t, resp.Body)["properties"], 1)

	resp, err = app.Test(httptest.NewRequest("GET", "/properties?propertyType=house", nil))
	require.NoError(t, err)
	assert.Len(t, decode(t, resp.Body)["properties"], 2)

	resp, err = app.Test(httptest.NewRequest("GET", "/properties?transactionType=For%20Rent", nil))
	require.NoError(t, err)
	assert.Len(t, decode(t, resp.Body)["properties"], 0)
}

func TestGet_NotFoundCases(t *testing.T) {
	app, db, _, owner := setupPropertyHandlers(t)
	pending := testutil.SeedProperty(t, db, owner.ID, "Pending house", domain.StatusPending)

	for _, id := range []string{"not-a-uuid", uuid.NewString(), pending.ID.String()} {
		resp, err := app.Test(httptest.NewRequest("GET", "/properties/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, id)
		assert.Equal(t, "Property not found or not approved.", decode(t, resp.Body)["error"])
	}
}

func TestMine_IncludesStatus(t *testing.T) {
	app, db, _, owner := setupPropertyHandlers(t)
	testutil.SeedProperty(t, db, owner.ID, "Rejected plot", domain.StatusRejected)

	resp, err := app.Test(httptest.NewRequest("GET", "/properties/mine", nil))
	require.NoError(t, err)
	props := decode(t, resp.Body)["properties"].([]interface{})
	require.Len(t, props, 1)
	assert.Equal(t, "rejected", props[0].(map[string]interface{})["status"])
}

func TestSubmit_Success(t *testing.T) {
	app, db, store, owner := setupPropertyHandlers(t)
	body, ct := testutil.Multipart(t, validFields(), testutil.File{Field: "images", Name: "a.png", Data: testutil.PNG(t)})
	req := httptest.NewRequest("POST", "/properties", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	out := decode(t, resp.Body)
	assert.Contains(t, out["message"], "reviewed by an admin")
	assert.Len(t, store.Uploaded, 1)

	var p domain.Property
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&p).Error)
	assert.Equal(t, domain.StatusPending, p.Status)
}

func TestSubmit_FieldErrorsBeforeImageErrors(t *testing.T) {
	app, _, store, _ := setupPropertyHandlers(t)
	fields := validFields()
	fields["title"] = "Flat"
	body, ct := testutil.Multipart(t, fields)
	req := httptest.NewRequest("POST", "/properties", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	out := decode(t, resp.Body)
	assert.Equal(t, "Title must be between 5 and 100 characters.", out["error"])
	assert.Contains(t, out["fields"], "title")
	assert.Empty(t, store.Uploaded)
}

func TestSubmit_ImageRejections(t *testing.T) {
	app, _, store, _ := setupPropertyHandlers(t)
	png := testutil.PNG(t)

	cases := map[string][]testutil.File{
		"Please upload at least one image.": nil,
		"You can upload a maximum of 5 images.": {
			{Field: "images", Name: "1.png", Data: png}, {Field: "images", Name: "2.png", Data: png},
			{Field: "images", Name: "3.png", Data: png}, {Field: "images", Name: "4.png", Data: png},
			{Field: "images", Name: "5.png", Data: png}, {Field: "images", Name: "6.png", Data: png},
		},
		"Only JPEG, PNG and WEBP images are supported. (doc.pdf)": {
			{Field: "images", Name: "doc.pdf", Data: []byte("%PDF-1.4 not an image")},
		},
	}
	for want, files := range cases {
		body, ct := testutil.Multipart(t, validFields(), files...)
		req := httptest.NewRequest("POST", "/properties", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, want)
		assert.Equal(t, want, decode(t, resp.Body)["error"])
	}
	assert.Empty(t, store.Uploaded)
}
