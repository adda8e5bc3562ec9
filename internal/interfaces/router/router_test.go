package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"homelinks-backend/internal/application/moderation"
	usersvc "homelinks-backend/internal/application/user"
	"homelinks-backend/internal/config"
	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/pkg/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	rdb   *redis.Client
	store *testutil.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	db := testutil.DB(t)
	_, rdb := testutil.Redis(t)
	store := &testutil.MemoryStore{}
	app := NewApp(Deps{
		DB:         db,
		Rdb:        rdb,
		Verifier:   testutil.Verifier(),
		ImageStore: store,
		Policy:     moderation.PermissivePolicy{},
		Config: &config.Config{
			CORSAllowedOrigins: "*",
			HealthAdminKey:     "secret",
			SubmitRateLimit:    20,
		},
	})
	return &testEnv{app: app, db: db, rdb: rdb, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func TestAuthFailures(t *testing.T) {
	e := newTestEnv(t)
	member := testutil.SeedUser(t, e.db, "member@example.com", false)

	resp, out := e.do(t, "GET", "/api/v1/properties/mine", "", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized: Access token missing", out["error"])

	resp, out = e.do(t, "GET", "/api/v1/properties/mine", "not-a-jwt", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized: Invalid or expired access token", out["error"])

	resp, out = e.do(t, "GET", "/functions/v1/admin-users", testutil.Token(t, member), nil, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Forbidden: Not an admin", out["error"])
}

func TestBlockedUserIsRejected(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.SeedUser(t, e.db, "admin@example.com", true)
	member := testutil.SeedUser(t, e.db, "member@example.com", false)
	memberToken := testutil.Token(t, member)

	resp, _ := e.do(t, "GET", "/api/v1/properties/mine", memberToken, nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, out := e.do(t, "POST", "/functions/v1/admin-actions", testutil.Token(t, admin),
		jsonBody(map[string]string{"action": "blockUser", "userId": member.ID.String()}), fiber.MIMEApplicationJSON)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "User blocked successfully.", out["message"])

	resp, _ = e.do(t, "GET", "/api/v1/properties/mine", memberToken, nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, out = e.do(t, "POST", "/functions/v1/admin-actions", testutil.Token(t, admin),
		jsonBody(map[string]string{"action": "unblockUser", "userId": member.ID.String()}), fiber.MIMEApplicationJSON)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "User unblocked successfully.", out["message"])

	resp, _ = e.do(t, "GET", "/api/v1/properties/mine", memberToken, nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSubmitModerateAndBrowse(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.SeedUser(t, e.db, "admin@example.com", true)
	owner := testutil.SeedUser(t, e.db, "owner@example.com", false)
	ownerToken := testutil.Token(t, owner)

	body, ct := testutil.Multipart(t, map[string]string{
		"title":           "Sea view villa",
		"description":     "Four bedroom villa with a garden and sea view.",
		"price":           "9500000",
		"district":        "Kozhikode",
		"locality":        "Beach Road",
		"propertyType":    "House",
		"transactionType": "For Sale",
	}, testutil.File{Field: "images", Name: "front.png", Data: testutil.PNG(t)},
		testutil.File{Field: "images", Name: "back.png", Data: testutil.PNG(t)})
	resp, out := e.do(t, "POST", "/api/v1/properties", ownerToken, body, ct)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, out)
	prop := out["property"].(map[string]interface{})
	id := prop["id"].(string)
	assert.Equal(t, "pending", prop["status"])
	assert.Len(t, prop["property_images"], 2)
	assert.Len(t, e.store.Uploaded, 2)

	// Pending listings are invisible to the public but visible to the owner.
	resp, _ = e.do(t, "GET", "/api/v1/properties/"+id, "", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, out = e.do(t, "GET", "/api/v1/properties/mine", ownerToken, nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, out["properties"], 1)

	adminToken := testutil.Token(t, admin)
	resp, out = e.do(t, "GET", "/functions/v1/admin-properties?status=pending", adminToken, nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, out["totalCount"])

	resp, out = e.do(t, "POST", "/functions/v1/admin-property-actions", adminToken,
		jsonBody(map[string]string{"action": "approveProperty", "propertyId": id}), fiber.MIMEApplicationJSON)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Property approved successfully.", out["message"])

	resp, out = e.do(t, "GET", "/api/v1/properties/"+id, "", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Sea view villa", out["property"].(map[string]interface{})["title"])

	resp, out = e.do(t, "GET", "/api/v1/properties?district=Kozhikode&query=villa", "", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, out["properties"], 1)

	resp, out = e.do(t, "GET", "/functions/v1/admin-properties/"+id+"/events", adminToken, nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, out["events"], 2)

	resp, _ = e.do(t, "POST", "/functions/v1/admin-property-actions", adminToken,
		jsonBody(map[string]string{"action": "disapproveProperty", "propertyId": id}), fiber.MIMEApplicationJSON)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, "GET", "/api/v1/properties/"+id, "", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSessionEndpoint(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.SeedUser(t, e.db, "admin@example.com", true)

	resp, out := e.do(t, "GET", "/api/v1/auth/session", testutil.Token(t, admin), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["isAdmin"])
	assert.Equal(t, "admin@example.com", out["user"].(map[string]interface{})["email"])

	resp, _ = e.do(t, "GET", "/api/v1/auth/session", "", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLocalAuthRoutesAbsentInSupabaseMode(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.do(t, "POST", "/api/v1/auth/login", "", jsonBody(map[string]string{"email": "a@b.com", "password": "x"}), fiber.MIMEApplicationJSON)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSelfDelete(t *testing.T) {
	e := newTestEnv(t)
	a := testutil.SeedUser(t, e.db, "a@example.com", false)
	b := testutil.SeedUser(t, e.db, "b@example.com", false)
	testutil.SeedProperty(t, e.db, a.ID, "A's flat", domain.StatusApproved)

	resp, _ := e.do(t, "POST", "/functions/v1/user-self-delete", testutil.Token(t, a),
		jsonBody(map[string]string{"userId": b.ID.String()}), fiber.MIMEApplicationJSON)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, "POST", "/functions/v1/user-self-delete", testutil.Token(t, a),
		jsonBody(map[string]string{"userId": a.ID.String()}), fiber.MIMEApplicationJSON)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var n int64
	e.db.Model(&domain.Property{}).Where("user_id = ?", a.ID).Count(&n)
	assert.Zero(t, n)
	e.db.Model(&domain.User{}).Where("id = ?", b.ID).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestAdminUsersCSV(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.SeedUser(t, e.db, "admin@example.com", true)
	testutil.SeedUser(t, e.db, "member@example.com", false)

	req := httptest.NewRequest("GET", "/functions/v1/admin-users?format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, admin))
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "member@example.com")
	assert.NotContains(t, string(raw), "admin@example.com")
}

func TestAdminUsersCSV_ExportsEveryUser(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.SeedUser(t, e.db, "admin@example.com", true)
	total := usersvc.MaxPageSize + 5
	users := make([]domain.User, total)
	for i := range users {
		users[i] = domain.User{Email: fmt.Sprintf("bulk%04d@example.com", i)}
	}
	require.NoError(t, e.db.CreateInBatches(users, 200).Error)

	req := httptest.NewRequest("GET", "/functions/v1/admin-users?format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, admin))
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Len(t, lines, total+1)

	// Explicit paging still pages.
	req = httptest.NewRequest("GET", "/functions/v1/admin-users?format=csv&limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, admin))
	resp, err = e.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ = io.ReadAll(resp.Body)
	assert.Len(t, strings.Split(strings.TrimRight(string(raw), "\n"), "\n"), 11)
}

func TestHealthAndStats(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, "GET", "/api/v1/properties", "", nil, "")

	resp, out := e.do(t, "GET", "/health/json", "", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])
	traffic := out["traffic"].(map[string]interface{})
	assert.EqualValues(t, 1, traffic["totalRequests"])

	resp, _ = e.do(t, "GET", "/reset?key=wrong", "", nil, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(t, "GET", "/reset?key=secret", "", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	n, _ := e.rdb.Get(context.Background(), "health:global:req_total").Int()
	assert.Zero(t, n)
}

func TestHandledServerErrorsReachErrorLog(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.db.Migrator().DropTable(&domain.PropertyImage{}, &domain.Property{}))

	resp, out := e.do(t, "GET", "/api/v1/properties", "", nil, "")
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, out["error"])

	req := httptest.NewRequest("GET", "/health/errors", nil)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var entries []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/v1/properties", entries[0]["path"])
	assert.EqualValues(t, 500, entries[0]["status"])
	assert.NotEmpty(t, entries[0]["trace_id"])
}

func TestModerationEventsArePublished(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.SeedUser(t, e.db, "admin@example.com", true)
	owner := testutil.SeedUser(t, e.db, "owner@example.com", false)
	p := testutil.SeedProperty(t, e.db, owner.ID, "Plot near highway", domain.StatusPending)

	sub := e.rdb.Subscribe(context.Background(), moderation.Channel)
	defer sub.Close()
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	resp, _ := e.do(t, "POST", "/functions/v1/admin-property-actions", testutil.Token(t, admin),
		jsonBody(map[string]string{"action": "approveProperty", "propertyId": p.ID.String()}), fiber.MIMEApplicationJSON)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	select {
	case msg := <-sub.Channel():
		var ev moderation.StatusChanged
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, p.ID, ev.PropertyID)
		assert.Equal(t, string(domain.StatusApproved), ev.To)
	case <-time.After(2 * time.Second):
		t.Fatal("no moderation event published")
	}
}
