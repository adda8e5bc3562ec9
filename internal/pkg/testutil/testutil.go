// Package testutil holds fixtures shared by handler and router tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"homelinks-backend/internal/application/auth"
	"homelinks-backend/internal/application/uploads"
	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/infrastructure/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// JWTSecret signs every token issued by Token.
var JWTSecret = []byte("test-jwt-secret")

var mobileSeq atomic.Int64

// DB opens an in-memory sqlite database with the full schema.
func DB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// Redis starts a miniredis server closed with the test.
func Redis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

// Verifier checks tokens issued by Token.
func Verifier() auth.TokenVerifier {
	return &auth.JWTVerifier{Secret: JWTSecret}
}

// Token issues a valid access token for u.
func Token(t testing.TB, u domain.User) string {
	t.Helper()
	tok, _, err := (&auth.Issuer{Secret: JWTSecret, TTL: time.Hour}).Issue(u.ID, u.Email, time.Now())
	require.NoError(t, err)
	return tok
}

// SeedUser creates a user with a profile and, when admin is set, an admin profile row.
func SeedUser(t testing.TB, db *gorm.DB, email string, admin bool) domain.User {
	t.Helper()
	u := domain.User{Email: email}
	require.NoError(t, db.Create(&u).Error)
	first := "Test"
	mobile := fmt.Sprintf("9%09d", mobileSeq.Add(1))
	require.NoError(t, db.Create(&domain.UserProfile{ID: u.ID, FirstName: &first, MobileNumber: &mobile}).Error)
	if admin {
		require.NoError(t, db.Create(&domain.AdminProfile{ID: u.ID}).Error)
	}
	return u
}

// SeedProperty creates a listing owned by owner in the given status.
func SeedProperty(t testing.TB, db *gorm.DB, owner uuid.UUID, title string, status domain.PropertyStatus) domain.Property {
	t.Helper()
	p := domain.Property{
		UserID:          owner,
		Title:           title,
		Description:     "Spacious home with good ventilation and parking.",
		Price:           "4500000",
		District:        "Ernakulam",
		Locality:        "Kakkanad",
		PropertyType:    "House",
		TransactionType: domain.TransactionForSale,
		Images:          []domain.PropertyImage{{ImageURL: "https://cdn.test/" + title + ".png", OrderIndex: 0}},
	}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Model(&p).Update("status", status).Error)
	p.Status = status
	return p
}

// PNG returns a small valid PNG.
func PNG(t testing.TB) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// File is one multipart file part.
type File struct {
	Field string
	Name  string
	Data  []byte
}

// Multipart encodes fields and files and returns the body with its content type.
func Multipart(t testing.TB, fields map[string]string, files ...File) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		h.Set("Content-Type", "application/octet-stream")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

// MemoryStore is an in-memory ImageStore.
type MemoryStore struct {
	mu       sync.Mutex
	Uploaded []string
	Deleted  []string
	Err      error
}

func (m *MemoryStore) Upload(_ context.Context, name, _ string, _ []byte) (uploads.StoredImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return uploads.StoredImage{}, m.Err
	}
	id := uuid.NewString()
	m.Uploaded = append(m.Uploaded, id)
	return uploads.StoredImage{URL: "https://cdn.test/" + id + "/" + name, PublicID: id}, nil
}

func (m *MemoryStore) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, publicID)
	return nil
}
