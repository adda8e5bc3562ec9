package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	return img
}

func pngFile(t *testing.T, name string) ImageFile {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return ImageFile{Name: name, ContentType: "application/octet-stream", Data: buf.Bytes()}
}

func jpegFile(t *testing.T, name string) ImageFile {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	return ImageFile{Name: name, Data: buf.Bytes()}
}

type fakeStore struct {
	failOn  int
	uploads int
	deleted []string
}

func (f *fakeStore) Upload(ctx context.Context, name, contentType string, data []byte) (StoredImage, error) {
	f.uploads++
	if f.failOn > 0 && f.uploads == f.failOn {
		return StoredImage{}, errors.New("cdn down")
	}
	return StoredImage{URL: "https://cdn/" + name, PublicID: "pid-" + name}, nil
}

func (f *fakeStore) Delete(ctx context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

func TestValidate(t *testing.T) {
	assert.Equal(t, ErrNoImages, Validate(nil))

	files := []ImageFile{pngFile(t, "a.png"), jpegFile(t, "b.jpg")}
	require.NoError(t, Validate(files))
	assert.Equal(t, "image/png", files[0].ContentType)
	assert.Equal(t, "image/jpeg", files[1].ContentType)

	six := make([]ImageFile, 6)
	for i := range six {
		six[i] = pngFile(t, "x.png")
	}
	assert.Equal(t, ErrTooManyImages, Validate(six))

	big := pngFile(t, "big.png")
	big.Data = append(big.Data, make([]byte, MaxImageBytes)...)
	assert.ErrorIs(t, Validate([]ImageFile{big}), ErrImageTooLarge)

	assert.ErrorIs(t, Validate([]ImageFile{{Name: "doc.pdf", Data: []byte("%PDF-1.4")}}), ErrUnsupportedImage)

	var g bytes.Buffer
	require.NoError(t, gif.Encode(&g, testImage(), nil))
	err := Validate([]ImageFile{{Name: "anim.gif", Data: g.Bytes()}})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.True(t, IsValidationError(err))
}

func TestUploadAll(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{Store: store}
	imgs, err := svc.UploadAll(context.Background(), []ImageFile{pngFile(t, "1.png"), pngFile(t, "2.png")})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/1.png", "https://cdn/2.png"}, URLs(imgs))
	assert.Empty(t, store.deleted)
}

func TestUploadAll_CompensatesOnFailure(t *testing.T) {
	store := &fakeStore{failOn: 3}
	svc := &Service{Store: store}
	_, err := svc.UploadAll(context.Background(), []ImageFile{pngFile(t, "1.png"), pngFile(t, "2.png"), pngFile(t, "3.png")})
	require.Error(t, err)
	assert.Equal(t, []string{"pid-1.png", "pid-2.png"}, store.deleted)
}

func TestCloudinaryStore(t *testing.T) {
	var destroyed string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.NotEmpty(t, r.FormValue("signature"))
		assert.NotEmpty(t, r.FormValue("timestamp"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1_1/demo/image/upload":
			assert.Equal(t, "ml_default", r.FormValue("upload_preset"))
			assert.Equal(t, "property_images", r.FormValue("folder"))
			_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/x.png","public_id":"property_images/x"}`))
		case "/v1_1/demo/image/destroy":
			destroyed = r.FormValue("public_id")
			_, _ = w.Write([]byte(`{"result":"ok"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	s := &CloudinaryStore{CloudName: "demo", APIKey: "key", APISecret: "secret", UploadPreset: "ml_default", BaseURL: srv.URL}
	img, err := s.Upload(context.Background(), "x.png", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/x.png", img.URL)
	assert.Equal(t, "property_images/x", img.PublicID)

	require.NoError(t, s.Delete(context.Background(), img.PublicID))
	assert.Equal(t, "property_images/x", destroyed)
}

func TestCloudinaryStore_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	s := &CloudinaryStore{CloudName: "demo", APIKey: "key", APISecret: "secret", BaseURL: srv.URL}
	_, err := s.Upload(context.Background(), "x.png", "image/png", []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Upload preset not found")

	_, err = (&CloudinaryStore{}).Upload(context.Background(), "x.png", "image/png", []byte{1})
	assert.Error(t, err)
}

func TestSupabaseStore(t *testing.T) {
	var uploadedPath, contentType string
	var deleteBody map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodPost:
			uploadedPath = r.URL.Path
			contentType = r.Header.Get("Content-Type")
			_, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"Key":"property-images/x"}`))
		case http.MethodDelete:
			assert.Equal(t, "/storage/v1/object/property-images", r.URL.Path)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&deleteBody))
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	s := &SupabaseStore{BaseURL: srv.URL, SecretKey: "service", Bucket: "property-images"}
	img, err := s.Upload(context.Background(), "Front.PNG", "image/png", []byte{1})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uploadedPath, "/storage/v1/object/property-images/"))
	assert.True(t, strings.HasSuffix(uploadedPath, ".png"))
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/property-images/"+img.PublicID, img.URL)

	require.NoError(t, s.Delete(context.Background(), img.PublicID))
	assert.Equal(t, []string{img.PublicID}, deleteBody["prefixes"])
}
