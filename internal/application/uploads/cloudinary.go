package uploads

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const defaultCloudinaryFolder = "property_images"

// CloudinaryStore uploads images through the Cloudinary upload API. Requests are signed with
// the API secret by the SDK.
type CloudinaryStore struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	Folder       string
	BaseURL      string // defaults to the SDK's https://api.cloudinary.com
}

func (s *CloudinaryStore) client() (*cloudinary.Cloudinary, error) {
	if s.CloudName == "" || s.APIKey == "" || s.APISecret == "" {
		return nil, fmt.Errorf("cloudinary: credentials missing on server")
	}
	cld, err := cloudinary.NewFromParams(s.CloudName, s.APIKey, s.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	if s.BaseURL != "" {
		cld.Config.API.UploadPrefix = strings.TrimRight(s.BaseURL, "/")
	}
	return cld, nil
}

// Upload stores the image under Folder (property_images by default).
func (s *CloudinaryStore) Upload(ctx context.Context, name, contentType string, data []byte) (StoredImage, error) {
	cld, err := s.client()
	if err != nil {
		return StoredImage{}, err
	}
	folder := s.Folder
	if folder == "" {
		folder = defaultCloudinaryFolder
	}
	res, err := cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		UploadPreset: s.UploadPreset,
	})
	if err != nil {
		return StoredImage{}, fmt.Errorf("cloudinary request: %w", err)
	}
	if res.Error.Message != "" {
		return StoredImage{}, fmt.Errorf("Cloudinary upload failed: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return StoredImage{}, fmt.Errorf("cloudinary returned no url for %s (%s)", name, contentType)
	}
	return StoredImage{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Delete destroys an uploaded image. An image that is already gone is not an error.
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	cld, err := s.client()
	if err != nil {
		return err
	}
	res, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary request: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary delete: %s", res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary delete: unexpected result %q", res.Result)
	}
	return nil
}
