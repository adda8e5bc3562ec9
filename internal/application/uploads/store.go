package uploads

import "context"

// StoredImage is an image persisted in an ImageStore.
type StoredImage struct {
	URL      string `json:"url"`
	PublicID string `json:"-"`
}

// ImageStore persists listing images and removes them again.
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (StoredImage, error)
	Delete(ctx context.Context, publicID string) error
}

// ImageFile is an uploaded file held in memory.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}
