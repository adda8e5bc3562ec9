package uploads

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Service uploads validated images to the configured store.
type Service struct {
	Store ImageStore
}

// UploadAll validates files and uploads them in order. If any upload fails, images already
// stored by this call are deleted before the error is returned.
func (s *Service) UploadAll(ctx context.Context, files []ImageFile) ([]StoredImage, error) {
	if err := Validate(files); err != nil {
		return nil, err
	}
	stored := make([]StoredImage, 0, len(files))
	for _, f := range files {
		img, err := s.Store.Upload(ctx, f.Name, f.ContentType, f.Data)
		if err != nil {
			s.Compensate(ctx, stored)
			return nil, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		stored = append(stored, img)
	}
	return stored, nil
}

// Compensate deletes stored images. Failures are logged, not returned.
func (s *Service) Compensate(ctx context.Context, imgs []StoredImage) {
	for _, img := range imgs {
		if img.PublicID == "" {
			continue
		}
		if err := s.Store.Delete(context.WithoutCancel(ctx), img.PublicID); err != nil {
			log.Error().Err(err).Str("public_id", img.PublicID).Msg("uploads: compensation delete failed")
		}
	}
}

// URLs returns the public urls of imgs in order.
func URLs(imgs []StoredImage) []string {
	out := make([]string, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, img.URL)
	}
	return out
}
