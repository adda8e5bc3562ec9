package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	MaxImages     = 5
	MaxImageBytes = 5 << 20
)

var (
	ErrNoImages         = errors.New("Please upload at least one image.")
	ErrTooManyImages    = errors.New("You can upload a maximum of 5 images.")
	ErrImageTooLarge    = errors.New("Max image size is 5MB.")
	ErrUnsupportedImage = errors.New("Only JPEG, PNG and WEBP images are supported.")
)

var allowedFormats = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// Validate checks count, size and decoded format of every file.
// The content type is taken from the image header, never from the client.
func Validate(files []ImageFile) error {
	if len(files) == 0 {
		return ErrNoImages
	}
	if len(files) > MaxImages {
		return ErrTooManyImages
	}
	for i := range files {
		f := &files[i]
		if len(f.Data) > MaxImageBytes {
			return fmt.Errorf("%w (%s)", ErrImageTooLarge, f.Name)
		}
		_, format, err := image.DecodeConfig(bytes.NewReader(f.Data))
		if err != nil {
			return fmt.Errorf("%w (%s)", ErrUnsupportedImage, f.Name)
		}
		ct, ok := allowedFormats[format]
		if !ok {
			return fmt.Errorf("%w (%s)", ErrUnsupportedImage, f.Name)
		}
		f.ContentType = ct
	}
	return nil
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoImages) || errors.Is(err, ErrTooManyImages) ||
		errors.Is(err, ErrImageTooLarge) || errors.Is(err, ErrUnsupportedImage)
}
