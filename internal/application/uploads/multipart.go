package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
)

// FromMultipart reads the uploaded parts into memory. Count and size limits are checked
// before any part is read so oversized requests fail fast.
func FromMultipart(headers []*multipart.FileHeader) ([]ImageFile, error) {
	if len(headers) == 0 {
		return nil, ErrNoImages
	}
	if len(headers) > MaxImages {
		return nil, ErrTooManyImages
	}
	files := make([]ImageFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > MaxImageBytes {
			return nil, fmt.Errorf("%w (%s)", ErrImageTooLarge, fh.Filename)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		if len(data) > MaxImageBytes {
			return nil, fmt.Errorf("%w (%s)", ErrImageTooLarge, fh.Filename)
		}
		files = append(files, ImageFile{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data})
	}
	return files, nil
}
