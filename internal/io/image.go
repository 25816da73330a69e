package ioutils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ErrCorruptImage is returned by Verify when a file cannot be fully decoded.
var ErrCorruptImage = errors.New("corrupt image")

// verifiableExtensions lists the formats ImageService can decode.
var verifiableExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// ImageService checks downloaded images for truncation or corruption.
//
// Verification decodes the whole image, so a file cut short by a dropped
// connection fails even when its header is intact. Formats the standard
// library and golang.org/x/image cannot decode (videos, HEIC, camera RAW)
// are skipped.
//
// Example usage:
//
//	svc := NewImageService()
//	if err := svc.Verify(ctx, item.Path); errors.Is(err, ErrCorruptImage) {
//	    os.Remove(item.Path)
//	}
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// CanVerify reports whether path has an extension Verify understands.
func (s *ImageService) CanVerify(path string) bool {
	return verifiableExtensions[strings.ToLower(filepath.Ext(path))]
}

// Verify decodes the image at path.
//
// Returns nil for formats that cannot be verified, an error wrapping
// ErrCorruptImage when decoding fails, or the underlying error if the file
// cannot be opened.
func (s *ImageService) Verify(ctx context.Context, path string) error {
	if !s.CanVerify(path) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := image.Decode(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptImage, filepath.Base(path), err)
	}
	return nil
}
