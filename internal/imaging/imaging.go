// Package imaging decodes uploaded photos to derive thumbnails and
// orientation tags.
package imaging

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const (
	ThumbnailSize    = 300
	thumbnailQuality = 85
)

// Thumbnail writes a JPEG of the image read from r scaled to fit within
// ThumbnailSize x ThumbnailSize. Images already smaller are not enlarged.
func Thumbnail(r io.Reader, w io.Writer) error {
	img, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := resize.Thumbnail(ThumbnailSize, ThumbnailSize, img, resize.Lanczos3)
	if err := jpeg.Encode(w, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return nil
}

// OrientationTag returns "portrait" when the image is taller than it is wide
// and "landscape" otherwise. Only the image header is read.
func OrientationTag(r io.Reader) (string, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return "", fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Height > cfg.Width {
		return "portrait", nil
	}
	return "landscape", nil
}
