package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxImageSize is the largest upload accepted (5 MB).
const MaxImageSize = 5 << 20

// maxImagePixels caps the number of pixels to prevent memory bombs.
const maxImagePixels = 50_000_000

// ErrNotImage is returned for data that is not a supported raster image.
var ErrNotImage = errors.New("only image files are allowed")

// ErrTooLarge is returned for data above MaxImageSize.
var ErrTooLarge = errors.New("file size must be less than 5MB")

// imageTypes maps sniffed MIME types to the extension they are stored under.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImage sniffs the content type of data and verifies that the image
// header actually decodes. It returns the MIME type and file extension.
// The client-declared type and file name are never trusted.
func DetectImage(data []byte) (contentType, ext string, err error) {
	if len(data) > MaxImageSize {
		return "", "", ErrTooLarge
	}

	contentType = http.DetectContentType(data)
	ext, ok := imageTypes[contentType]
	if !ok {
		return "", "", ErrNotImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return "", "", fmt.Errorf("%w: unsupported dimensions %dx%d", ErrNotImage, cfg.Width, cfg.Height)
	}
	return contentType, ext, nil
}
