package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageBytes caps single images and individual video frames.
	MaxImageBytes = 8 * 1024 * 1024
	// MaxPixelEdge caps either dimension; anything larger is an upload error.
	MaxPixelEdge = 16384

	thumbnailEdge    = 512
	thumbnailQuality = 85
)

var (
	ErrEmptyImage       = errors.New("image buffer is empty")
	ErrTooLarge         = errors.New("image exceeds the allowed size")
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
)

// Info describes a validated image buffer.
type Info struct {
	Format string
	Width  int
	Height int
}

// Validate sniffs the buffer and enforces the upload limits without decoding
// full pixel data. Supported formats: jpeg, png, gif, webp, bmp.
func Validate(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrEmptyImage
	}
	if len(data) > MaxImageBytes {
		return Info{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxPixelEdge || cfg.Height > MaxPixelEdge {
		return Info{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// PerceptualHash returns a stable perceptual fingerprint of the image, used
// as the verdict cache key: a re-encode of the same picture maps to the same
// verdict.
func PerceptualHash(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("failed to hash image: %w", err)
	}
	return hash.ToString(), nil
}

// Thumbnail downscales an image so its longest edge is at most thumbnailEdge,
// preserving aspect ratio. Smaller images are returned untouched.
func Thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= thumbnailEdge && bounds.Dy() <= thumbnailEdge {
		return img
	}
	if bounds.Dx() >= bounds.Dy() {
		return resize.Resize(thumbnailEdge, 0, img, resize.Lanczos3)
	}
	return resize.Resize(0, thumbnailEdge, img, resize.Lanczos3)
}

// ThumbnailJPEG decodes the buffer, downscales it and re-encodes as JPEG.
// Used for the preview object stored next to accepted media.
func ThumbnailJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Thumbnail(img), &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType maps a sniffed format to its MIME type for storage.
func ContentType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
