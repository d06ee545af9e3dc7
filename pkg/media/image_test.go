package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255}) //nolint:gosec
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	data := encodePNG(t, 64, 48)

	info, err := Validate(data)

	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 48, info.Height)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty buffer", data: nil, wantErr: ErrEmptyImage},
		{name: "oversized buffer", data: make([]byte, MaxImageBytes+1), wantErr: ErrTooLarge},
		{name: "not an image", data: []byte("plain text"), wantErr: ErrUnsupportedImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPerceptualHash_StableAcrossEncodings(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	for x := 0; x < 128; x++ {
		for y := 0; y < 128; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 2), B: 32, A: 255}) //nolint:gosec
		}
	}

	var asPNG, asJPEG bytes.Buffer
	require.NoError(t, png.Encode(&asPNG, img))
	require.NoError(t, jpeg.Encode(&asJPEG, img, &jpeg.Options{Quality: 95}))

	pngHash, err := PerceptualHash(asPNG.Bytes())
	require.NoError(t, err)
	jpegHash, err := PerceptualHash(asJPEG.Bytes())
	require.NoError(t, err)

	assert.NotEmpty(t, pngHash)
	assert.Equal(t, pngHash, jpegHash, "a re-encode of the same picture must map to the same cache key")
}

func TestPerceptualHash_InvalidImage(t *testing.T) {
	_, err := PerceptualHash([]byte("junk"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestThumbnail(t *testing.T) {
	large := image.NewRGBA(image.Rect(0, 0, 2048, 1024))
	small := image.NewRGBA(image.Rect(0, 0, 100, 100))

	shrunk := Thumbnail(large)
	assert.Equal(t, 512, shrunk.Bounds().Dx())
	assert.Equal(t, 256, shrunk.Bounds().Dy())

	assert.Equal(t, small.Bounds(), Thumbnail(small).Bounds())
}

func TestThumbnailJPEG(t *testing.T) {
	data := encodePNG(t, 1024, 1024)

	thumb, err := ThumbnailJPEG(data)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, cfg.Width, 512)
	assert.LessOrEqual(t, cfg.Height, 512)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("jpeg"))
	assert.Equal(t, "image/png", ContentType("png"))
	assert.Equal(t, "application/octet-stream", ContentType("tiff"))
}
