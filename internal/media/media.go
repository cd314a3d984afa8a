// Package media provides MIME sniffing and image preparation for the
// vision and OCR collaborators. MIME types are detected from magic bytes,
// never from file names supplied by the caller.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	// Register additional image formats
	_ "golang.org/x/image/webp"
)

// MaxDimension is the largest width or height forwarded to collaborators.
// Larger images are downscaled before upload.
const MaxDimension = 1600

// Supported image MIME types for the vision collaborators.
var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageData is a decoded, size-bounded image ready for upload.
type ImageData struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Base64 returns the image data as a base64-encoded string.
func (img *ImageData) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data URL for vision chat requests.
func (img *ImageData) DataURL() string {
	return "data:" + img.MimeType + ";base64," + img.Base64()
}

// DetectMIME returns the MIME type from magic bytes.
func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsImage reports whether the payload is a supported image format.
func IsImage(data []byte) bool {
	return supportedImageTypes[DetectMIME(data)]
}

// IsAudio reports whether the payload looks like an audio container.
func IsAudio(data []byte) bool {
	return strings.HasPrefix(DetectMIME(data), "audio/") ||
		DetectMIME(data) == "application/ogg" ||
		DetectMIME(data) == "video/webm" // browser MediaRecorder default
}

// PrepareImage decodes an image payload, downscaling it to MaxDimension if
// needed, and re-encodes oversized inputs as JPEG.
func PrepareImage(data []byte) (*ImageData, error) {
	mimeType := DetectMIME(data)
	if !supportedImageTypes[mimeType] {
		return nil, fmt.Errorf("unsupported image type: %s", mimeType)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= MaxDimension && height <= MaxDimension {
		return &ImageData{Data: data, MimeType: mimeType, Width: width, Height: height}, nil
	}

	resized := imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}

	rb := resized.Bounds()
	return &ImageData{
		Data:     buf.Bytes(),
		MimeType: "image/jpeg",
		Width:    rb.Dx(),
		Height:   rb.Dy(),
	}, nil
}
