// Package background loads, validates and prepares certificate background
// images, and draws the built-in sample background.
package background

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // register the webp decoder

	cferrors "github.com/certforge/certforge/pkg/errors"
)

// MaxUploadBytes is the largest accepted background image.
const MaxUploadBytes = 5 << 20

// JPEGQuality is used when a fitted background is re-encoded.
const JPEGQuality = 80

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// Image is a decoded background with the media type it was sniffed as.
type Image struct {
	image.Image
	MIME string
}

// Decode validates data as a JPEG, PNG or WebP image no larger than
// maxBytes and decodes it. A non-positive maxBytes means MaxUploadBytes.
// The media type is sniffed from the content, not taken from the caller.
func Decode(data []byte, maxBytes int64) (*Image, error) {
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	if len(data) == 0 {
		return nil, cferrors.New(cferrors.ErrCodeInvalidImage, "empty image")
	}
	if int64(len(data)) > maxBytes {
		return nil, cferrors.New(cferrors.ErrCodeInvalidImage, "image is %d bytes, limit is %d", len(data), maxBytes)
	}

	mt := mimetype.Detect(data)
	if !allowedTypes[mt.String()] {
		return nil, cferrors.New(cferrors.ErrCodeInvalidImage, "unsupported image type %s (want JPEG, PNG or WebP)", mt.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, cferrors.Wrap(cferrors.ErrCodeInvalidImage, err, "decode %s", mt.String())
	}
	return &Image{Image: img, MIME: mt.String()}, nil
}

// DecodeDataURL is Decode for a base64 data URL such as the ones produced by
// browser file readers.
func DecodeDataURL(url string, maxBytes int64) (*Image, error) {
	_, data, err := ParseDataURL(url)
	if err != nil {
		return nil, err
	}
	return Decode(data, maxBytes)
}

// ParseDataURL splits a base64 data URL into its declared media type and
// payload. A bare base64 string without the "data:" prefix is accepted and
// reported as image/jpeg.
func ParseDataURL(url string) (string, []byte, error) {
	mime, payload := "image/jpeg", strings.TrimSpace(url)
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok {
			return "", nil, cferrors.New(cferrors.ErrCodeInvalidImage, "malformed data URL")
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return "", nil, cferrors.New(cferrors.ErrCodeInvalidImage, "data URL is not base64 encoded")
		}
		if t := strings.TrimSuffix(meta, ";base64"); t != "" {
			mime = t
		}
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, cferrors.Wrap(cferrors.ErrCodeInvalidImage, err, "decode base64 image")
	}
	return mime, data, nil
}

// DataURL encodes data as a base64 data URL of the given media type.
func DataURL(mime string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// Fit scales img by the largest factor that keeps it within maxW x maxH,
// preserving aspect ratio. Smaller images are scaled up.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || maxW <= 0 || maxH <= 0 {
		return img
	}
	ratio := min(float64(maxW)/float64(b.Dx()), float64(maxH)/float64(b.Dy()))
	w := max(1, int(float64(b.Dx())*ratio))
	h := max(1, int(float64(b.Dy())*ratio))
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// EncodeJPEG encodes img as a JPEG at JPEGQuality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes img as a PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Upload is a validated background ready to send to the generator and to
// draw under certificates.
type Upload struct {
	// Image is the decoded background fitted to the canvas.
	Image image.Image

	// JPEG is Image re-encoded at JPEGQuality.
	JPEG []byte
}

// DataURL returns the fitted background as a JPEG data URL.
func (u *Upload) DataURL() string {
	return DataURL("image/jpeg", u.JPEG)
}

// Prepare validates an uploaded image, fits it within maxW x maxH and
// re-encodes it as JPEG.
func Prepare(data []byte, maxBytes int64, maxW, maxH int) (*Upload, error) {
	img, err := Decode(data, maxBytes)
	if err != nil {
		return nil, err
	}
	fitted := Fit(img.Image, maxW, maxH)
	jpg, err := EncodeJPEG(fitted)
	if err != nil {
		return nil, cferrors.Wrap(cferrors.ErrCodeInvalidImage, err, "re-encode background")
	}
	return &Upload{Image: fitted, JPEG: jpg}, nil
}
