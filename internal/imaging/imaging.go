// Package imaging prepares scraped photos and reference images for the
// face service: format sniffing, decoding, JPEG conversion and downscaling.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// jpegQuality is used for every re-encode. Thumbnails are small enough
// that quality dominates size concerns.
const jpegQuality = 85

// DetectMIME detects the image MIME type from magic bytes.
func DetectMIME(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}

// Extension maps a detected MIME type to a file extension, or "" for
// anything that is not a supported image type.
func Extension(mime string) string {
	switch mime {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	}
	return ""
}

// Decode decodes JPEG, PNG, GIF or WebP bytes into an image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG encodes an image as JPEG.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// EnsureJPEG returns the data unchanged when it already is a JPEG, and
// re-encodes any other supported format otherwise.
func EnsureJPEG(data []byte) ([]byte, error) {
	if DetectMIME(data) == "image/jpeg" {
		return data, nil
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(img)
}

// Resize downscales an image to fit within maxEdge on its longer side,
// keeping the aspect ratio. Images that already fit are returned as-is;
// Resize never upscales.
func Resize(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxEdge <= 0 || (width <= maxEdge && height <= maxEdge) {
		return img
	}

	newWidth, newHeight := maxEdge, maxEdge
	if width > height {
		newHeight = int(float64(height) * float64(maxEdge) / float64(width))
	} else {
		newWidth = int(float64(width) * float64(maxEdge) / float64(height))
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	return scale(img, newWidth, newHeight)
}

// PrepareUpload turns arbitrary photo bytes into a JPEG no larger than
// maxEdge on either side, ready to send to the face service. Bytes that
// already satisfy both conditions pass through untouched.
func PrepareUpload(data []byte, maxEdge int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	fits := maxEdge <= 0 || (bounds.Dx() <= maxEdge && bounds.Dy() <= maxEdge)
	if fits && DetectMIME(data) == "image/jpeg" {
		return data, nil
	}

	return EncodeJPEG(Resize(img, maxEdge))
}

// scale draws an image at exactly the given dimensions.
func scale(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}
