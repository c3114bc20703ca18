package homespace

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

const (
	thumbMaxWidth = 400
	thumbQuality  = 80
)

// thumbKey derives the blob key for an image's gallery rendition.
func thumbKey(key string) string { return key + ".thumb.jpg" }

// renderThumbnail decodes an uploaded image, scales it down to thumbMaxWidth
// when wider, and re-encodes it as JPEG. Formats the decoder does not know
// (e.g. webp) return an error and the caller skips the rendition.
func renderThumbnail(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > thumbMaxWidth {
		newH := h * thumbMaxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, thumbMaxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
