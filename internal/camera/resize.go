package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// jpegQuality for re-encoded frames. 90 keeps enough detail for descriptor
// extraction while bounding upload size.
const jpegQuality = 90

// Downscale re-encodes a JPEG so its longer edge is at most maxEdge pixels.
// Frames already within bounds are returned unchanged.
func Downscale(jpegBytes []byte, maxEdge int) ([]byte, error) {
	if maxEdge <= 0 {
		return jpegBytes, nil
	}

	img, err := jpeg.Decode(bytes.NewReader(jpegBytes))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longer := w
	if h > longer {
		longer = h
	}
	if longer <= maxEdge {
		return jpegBytes, nil
	}

	scale := float64(maxEdge) / float64(longer)
	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}
