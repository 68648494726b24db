// Package facemock provides a deterministic face.Extractor for tests and
// development without an inference daemon or camera hardware.
package facemock

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/face"
)

const embeddingDimension = 128

// minImageSize rejects obviously-not-an-image payloads.
const minImageSize = 16

// Extractor derives embeddings from the image content hash, so the same
// bytes always produce the same descriptor and distinct bytes produce
// distant descriptors. Eye openness per frame is scripted through EyeScript.
type Extractor struct {
	// EyeScript holds per-call average eye openness values; each Extract
	// consumes one entry. When exhausted (or empty) eyes read as open.
	EyeScript []float64

	calls int
}

// New creates a mock extractor with open eyes on every frame.
func New() *Extractor {
	return &Extractor{}
}

// LoadModels is a no-op: the mock has no models to fetch.
func (e *Extractor) LoadModels(ctx context.Context) error {
	return nil
}

// Extract produces a deterministic detection for the image bytes.
func (e *Extractor) Extract(ctx context.Context, image []byte) (*face.Detection, error) {
	if len(image) < minImageSize {
		return nil, domain.ErrNoFaceDetected
	}

	openness := 0.3
	if e.calls < len(e.EyeScript) {
		openness = e.EyeScript[e.calls]
	}
	e.calls++

	return &face.Detection{
		Descriptor: generateDescriptor(image),
		Landmarks: face.Landmarks{
			LeftEye:  eyeOutline(openness),
			RightEye: eyeOutline(openness),
		},
		Box:        face.BoundingBox{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.8},
		Confidence: 0.99,
		TotalFaces: 1,
	}, nil
}

// eyeOutline builds a 6-point outline whose aspect ratio equals openness.
func eyeOutline(openness float64) []face.Point {
	h := openness // vertical lid distance over a unit horizontal axis
	return []face.Point{
		{X: 0, Y: 0},
		{X: 0.3, Y: h / 2},
		{X: 0.7, Y: h / 2},
		{X: 1, Y: 0},
		{X: 0.7, Y: -h / 2},
		{X: 0.3, Y: -h / 2},
	}
}

// generateDescriptor maps the image hash onto a unit-norm vector.
func generateDescriptor(image []byte) face.Descriptor {
	hash := sha256.Sum256(image)
	embedding := make(face.Descriptor, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		idx := i % hashLen
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

// Ensure Extractor implements face.Extractor
var _ face.Extractor = (*Extractor)(nil)
