package face

import (
	"context"
)

// Descriptor is a fixed-length face embedding. Immutable once produced;
// compared by distance, never by pixel content.
type Descriptor []float64

// Clone returns an independent copy of the descriptor.
func (d Descriptor) Clone() Descriptor {
	out := make(Descriptor, len(d))
	copy(out, d)
	return out
}

// Point is a 2D landmark coordinate in frame pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the detected face area in the image.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Landmarks carries the 6-point eye outlines needed for blink detection.
type Landmarks struct {
	LeftEye  []Point `json:"left_eye"`
	RightEye []Point `json:"right_eye"`
}

// Detection is one extracted face: embedding plus the geometry the liveness
// detector consumes.
type Detection struct {
	Descriptor Descriptor  `json:"-"`
	Landmarks  Landmarks   `json:"landmarks"`
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`

	// TotalFaces is how many faces the detector saw in the frame; the
	// detection itself is always the highest-confidence one.
	TotalFaces int `json:"total_faces"`
}

// Extractor produces descriptors from still images.
//
// LoadModels must be idempotent and memoized process-wide: the first call
// does the work, later calls return the cached outcome. Extract returns
// domain.ErrNoFaceDetected when the frame contains no face; with multiple
// faces the highest-confidence detection wins.
type Extractor interface {
	LoadModels(ctx context.Context) error
	Extract(ctx context.Context, image []byte) (*Detection, error)
}
