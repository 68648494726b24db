// Package insight implements face.Extractor against a local face inference
// daemon (detector, landmark and recognition models behind one HTTP API).
package insight

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/face"
)

// Extractor extracts descriptors through the inference daemon. A successful
// model load is memoized process-wide; a failed probe is not, so a later
// retry can succeed once the daemon recovers.
type Extractor struct {
	client *Client

	loadMu sync.Mutex
	loaded bool
}

// NewExtractor creates an extractor backed by the daemon at config.BaseURL,
// falling back to config.FallbackURL when the primary is unreachable.
func NewExtractor(config Config) *Extractor {
	return &Extractor{
		client: NewClient(config),
	}
}

// LoadModels probes the daemon until one of the configured sources reports
// its models ready. The first success is final for the process lifetime;
// failures are returned but not cached, so the user-facing retry can
// re-attempt the load after a daemon outage.
func (e *Extractor) LoadModels(ctx context.Context) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	if e.loaded {
		return nil
	}
	if err := e.client.Probe(ctx); err != nil {
		return domain.ErrModelLoad.WithError(err)
	}
	e.loaded = true
	return nil
}

// Extract runs the full detect -> landmarks -> embed pipeline on one image.
// Zero faces returns domain.ErrNoFaceDetected; multiple faces resolve to
// the highest-confidence detection with TotalFaces reporting the count.
func (e *Extractor) Extract(ctx context.Context, image []byte) (*face.Detection, error) {
	if err := e.LoadModels(ctx); err != nil {
		return nil, err
	}

	imageBase64 := base64.StdEncoding.EncodeToString(image)
	resp, err := e.client.Represent(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("extract descriptor: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	best := resp.Results[0]
	for _, r := range resp.Results[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}

	det := &face.Detection{
		Descriptor: face.Descriptor(best.Embedding),
		Box: face.BoundingBox{
			X:      float64(best.FacialArea.X),
			Y:      float64(best.FacialArea.Y),
			Width:  float64(best.FacialArea.W),
			Height: float64(best.FacialArea.H),
		},
		Confidence: best.Confidence,
		TotalFaces: len(resp.Results),
	}
	if best.Landmarks != nil {
		det.Landmarks = face.Landmarks{
			LeftEye:  toPoints(best.Landmarks.LeftEye),
			RightEye: toPoints(best.Landmarks.RightEye),
		}
	}
	return det, nil
}

func toPoints(coords [][2]float64) []face.Point {
	pts := make([]face.Point, len(coords))
	for i, c := range coords {
		pts[i] = face.Point{X: c[0], Y: c[1]}
	}
	return pts
}

// Ensure Extractor implements face.Extractor
var _ face.Extractor = (*Extractor)(nil)
