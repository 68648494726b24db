package facemock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/face"
	"github.com/veridesk/facegate/internal/liveness"
)

func TestExtractor_Deterministic(t *testing.T) {
	e := New()
	img := []byte("the same frame every time....")

	a, err := e.Extract(context.Background(), img)
	require.NoError(t, err)
	b, err := e.Extract(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, a.Descriptor, b.Descriptor)
	assert.InDelta(t, 0.0, face.EuclideanDistance(a.Descriptor, b.Descriptor), 1e-12)
}

func TestExtractor_DistinctImagesAreDistant(t *testing.T) {
	e := New()

	a, err := e.Extract(context.Background(), []byte("frame of employee alice"))
	require.NoError(t, err)
	b, err := e.Extract(context.Background(), []byte("frame of a total stranger"))
	require.NoError(t, err)

	assert.Greater(t, face.EuclideanDistance(a.Descriptor, b.Descriptor), face.DefaultThreshold)
}

func TestExtractor_TinyImageIsNoFace(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), []byte("x"))
	assert.True(t, errors.Is(err, domain.ErrNoFaceDetected))
}

func TestExtractor_EyeScriptDrivesBlink(t *testing.T) {
	e := New()
	e.EyeScript = []float64{0.3, 0.05, 0.3} // open, closed, open

	d := liveness.NewBlinkDetector(0)
	img := []byte("a frame with plenty of bytes")

	for i := 0; i < 3; i++ {
		det, err := e.Extract(context.Background(), img)
		require.NoError(t, err)
		d.Update(toLivenessPoints(det.Landmarks.LeftEye), toLivenessPoints(det.Landmarks.RightEye))
	}
	assert.True(t, d.Confirmed())
}

func toLivenessPoints(pts []face.Point) []liveness.Point {
	out := make([]liveness.Point, len(pts))
	for i, p := range pts {
		out[i] = liveness.Point{X: p.X, Y: p.Y}
	}
	return out
}
