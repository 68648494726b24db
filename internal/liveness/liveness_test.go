package liveness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// openEye and closedEye are 6-point outlines with EAR ~0.33 and ~0.07.
var (
	openEye = []Point{
		{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 0}, {X: 2, Y: -1}, {X: 1, Y: -1},
	}
	closedEye = []Point{
		{X: 0, Y: 0}, {X: 1, Y: 0.2}, {X: 2, Y: 0.2}, {X: 3, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 0},
	}
)

func TestEyeAspectRatio(t *testing.T) {
	assert.Greater(t, EyeAspectRatio(openEye), DefaultEARThreshold)
	assert.Less(t, EyeAspectRatio(closedEye), DefaultEARThreshold)
}

func TestEyeAspectRatio_Malformed(t *testing.T) {
	assert.Equal(t, 0.0, EyeAspectRatio(nil))
	assert.Equal(t, 0.0, EyeAspectRatio(openEye[:4]))

	degenerate := []Point{{}, {}, {}, {}, {}, {}}
	assert.Equal(t, 0.0, EyeAspectRatio(degenerate))
}

func TestBlinkDetector_NeverConfirmsWithoutClosedFrame(t *testing.T) {
	d := NewBlinkDetector(0)
	for i := 0; i < 50; i++ {
		st := d.Update(openEye, openEye)
		assert.False(t, st.BlinkConfirmed)
	}
	assert.False(t, d.Confirmed())
}

func TestBlinkDetector_OpenClosedOpenConfirmsOnce(t *testing.T) {
	d := NewBlinkDetector(0)

	st := d.Update(openEye, openEye)
	assert.False(t, st.BlinkConfirmed)

	st = d.Update(closedEye, closedEye)
	assert.True(t, st.EyesClosed)
	assert.True(t, st.BlinkConfirmed)

	// Monotonic: stays confirmed after reopening.
	st = d.Update(openEye, openEye)
	assert.True(t, st.BlinkConfirmed)
	assert.True(t, d.Confirmed())
}

func TestBlinkDetector_ClosedFirstNeedsTransition(t *testing.T) {
	d := NewBlinkDetector(0)

	// A photo with closed eyes must not confirm without an open frame first.
	st := d.Update(closedEye, closedEye)
	assert.False(t, st.BlinkConfirmed)

	d.Update(openEye, openEye)
	st = d.Update(closedEye, closedEye)
	assert.True(t, st.BlinkConfirmed)
}

func TestBlinkDetector_OneEyeClosedIsNotABlink(t *testing.T) {
	d := NewBlinkDetector(0)
	d.Update(openEye, openEye)

	st := d.Update(closedEye, openEye)
	assert.False(t, st.EyesClosed)
	assert.False(t, st.BlinkConfirmed)
}

func TestBlinkDetector_Reset(t *testing.T) {
	d := NewBlinkDetector(0)
	d.Update(openEye, openEye)
	d.Update(closedEye, closedEye)
	assert.True(t, d.Confirmed())

	d.Reset()
	assert.False(t, d.Confirmed())

	st := d.Update(closedEye, closedEye)
	assert.False(t, st.BlinkConfirmed, "reset state must require a fresh open-closed transition")
}

func TestBlinkDetector_HistoryBounded(t *testing.T) {
	d := NewBlinkDetector(0)
	for i := 0; i < historySize*3; i++ {
		d.Update(openEye, openEye)
	}
	assert.LessOrEqual(t, len(d.history), historySize)
}
