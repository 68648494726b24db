package liveness

import (
	"math"
)

// DefaultEARThreshold is the eye-aspect-ratio below which an eye counts as
// closed. 0.21 is the conventional value for 6-point eye landmarks.
const DefaultEARThreshold = 0.21

// historySize bounds the retained openness measurements per eye.
const historySize = 30

// Point is a 2D landmark coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func euclidean(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// EyeAspectRatio computes EAR for a 6-point eye outline:
//
//	EAR = (||p2-p6|| + ||p3-p5||) / (2 * ||p1-p4||)
//
// Open eyes sit around 0.3, closed eyes drop toward 0. Returns 0 for
// malformed input (fewer than 6 points or a degenerate horizontal axis).
func EyeAspectRatio(eye []Point) float64 {
	if len(eye) < 6 {
		return 0
	}
	v1 := euclidean(eye[1], eye[5])
	v2 := euclidean(eye[2], eye[4])
	h := euclidean(eye[0], eye[3])
	if h == 0 {
		return 0
	}
	return (v1 + v2) / (2 * h)
}

// State is the liveness classification after the most recent frame.
type State struct {
	AvgEAR         float64 `json:"avg_ear"`
	EyesClosed     bool    `json:"eyes_closed"`
	BlinkConfirmed bool    `json:"blink_confirmed"`
}

// BlinkDetector tracks eye openness across frames and confirms a blink on
// the first open-to-closed transition. Confirmation is monotonic for the
// lifetime of the detector; Reset starts a fresh session.
//
// This is a heuristic anti-spoofing signal against static photos, not a
// cryptographic proof of liveness.
type BlinkDetector struct {
	Threshold float64

	history   []float64
	seenOpen  bool
	confirmed bool
}

// NewBlinkDetector creates a detector with the given EAR threshold;
// threshold <= 0 selects DefaultEARThreshold.
func NewBlinkDetector(threshold float64) *BlinkDetector {
	if threshold <= 0 {
		threshold = DefaultEARThreshold
	}
	return &BlinkDetector{Threshold: threshold}
}

// Update analyzes one frame's eye landmarks and returns the new state.
func (d *BlinkDetector) Update(leftEye, rightEye []Point) State {
	return d.Observe(EyeAspectRatio(leftEye), EyeAspectRatio(rightEye))
}

// Observe ingests precomputed per-eye openness values. Both eyes below the
// threshold counts as closed; a closed frame after at least one open frame
// confirms the blink.
func (d *BlinkDetector) Observe(leftEAR, rightEAR float64) State {
	avg := (leftEAR + rightEAR) / 2

	d.history = append(d.history, avg)
	if len(d.history) > historySize {
		d.history = d.history[len(d.history)-historySize:]
	}

	closed := leftEAR < d.Threshold && rightEAR < d.Threshold
	if closed && d.seenOpen {
		d.confirmed = true
	}
	if !closed {
		d.seenOpen = true
	}

	return State{
		AvgEAR:         avg,
		EyesClosed:     closed,
		BlinkConfirmed: d.confirmed,
	}
}

// Confirmed reports whether a blink has been observed since the last Reset.
func (d *BlinkDetector) Confirmed() bool {
	return d.confirmed
}

// Reset clears all state for a new verification session.
func (d *BlinkDetector) Reset() {
	d.history = d.history[:0]
	d.seenOpen = false
	d.confirmed = false
}
