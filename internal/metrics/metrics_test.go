package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder()

	r.SessionStarted()
	r.SessionStarted()
	r.SessionEnded(OutcomeSucceeded, "")
	r.SessionEnded(OutcomeFailed, "ATTEMPTS_EXHAUSTED")
	r.SessionEnded(OutcomeFailed, "ATTEMPTS_EXHAUSTED")
	r.SessionEnded(OutcomeCancelled, "")
	r.FrameChecked(true)
	r.FrameChecked(false)
	r.BlinkConfirmed()
	r.SubmissionAccepted()

	snap := r.Snapshot()
	assert.Equal(t, int64(2), snap.SessionsStarted)
	assert.Equal(t, int64(1), snap.SessionsSucceeded)
	assert.Equal(t, int64(2), snap.SessionsFailed)
	assert.Equal(t, int64(1), snap.SessionsCancelled)
	assert.Equal(t, int64(2), snap.FailuresByCode["ATTEMPTS_EXHAUSTED"])
	assert.Equal(t, int64(2), snap.FramesChecked)
	assert.Equal(t, int64(1), snap.FramesNoFace)
	assert.Equal(t, int64(1), snap.BlinksConfirmed)
	assert.Equal(t, int64(1), snap.Submissions)
}

func TestRecorderLatencies(t *testing.T) {
	r := NewRecorder()
	for i := 1; i <= 100; i++ {
		r.ObserveLatency("match", time.Duration(i)*time.Millisecond)
	}

	snap := r.Snapshot()
	lat, ok := snap.Latencies["match"]
	require.True(t, ok)
	assert.Equal(t, int64(100), lat.Count)
	assert.Equal(t, 100*time.Millisecond, lat.Max)
	assert.InDelta(t, float64(96*time.Millisecond), float64(lat.P95), float64(time.Millisecond))
	assert.Equal(t, 50500*time.Microsecond, lat.Avg)
}

func TestRecorderSampleBound(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < maxSamples+100; i++ {
		r.ObserveLatency("capture", time.Millisecond)
	}

	snap := r.Snapshot()
	assert.Equal(t, int64(maxSamples), snap.Latencies["capture"].Count)
}

func TestRecorderConcurrency(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.SessionStarted()
				r.FrameChecked(j%2 == 0)
				r.ObserveLatency("capture", time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := r.Snapshot()
	assert.Equal(t, int64(800), snap.SessionsStarted)
	assert.Equal(t, int64(800), snap.FramesChecked)
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder()
	r.SessionEnded(OutcomeFailed, "NETWORK_ERROR")

	snap := r.Snapshot()
	snap.FailuresByCode["NETWORK_ERROR"] = 99

	assert.Equal(t, int64(1), r.Snapshot().FailuresByCode["NETWORK_ERROR"])
}
