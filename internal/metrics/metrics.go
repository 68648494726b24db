// Package metrics keeps in-memory counters and latency samples for the
// verification pipeline. Nothing is persisted; the recorder exists so the
// status endpoint and logs can report how the kiosk has been behaving since
// start.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// maxSamples bounds the latency reservoir per operation.
const maxSamples = 1024

// Outcome labels how a verification session ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Snapshot is a point-in-time copy of the recorder's state.
type Snapshot struct {
	Since             time.Time          `json:"since"`
	SessionsStarted   int64              `json:"sessions_started"`
	SessionsSucceeded int64              `json:"sessions_succeeded"`
	SessionsFailed    int64              `json:"sessions_failed"`
	SessionsCancelled int64              `json:"sessions_cancelled"`
	FailuresByCode    map[string]int64   `json:"failures_by_code,omitempty"`
	FramesChecked     int64              `json:"frames_checked"`
	FramesNoFace      int64              `json:"frames_no_face"`
	BlinksConfirmed   int64              `json:"blinks_confirmed"`
	Submissions       int64              `json:"submissions"`
	Latencies         map[string]Latency `json:"latencies,omitempty"`
}

// Latency summarizes one operation's samples.
type Latency struct {
	Count int64         `json:"count"`
	Avg   time.Duration `json:"avg"`
	P95   time.Duration `json:"p95"`
	Max   time.Duration `json:"max"`
}

// Recorder accumulates pipeline metrics. Safe for concurrent use.
type Recorder struct {
	mu                sync.Mutex
	since             time.Time
	sessionsStarted   int64
	sessionsSucceeded int64
	sessionsFailed    int64
	sessionsCancelled int64
	failuresByCode    map[string]int64
	framesChecked     int64
	framesNoFace      int64
	blinksConfirmed   int64
	submissions       int64
	samples           map[string][]time.Duration
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		since:          time.Now().UTC(),
		failuresByCode: make(map[string]int64),
		samples:        make(map[string][]time.Duration),
	}
}

// SessionStarted counts a new verification session.
func (r *Recorder) SessionStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionsStarted++
}

// SessionEnded counts a finished session. code is the terminal error code
// for failed sessions and ignored otherwise.
func (r *Recorder) SessionEnded(outcome Outcome, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch outcome {
	case OutcomeSucceeded:
		r.sessionsSucceeded++
	case OutcomeCancelled:
		r.sessionsCancelled++
	case OutcomeFailed:
		r.sessionsFailed++
		if code != "" {
			r.failuresByCode[code]++
		}
	}
}

// FrameChecked counts one capture attempt and whether a face was found.
func (r *Recorder) FrameChecked(faceFound bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.framesChecked++
	if !faceFound {
		r.framesNoFace++
	}
}

// BlinkConfirmed counts a liveness confirmation.
func (r *Recorder) BlinkConfirmed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blinksConfirmed++
}

// SubmissionAccepted counts a successful attendance submission.
func (r *Recorder) SubmissionAccepted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions++
}

// ObserveLatency records one duration sample for the named operation.
func (r *Recorder) ObserveLatency(operation string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	samples := r.samples[operation]
	if len(samples) >= maxSamples {
		copy(samples, samples[1:])
		samples = samples[:len(samples)-1]
	}
	r.samples[operation] = append(samples, d)
}

// Snapshot copies the current state.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Since:             r.since,
		SessionsStarted:   r.sessionsStarted,
		SessionsSucceeded: r.sessionsSucceeded,
		SessionsFailed:    r.sessionsFailed,
		SessionsCancelled: r.sessionsCancelled,
		FramesChecked:     r.framesChecked,
		FramesNoFace:      r.framesNoFace,
		BlinksConfirmed:   r.blinksConfirmed,
		Submissions:       r.submissions,
	}

	if len(r.failuresByCode) > 0 {
		snap.FailuresByCode = make(map[string]int64, len(r.failuresByCode))
		for code, n := range r.failuresByCode {
			snap.FailuresByCode[code] = n
		}
	}

	if len(r.samples) > 0 {
		snap.Latencies = make(map[string]Latency, len(r.samples))
		for op, samples := range r.samples {
			snap.Latencies[op] = summarize(samples)
		}
	}

	return snap
}

func summarize(samples []time.Duration) Latency {
	if len(samples) == 0 {
		return Latency{}
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	p95Idx := (len(sorted) * 95) / 100
	if p95Idx >= len(sorted) {
		p95Idx = len(sorted) - 1
	}

	return Latency{
		Count: int64(len(sorted)),
		Avg:   total / time.Duration(len(sorted)),
		P95:   sorted[p95Idx],
		Max:   sorted[len(sorted)-1],
	}
}
