// Package verify orchestrates one biometric attendance verification: the
// geofence gate, the camera, liveness and face matching, and the final
// submission to the HR backend. All biometric material lives in memory for
// the lifetime of a single session and is purged when the session ends.
package verify

// State is the verification session state.
type State int

const (
	StateIdle State = iota
	StateGeoPending
	StateGeoBlocked
	StateGeoOK
	StateCameraStarting
	StateCameraReady
	StateCapturing
	StateLivenessWaiting
	StateMatching
	StateSucceeded
	StateFailed
	StateTerminal
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateGeoPending:      "geo_pending",
	StateGeoBlocked:      "geo_blocked",
	StateGeoOK:           "geo_ok",
	StateCameraStarting:  "camera_starting",
	StateCameraReady:     "camera_ready",
	StateCapturing:       "capturing",
	StateLivenessWaiting: "liveness_waiting",
	StateMatching:        "matching",
	StateSucceeded:       "succeeded",
	StateFailed:          "failed",
	StateTerminal:        "terminal",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further verification work can happen in s.
func (s State) Terminal() bool {
	return s == StateFailed || s == StateTerminal
}

// CanStart reports whether the camera may be requested from s. The camera
// is never touched while the geofence gate is closed.
func (s State) CanStart() bool {
	return s == StateGeoOK
}

// CanCapture reports whether a capture attempt may run from s.
func (s State) CanCapture() bool {
	return s == StateCameraReady || s == StateLivenessWaiting
}
