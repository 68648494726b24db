package verify

import (
	"context"
	"strings"

	"github.com/veridesk/facegate/internal/face"
	"github.com/veridesk/facegate/internal/hrapi"
)

// remoteMatcher is the slice of the backend client the remote strategy
// needs, split out for tests.
type remoteMatcher interface {
	MatchFace(ctx context.Context, frame []byte) (*hrapi.MatchFaceResponse, error)
}

// RemoteStrategy delegates matching and liveness to the HR backend. Only
// captured frames are transmitted; descriptors are never computed on the
// agent. The server's per-frame blink verdict is latched so liveness stays
// confirmed for the rest of the session once seen.
type RemoteStrategy struct {
	client         remoteMatcher
	blinkConfirmed bool
}

// NewRemoteStrategy creates a remote strategy with fresh per-session state.
func NewRemoteStrategy(client remoteMatcher) *RemoteStrategy {
	return &RemoteStrategy{client: client}
}

func (s *RemoteStrategy) Name() string { return StrategyRemote }

// Prepare is a no-op; the backend holds the reference material.
func (s *RemoteStrategy) Prepare(ctx context.Context) error { return nil }

func (s *RemoteStrategy) Check(ctx context.Context, frame []byte) (*Checkpoint, error) {
	resp, err := s.client.MatchFace(ctx, frame)
	if err != nil {
		return nil, err
	}

	if !resp.Matched && strings.Contains(strings.ToLower(resp.Reason), "no face") {
		return &Checkpoint{FaceFound: false, BlinkConfirmed: s.blinkConfirmed}, nil
	}

	if resp.BlinkDetection != nil && resp.BlinkDetection.IsBlinking {
		s.blinkConfirmed = true
	}

	checkpoint := &Checkpoint{
		FaceFound:      true,
		TotalFaces:     1,
		BlinkConfirmed: s.blinkConfirmed,
	}

	if s.blinkConfirmed {
		result := &face.MatchResult{
			IsMatch:    resp.Matched,
			Confidence: resp.Confidence,
		}
		if !resp.Matched {
			result.Label = face.UnknownLabel
		}
		checkpoint.Match = result
	}

	return checkpoint, nil
}

// Teardown drops the liveness latch.
func (s *RemoteStrategy) Teardown() {
	s.blinkConfirmed = false
}
