package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/face"
	"github.com/veridesk/facegate/internal/hrapi"
)

type scriptedMatcher struct {
	responses []*hrapi.MatchFaceResponse
	errs      []error
	calls     int
}

func (m *scriptedMatcher) MatchFace(_ context.Context, _ []byte) (*hrapi.MatchFaceResponse, error) {
	idx := m.calls
	m.calls++
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func TestRemoteStrategy(t *testing.T) {
	t.Run("no match surfaces before the server confirms a blink", func(t *testing.T) {
		s := NewRemoteStrategy(&scriptedMatcher{responses: []*hrapi.MatchFaceResponse{
			{Matched: true, Confidence: 95, BlinkDetection: &hrapi.BlinkDetection{IsBlinking: false}},
		}})
		require.NoError(t, s.Prepare(context.Background()))

		checkpoint, err := s.Check(context.Background(), []byte("frame"))
		require.NoError(t, err)
		assert.True(t, checkpoint.FaceFound)
		assert.False(t, checkpoint.BlinkConfirmed)
		assert.Nil(t, checkpoint.Match)
	})

	t.Run("server blink verdict latches", func(t *testing.T) {
		s := NewRemoteStrategy(&scriptedMatcher{responses: []*hrapi.MatchFaceResponse{
			{Matched: false, BlinkDetection: &hrapi.BlinkDetection{IsBlinking: true}},
			{Matched: true, Confidence: 91, BlinkDetection: &hrapi.BlinkDetection{IsBlinking: false}},
		}})

		checkpoint, err := s.Check(context.Background(), []byte("frame"))
		require.NoError(t, err)
		assert.True(t, checkpoint.BlinkConfirmed)

		checkpoint, err = s.Check(context.Background(), []byte("frame"))
		require.NoError(t, err)
		assert.True(t, checkpoint.BlinkConfirmed, "liveness stays confirmed once seen")
		require.NotNil(t, checkpoint.Match)
		assert.True(t, checkpoint.Match.IsMatch)
		assert.Equal(t, 91.0, checkpoint.Match.Confidence)
	})

	t.Run("rejected match after blink is labeled unknown", func(t *testing.T) {
		s := NewRemoteStrategy(&scriptedMatcher{responses: []*hrapi.MatchFaceResponse{
			{Matched: false, Confidence: 20, BlinkDetection: &hrapi.BlinkDetection{IsBlinking: true}},
		}})

		checkpoint, err := s.Check(context.Background(), []byte("frame"))
		require.NoError(t, err)
		require.NotNil(t, checkpoint.Match)
		assert.False(t, checkpoint.Match.IsMatch)
		assert.Equal(t, face.UnknownLabel, checkpoint.Match.Label)
	})

	t.Run("no face reason is recoverable", func(t *testing.T) {
		s := NewRemoteStrategy(&scriptedMatcher{responses: []*hrapi.MatchFaceResponse{
			{Matched: false, Reason: "No face detected in frame"},
		}})

		checkpoint, err := s.Check(context.Background(), []byte("frame"))
		require.NoError(t, err)
		assert.False(t, checkpoint.FaceFound)
	})

	t.Run("transport errors propagate", func(t *testing.T) {
		s := NewRemoteStrategy(&scriptedMatcher{errs: []error{domain.ErrNetwork}})
		_, err := s.Check(context.Background(), []byte("frame"))
		require.ErrorIs(t, err, domain.ErrNetwork)
	})

	t.Run("teardown drops the latch", func(t *testing.T) {
		s := NewRemoteStrategy(&scriptedMatcher{responses: []*hrapi.MatchFaceResponse{
			{Matched: false, BlinkDetection: &hrapi.BlinkDetection{IsBlinking: true}},
			{Matched: true, BlinkDetection: &hrapi.BlinkDetection{IsBlinking: false}},
		}})

		_, err := s.Check(context.Background(), []byte("frame"))
		require.NoError(t, err)
		s.Teardown()

		checkpoint, err := s.Check(context.Background(), []byte("frame"))
		require.NoError(t, err)
		assert.False(t, checkpoint.BlinkConfirmed)
		assert.Nil(t, checkpoint.Match)
	})
}
