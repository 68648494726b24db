package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttemptLimiter(t *testing.T) {
	t.Run("exhausts at the limit", func(t *testing.T) {
		l := NewAttemptLimiter(3, time.Minute)
		assert.False(t, l.RecordFailure())
		assert.False(t, l.RecordFailure())
		assert.True(t, l.RecordFailure())
		assert.True(t, l.Exhausted())
		assert.Equal(t, 0, l.Remaining())
	})

	t.Run("window slides", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		l := NewAttemptLimiter(2, 10*time.Minute)
		l.now = func() time.Time { return now }

		assert.False(t, l.RecordFailure())
		assert.True(t, l.RecordFailure())
		assert.True(t, l.Exhausted())

		now = now.Add(11 * time.Minute)
		assert.False(t, l.Exhausted())
		assert.Equal(t, 2, l.Remaining())
	})

	t.Run("reset clears the budget", func(t *testing.T) {
		l := NewAttemptLimiter(1, time.Minute)
		assert.True(t, l.RecordFailure())
		l.Reset()
		assert.False(t, l.Exhausted())
	})

	t.Run("zero limit disables limiting", func(t *testing.T) {
		l := NewAttemptLimiter(0, time.Minute)
		for i := 0; i < 100; i++ {
			assert.False(t, l.RecordFailure())
		}
		assert.False(t, l.Exhausted())
		assert.Equal(t, -1, l.Remaining())
	})
}
