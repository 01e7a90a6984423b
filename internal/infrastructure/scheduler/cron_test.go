package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCronSchedulerRejectsBadExpression(t *testing.T) {
	t.Parallel()

	_, err := NewCronScheduler("every tuesday")
	assert.ErrorContains(t, err, "every tuesday")
}

func TestCronSchedulerNext(t *testing.T) {
	t.Parallel()

	s, err := NewCronScheduler("*/30 * * * *")
	require.NoError(t, err)

	from := time.Date(2026, 10, 15, 9, 10, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC), s.Next(from))
}

func TestCronSchedulerRunsJob(t *testing.T) {
	t.Parallel()

	s, err := NewCronScheduler("@every 1s")
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(100) }))

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.Less(t, runs.Load(), int32(100))
	assert.NoError(t, s.Stop(context.Background()))
}
