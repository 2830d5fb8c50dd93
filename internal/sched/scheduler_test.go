package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImmediateRun(t *testing.T) {
	var runs atomic.Int64
	s := New(func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	defer s.Stop()

	// A far-future schedule so only the immediate run fires.
	require.NoError(t, s.Start(context.Background(), "0 0 0 1 1 *", true))
	assert.Equal(t, int64(1), runs.Load())
	assert.False(t, s.Busy())
}

func TestInvalidSchedule(t *testing.T) {
	s := New(func(ctx context.Context) error { return nil })
	err := s.Start(context.Background(), "not a schedule", false)
	require.Error(t, err)
}

func TestOverlappingTickSkipped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int64

	s := New(func(ctx context.Context) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	})

	go s.tick(context.Background())
	<-started
	assert.True(t, s.Busy())

	// A second tick while the first is held must be dropped.
	s.tick(context.Background())
	assert.Equal(t, int64(1), runs.Load())
	assert.Equal(t, int64(1), s.Skipped())

	close(release)
	require.Eventually(t, func() bool { return !s.Busy() }, time.Second, 5*time.Millisecond)
}
