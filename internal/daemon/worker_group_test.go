package daemon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerGroup_GoRunsWorker(t *testing.T) {
	var g WorkerGroup
	var ran atomic.Bool

	ok := g.Go(func() { ran.Store(true) })
	assert.True(t, ok)

	require.NoError(t, g.StopAndWait(context.Background()))
	assert.True(t, ran.Load())
}

func TestWorkerGroup_NilWorkerRejected(t *testing.T) {
	var g WorkerGroup
	assert.False(t, g.Go(nil))
}

func TestWorkerGroup_NoNewWorkersAfterStop(t *testing.T) {
	var g WorkerGroup
	require.NoError(t, g.StopAndWait(context.Background()))

	assert.False(t, g.Go(func() { t.Error("worker started after stop") }))
}

func TestWorkerGroup_StopHonorsContext(t *testing.T) {
	var g WorkerGroup
	release := make(chan struct{})
	g.Go(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.StopAndWait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, g.StopAndWait(context.Background()))
}
