package taskpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolRunsSubmittedFactory(t *testing.T) {
	pool := NewPool(2, 4)
	defer pool.Close()

	var ran int32
	err := pool.Submit(context.Background(), func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestPoolWrapsFactoryError(t *testing.T) {
	pool := NewPool(1, 4)
	defer pool.Close()

	sentinel := errors.New("boom")
	err := pool.Submit(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	require.Error(t, err)
	var wrapped *UserTaskCreationError
	require.ErrorAs(t, err, &wrapped)
	require.ErrorIs(t, err, sentinel)
}

func TestPoolFIFOOrdering(t *testing.T) {
	pool := NewPool(1, 8)
	defer pool.Close()

	order := make([]int, 0, 5)
	results := make(chan int, 5)
	for i := range 5 {
		i := i
		go func() {
			_ = pool.Submit(context.Background(), func(ctx context.Context) error {
				results <- i
				return nil
			})
		}()
		time.Sleep(2 * time.Millisecond) // keep submission order stable for this single-worker pool
	}
	for range 5 {
		order = append(order, <-results)
	}
	require.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSetPoolSizeGrowsImmediately(t *testing.T) {
	pool := NewPool(1, 8)
	defer pool.Close()
	require.Equal(t, 1, pool.Size())

	require.NoError(t, pool.SetPoolSize(4))
	require.Equal(t, 4, pool.Size())
}

func TestSetPoolSizeShrinkDoesNotAbortRunningTask(t *testing.T) {
	pool := NewPool(2, 8)
	defer pool.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	doneCh := make(chan error, 1)
	go func() {
		doneCh <- pool.Submit(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	require.NoError(t, pool.SetPoolSize(1))
	close(release)

	select {
	case err := <-doneCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("running task was aborted by shrink")
	}
}

func TestPoolSubmitAfterCloseErrors(t *testing.T) {
	pool := NewPool(1, 4)
	require.NoError(t, pool.Close())

	err := pool.Submit(context.Background(), func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolSetPoolSizeRejectsZero(t *testing.T) {
	pool := NewPool(1, 4)
	defer pool.Close()
	require.Error(t, pool.SetPoolSize(0))
}
