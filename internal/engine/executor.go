package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrExecutorClosed is returned by Submit once the executor has been closed.
var ErrExecutorClosed = errors.New("engine: executor is closed")

// Task is the unit of work a ManagedExecutor runs: it receives a context and
// returns a result or an error.
type Task func(ctx context.Context) (any, error)

// Ticket represents a task that has been admitted into the executor (i.e.
// it has claimed a concurrency slot) but may not yet have completed. This
// two-stage split - admission, then completion - is what lets a caller
// apply backpressure (block in Submit until a slot is free) independently
// of waiting for the work itself to finish.
type Ticket struct {
	done   chan struct{}
	result any
	err    error
}

// Wait blocks until the ticket's task completes, or ctx is canceled first.
func (t *Ticket) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ManagedExecutor runs Tasks with a bounded, adjustable degree of
// parallelism. Capacity is enforced by a plain mutex-guarded counter rather
// than a fixed-size channel, so that SetParallelism can change the limit
// without having to reallocate or drain anything: growing the limit wakes
// any admission waiters immediately, while shrinking blocks the caller
// until enough in-flight tasks finish on their own that InUse has actually
// dropped to the new capacity, so InUse never observably exceeds Capacity.
// No running task is ever interrupted by a capacity change.
type ManagedExecutor struct {
	mu      sync.Mutex
	pauseMu sync.Mutex // serializes SetParallelism; held for the duration of a shrink's wait

	capacity int
	inUse    int
	closed   bool
	waitCh   chan struct{} // closed and replaced whenever state changes that might unblock a waiter
	wg       sync.WaitGroup
}

// NewManagedExecutor creates an executor with the given initial parallelism.
// capacity must be at least 1.
func NewManagedExecutor(capacity int) *ManagedExecutor {
	if capacity < 1 {
		capacity = 1
	}
	return &ManagedExecutor{
		capacity: capacity,
		waitCh:   make(chan struct{}),
	}
}

// Capacity returns the executor's current configured parallelism.
func (e *ManagedExecutor) Capacity() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capacity
}

// InUse returns the number of tasks currently holding a concurrency slot.
func (e *ManagedExecutor) InUse() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inUse
}

// acquire blocks until a concurrency slot is available, the executor is
// closed, or ctx is canceled.
func (e *ManagedExecutor) acquire(ctx context.Context) error {
	for {
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return ErrExecutorClosed
		}
		if e.inUse < e.capacity {
			e.inUse++
			e.mu.Unlock()
			return nil
		}
		ch := e.waitCh
		e.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e *ManagedExecutor) release() {
	e.mu.Lock()
	e.inUse--
	e.notifyLocked()
	e.mu.Unlock()
}

// notifyLocked wakes every goroutine blocked in acquire. Must be called
// with mu held.
func (e *ManagedExecutor) notifyLocked() {
	close(e.waitCh)
	e.waitCh = make(chan struct{})
}

// Submit blocks until a concurrency slot is available (or ctx is canceled),
// then starts the task's completion phase in a new goroutine and returns
// immediately with a Ticket the caller can Wait on.
func (e *ManagedExecutor) Submit(ctx context.Context, task Task) (*Ticket, error) {
	if err := e.acquire(ctx); err != nil {
		return nil, err
	}

	ticket := &Ticket{done: make(chan struct{})}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.release()
		ticket.result, ticket.err = task(ctx)
		close(ticket.done)
	}()

	return ticket, nil
}

// SetParallelism changes the executor's capacity. Growing takes effect
// immediately: waiters blocked in Submit are woken right away. Shrinking
// blocks the caller (this is IncrementParallelism/DecrementParallelism's
// "pause lock", per spec.md §4.8) until enough in-flight tasks have
// finished on their own that InUse has actually dropped to the requested
// capacity - only then is the lower capacity published - so the invariant
// "inner tasks not yet completed <= Capacity" (spec.md §8) is never
// observably violated, and no running task is ever interrupted.
func (e *ManagedExecutor) SetParallelism(n int) error {
	if n < 1 {
		return fmt.Errorf("engine: parallelism must be >= 1, got %d", n)
	}

	e.pauseMu.Lock()
	defer e.pauseMu.Unlock()

	for {
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return ErrExecutorClosed
		}
		if n >= e.capacity || e.inUse <= n {
			if n != e.capacity {
				e.capacity = n
				e.notifyLocked()
			}
			e.mu.Unlock()
			return nil
		}
		// Shrinking below the current in-flight count: wait for a running
		// task to release its slot before the lower capacity is published.
		ch := e.waitCh
		e.mu.Unlock()
		<-ch
	}
}

// Close marks the executor closed to further submissions and waits for all
// in-flight tasks to finish.
func (e *ManagedExecutor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.notifyLocked()
	e.mu.Unlock()

	e.wg.Wait()
	return nil
}
