package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Lane funnels all session-touching work through a single execution lane.
// The host session is single-threaded and not safe for interleaved mutation
// or observation, while the transport may accept calls concurrently; the
// lane is the one synchronization point between the two.
//
// Guarantees:
//   - at most one job runs at a time
//   - jobs run in arrival order (channel send order is FIFO)
//   - a job does not start until the previous job's outcome has been
//     fully produced
//
// A caller whose context expires stops waiting and receives ErrTimeout, but
// a job already running is NOT interrupted: the session has no cancellation
// primitive, so the lane stays busy until the host returns. A job whose
// caller gave up before it started is skipped.
type Lane struct {
	jobs chan *laneJob

	closeOnce sync.Once
	closed    chan struct{}
	drained   chan struct{}
}

type laneJob struct {
	ctx  context.Context
	fn   func(ctx context.Context) (Result, error)
	done chan laneOutcome
}

type laneOutcome struct {
	res Result
	err error
}

// NewLane creates a lane and starts its worker goroutine. Callers must
// Close the lane when done with it.
func NewLane() *Lane {
	l := &Lane{
		jobs:    make(chan *laneJob),
		closed:  make(chan struct{}),
		drained: make(chan struct{}),
	}
	go l.work()
	return l
}

func (l *Lane) work() {
	defer close(l.drained)
	for {
		select {
		case j := <-l.jobs:
			l.runJob(j)
		case <-l.closed:
			return
		}
	}
}

func (l *Lane) runJob(j *laneJob) {
	// The caller may have stopped waiting while the job was queued
	// behind a long evaluation; skip it rather than mutate the session
	// on behalf of nobody.
	if err := j.ctx.Err(); err != nil {
		j.done <- laneOutcome{err: err}
		return
	}
	res, err := j.fn(j.ctx)
	j.done <- laneOutcome{res: res, err: err}
}

// Do submits fn to the lane and waits for its outcome. If ctx expires while
// waiting — whether queued or mid-execution — Do returns ErrTimeout; in the
// mid-execution case the underlying host work is not stopped and may still
// complete afterwards.
func (l *Lane) Do(ctx context.Context, fn func(ctx context.Context) (Result, error)) (Result, error) {
	j := &laneJob{
		ctx: ctx,
		fn:  fn,
		// Buffered so the worker never blocks handing an outcome to a
		// caller that already gave up.
		done: make(chan laneOutcome, 1),
	}

	select {
	case l.jobs <- j:
	case <-l.closed:
		return Result{}, ErrClosed
	case <-ctx.Done():
		return Result{}, wrapCtxErr(ctx.Err())
	}

	select {
	case out := <-j.done:
		if out.err != nil && isCtxErr(out.err) {
			return Result{}, wrapCtxErr(out.err)
		}
		return out.res, out.err
	case <-ctx.Done():
		return Result{}, wrapCtxErr(ctx.Err())
	}
}

// Close shuts the lane down. Jobs already handed to the worker finish;
// queued callers receive ErrClosed.
func (l *Lane) Close() {
	l.closeOnce.Do(func() {
		close(l.closed)
	})
	<-l.drained
}

func isCtxErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func wrapCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
