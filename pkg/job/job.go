// Package job runs wallpaper work off the polling goroutine and reports progress and the outcome.
//
// A Job is owned by one polling goroutine: Start, Poll and the accessors must not be called
// concurrently. The work itself runs on its own goroutine and talks back only through a channel.
package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dixieflatline76/nitrohydra/util/log"
)

var (
	// ErrRunning is returned by Start while a previous run has not finished.
	ErrRunning = errors.New("job already running")
	// ErrJobCrashed is reported when the worker goroutine ends without a result.
	ErrJobCrashed = errors.New("job crashed")
)

// State is the lifecycle of a job.
type State int

const (
	Idle State = iota
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ProgressFunc reports a free-text status message from inside the work.
type ProgressFunc func(msg string)

// Work is the function a job runs in the background.
type Work[T any] func(ctx context.Context, progress ProgressFunc) (T, error)

// Result is the terminal outcome of a run.
type Result[T any] struct {
	Value T
	Err   error
}

// message is what the worker sends: zero or more status updates, then one terminal result.
type message[T any] struct {
	status string
	done   bool
	result Result[T]
}

// Job runs one Work at a time.
type Job[T any] struct {
	name   string
	id     string
	rx     <-chan message[T]
	cancel context.CancelFunc
	log    string
	status *Result[T]
}

// New creates an idle job. name identifies it in logs (e.g. "apply", "preview").
func New[T any](name string) *Job[T] {
	return &Job[T]{name: name}
}

// Start runs work on a new goroutine. It returns ErrRunning if the previous run has not finished.
func (j *Job[T]) Start(work Work[T]) error {
	if j.rx != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan message[T], 16)
	id := uuid.NewString()

	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Job[%s] %s: panic: %v", j.name, id, r)
				send(ctx, ch, message[T]{done: true, result: Result[T]{Err: fmt.Errorf("%w: %v", ErrJobCrashed, r)}})
			}
		}()

		progress := func(msg string) {
			send(ctx, ch, message[T]{status: msg})
		}
		value, err := work(ctx, progress)
		send(ctx, ch, message[T]{done: true, result: Result[T]{Value: value, Err: err}})
	}()

	log.Debugf("Job[%s] %s: started", j.name, id)
	j.id = id
	j.rx = ch
	j.cancel = cancel
	j.status = nil
	j.log = ""
	return nil
}

// send delivers msg unless the job was abandoned.
func send[T any](ctx context.Context, ch chan<- message[T], msg message[T]) {
	select {
	case ch <- msg:
	case <-ctx.Done():
	}
}

// Poll drains queued messages without blocking. It reports true on the call that observes the
// terminal result; later calls report false until the job is started again.
func (j *Job[T]) Poll() bool {
	if j.rx == nil {
		return false
	}
	for {
		select {
		case msg, ok := <-j.rx:
			if !ok {
				j.finish(Result[T]{Err: fmt.Errorf("%s: %w", j.name, ErrJobCrashed)})
				return true
			}
			if !msg.done {
				j.log = msg.status
				continue
			}
			j.finish(msg.result)
			return true
		default:
			return false
		}
	}
}

func (j *Job[T]) finish(result Result[T]) {
	if result.Err != nil {
		log.Printf("Job[%s] %s: failed: %v", j.name, j.id, result.Err)
	} else {
		log.Debugf("Job[%s] %s: succeeded", j.name, j.id)
	}
	j.status = &result
	j.log = ""
	j.rx = nil
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
}

// Abandon stops waiting for the current run. The work's context is cancelled and its result discarded.
func (j *Job[T]) Abandon() {
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	j.rx = nil
	j.log = ""
}

// IsRunning reports whether a run is in flight.
func (j *Job[T]) IsRunning() bool {
	return j.rx != nil
}

// State returns the lifecycle state.
func (j *Job[T]) State() State {
	switch {
	case j.rx != nil:
		return Running
	case j.status == nil:
		return Idle
	case j.status.Err != nil:
		return Failed
	default:
		return Succeeded
	}
}

// Status returns the terminal result of the last run, if any.
func (j *Job[T]) Status() (Result[T], bool) {
	if j.status == nil {
		return Result[T]{}, false
	}
	return *j.status, true
}

// Log returns the latest progress message of the running job.
func (j *Job[T]) Log() string {
	return j.log
}

// ID returns the identifier of the current or last run.
func (j *Job[T]) ID() string {
	return j.id
}

// ClearStatus forgets the last result.
func (j *Job[T]) ClearStatus() {
	j.status = nil
}
