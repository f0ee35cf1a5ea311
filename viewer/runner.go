package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Runner drives a Viewer from a fixed-interval ticker on its own goroutine.
// Other goroutines interact with the viewer only through Post and Do, which
// run their function on the loop goroutine between frames.
type Runner struct {
	v        *Viewer
	interval time.Duration

	// MaxFrames stops the loop after this many frames; 0 runs until stopped.
	MaxFrames int

	cmds     chan func(*Viewer)
	stop     chan struct{}
	exiting  chan struct{} // closed when the loop stops receiving commands
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool

	// mu guards finished; Post holds it for reading while it sends.
	mu       sync.RWMutex
	finished bool

	err error
}

// NewRunner creates a runner stepping v every interval.
func NewRunner(v *Viewer, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Runner{
		v:        v,
		interval: interval,
		cmds:     make(chan func(*Viewer), 64),
		stop:     make(chan struct{}),
		exiting:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the loop on a new goroutine. The runner counts as started
// when Start returns, so a following Stop waits for the loop.
func (r *Runner) Start(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	go r.run(ctx)
}

// Run steps the viewer until ctx is cancelled, Stop is called, MaxFrames is
// reached or a frame fails. The viewer is closed before Run returns.
// Run must be called at most once, and not after Start or Stop.
func (r *Runner) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return errors.New("viewer: runner already started or stopped")
	}
	return r.run(ctx)
}

func (r *Runner) run(ctx context.Context) error {
	err := r.loop(ctx)
	r.finish()
	// Everything Post accepted still runs, before the viewer closes.
	r.drain()
	if cerr := r.v.Close(); cerr != nil && err == nil {
		err = cerr
	}
	r.err = err
	close(r.done)
	return err
}

// finish refuses further commands. Posts blocked on a full queue are
// released first so the write lock cannot wait on them.
func (r *Runner) finish() {
	close(r.exiting)
	r.mu.Lock()
	r.finished = true
	r.mu.Unlock()
}

func (r *Runner) drain() {
	for {
		select {
		case fn := <-r.cmds:
			fn(r.v)
		default:
			return
		}
	}
}

func (r *Runner) loop(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	start := time.Now()
	frames := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.stop:
			return nil
		case fn := <-r.cmds:
			fn(r.v)
		case now := <-ticker.C:
			if err := r.v.Frame(now.Sub(start).Seconds()); err != nil {
				return err
			}
			frames++
			if r.MaxFrames > 0 && frames >= r.MaxFrames {
				slog.Debug("runner reached frame limit", "frames", frames)
				return nil
			}
		}
	}
}

// Post queues fn to run on the loop goroutine. It returns false if the
// runner has already finished; a function it accepted always runs.
func (r *Runner) Post(fn func(*Viewer)) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.finished {
		return false
	}
	select {
	case r.cmds <- fn:
		return true
	case <-r.exiting:
		return false
	}
}

// Do runs fn on the loop goroutine and waits for it to finish. It returns
// false, without running fn, if the runner has already finished.
func (r *Runner) Do(fn func(*Viewer)) bool {
	finished := make(chan struct{})
	if !r.Post(func(v *Viewer) {
		defer close(finished)
		fn(v)
	}) {
		return false
	}
	<-finished
	return true
}

// Stop cancels scheduling and waits until the loop has exited and the
// viewer is closed. It returns the loop's error. Stop is safe to call more
// than once. Stopping a runner that never started marks it finished without
// touching the viewer; Run then fails.
func (r *Runner) Stop() error {
	r.stopOnce.Do(func() { close(r.stop) })
	if r.started.CompareAndSwap(false, true) {
		r.finish()
		close(r.done)
		return nil
	}
	<-r.done
	return r.err
}

// Done is closed once the loop has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}
