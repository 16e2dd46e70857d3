package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/emperorhan/wallet-balance-sync/internal/metrics"
)

type phase int

const (
	phaseIdle phase = iota
	phaseScheduled
	phaseRunning
)

// debouncer coalesces bursts of requests into one trailing-edge execution
// per operation key. Guarantees, per key: at most one execution in flight;
// requests are never dropped, only coalesced; the execution uses the most
// recent request's parameters.
type debouncer[P any] struct {
	op     string
	window time.Duration
	run    func(ctx context.Context, params P)
	logger *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	states map[string]*keyState[P]
	closed bool
}

type keyState[P any] struct {
	phase  phase
	timer  *time.Timer
	params P
	// pending marks a request that arrived while Running; completion
	// transitions straight back to Scheduled. At most one is held.
	pending bool
}

func newDebouncer[P any](op string, window time.Duration, run func(ctx context.Context, params P), logger *slog.Logger) *debouncer[P] {
	ctx, cancel := context.WithCancel(context.Background())
	return &debouncer[P]{
		op:      op,
		window:  window,
		run:     run,
		logger:  logger.With("component", "debouncer", "operation", op),
		baseCtx: ctx,
		cancel:  cancel,
		states:  make(map[string]*keyState[P]),
	}
}

// Request records a request for the key. Within an open window only the
// latest parameters survive; the window resets on every request.
func (d *debouncer[P]) Request(key string, params P) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	metrics.DebounceRequests.WithLabelValues(d.op).Inc()

	st, ok := d.states[key]
	if !ok {
		st = &keyState[P]{}
		d.states[key] = st
	}

	switch st.phase {
	case phaseIdle:
		st.phase = phaseScheduled
		st.params = params
		st.timer = time.AfterFunc(d.window, func() { d.fire(key) })

	case phaseScheduled:
		metrics.DebounceCoalesced.WithLabelValues(d.op).Inc()
		st.params = params
		st.timer.Stop()
		st.timer = time.AfterFunc(d.window, func() { d.fire(key) })

	case phaseRunning:
		metrics.DebounceCoalesced.WithLabelValues(d.op).Inc()
		st.params = params
		st.pending = true
	}
}

func (d *debouncer[P]) fire(key string) {
	d.mu.Lock()
	st := d.states[key]
	if st == nil || st.phase != phaseScheduled {
		// A newer request already rescheduled or the debouncer closed.
		d.mu.Unlock()
		return
	}
	st.phase = phaseRunning
	st.pending = false
	params := st.params
	d.mu.Unlock()

	metrics.DebounceExecutions.WithLabelValues(d.op).Inc()
	d.run(d.baseCtx, params)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		st.phase = phaseIdle
		return
	}
	if st.pending {
		st.pending = false
		st.phase = phaseScheduled
		st.timer = time.AfterFunc(d.window, func() { d.fire(key) })
		return
	}
	st.phase = phaseIdle
}

// Close cancels pending windows and the execution context. Executions
// already running complete; no new ones start.
func (d *debouncer[P]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, st := range d.states {
		if st.timer != nil {
			st.timer.Stop()
		}
		if st.phase == phaseScheduled {
			st.phase = phaseIdle
		}
		st.pending = false
	}
	d.mu.Unlock()
	d.cancel()
}

// idle reports whether no key is scheduled or running. Used by tests and
// drain paths.
func (d *debouncer[P]) idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, st := range d.states {
		if st.phase != phaseIdle {
			return false
		}
	}
	return true
}
