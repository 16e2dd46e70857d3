package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execRecorder struct {
	mu     stdsync.Mutex
	params []string
}

func (r *execRecorder) record(_ context.Context, p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = append(r.params, p)
}

func (r *execRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.params...)
}

func TestDebouncer_CoalescesBurstToLastParams(t *testing.T) {
	rec := &execRecorder{}
	d := newDebouncer("test_op", 30*time.Millisecond, rec.record, slog.Default())
	defer d.Close()

	d.Request("k", "first")
	d.Request("k", "second")
	d.Request("k", "third")

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"third"}, rec.snapshot())

	// No stray second execution after the window.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, []string{"third"}, rec.snapshot())
}

func TestDebouncer_SeparateWindowsExecuteSeparately(t *testing.T) {
	rec := &execRecorder{}
	d := newDebouncer("test_op", 20*time.Millisecond, rec.record, slog.Default())
	defer d.Close()

	d.Request("k", "first")
	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	d.Request("k", "second")
	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"first", "second"}, rec.snapshot())
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	rec := &execRecorder{}
	d := newDebouncer("test_op", 20*time.Millisecond, rec.record, slog.Default())
	defer d.Close()

	d.Request("a", "from-a")
	d.Request("b", "from-b")

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	assert.ElementsMatch(t, []string{"from-a", "from-b"}, rec.snapshot())
}

func TestDebouncer_RequestDuringRunReschedules(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	rec := &execRecorder{}

	run := func(ctx context.Context, p string) {
		rec.record(ctx, p)
		if p == "slow" {
			close(started)
			<-release
		}
	}
	d := newDebouncer("test_op", 10*time.Millisecond, run, slog.Default())
	defer d.Close()

	d.Request("k", "slow")
	<-started

	// Arrives while the first execution is still running; it must not be
	// dropped.
	d.Request("k", "queued")
	close(release)

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"slow", "queued"}, rec.snapshot())

	require.Eventually(t, d.idle, time.Second, 5*time.Millisecond)
}

func TestDebouncer_CloseCancelsPendingWindow(t *testing.T) {
	rec := &execRecorder{}
	d := newDebouncer("test_op", 20*time.Millisecond, rec.record, slog.Default())

	d.Request("k", "never")
	d.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
	assert.True(t, d.idle())

	// Requests after Close are ignored.
	d.Request("k", "late")
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}
