package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(onChange func(from, to State)) (*Breaker, *time.Time) {
	now := time.Now()
	b := New(Config{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Second,
		OnStateChange:    onChange,
	})
	b.nowFn = func() time.Time { return now }
	return b, &now
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(nil)

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
	require.NoError(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b, _ := newTestBreaker(nil)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenAfterTimeoutThenCloses(t *testing.T) {
	b, now := newTestBreaker(nil)

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	assert.ErrorIs(t, b.Allow(), ErrOpen)

	*now = now.Add(11 * time.Second)
	require.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	b.RecordSuccess()
	assert.Equal(t, StateHalfOpen, b.State())
	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(nil)

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	*now = now.Add(11 * time.Second)
	require.NoError(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreaker_StateChangeCallback(t *testing.T) {
	var transitions [][2]State
	b, now := newTestBreaker(func(from, to State) {
		transitions = append(transitions, [2]State{from, to})
	})

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	*now = now.Add(11 * time.Second)
	_ = b.Allow()
	b.RecordSuccess()
	b.RecordSuccess()

	assert.Equal(t, [][2]State{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, transitions)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half_open", StateHalfOpen.String())
}
