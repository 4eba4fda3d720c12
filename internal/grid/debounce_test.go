package grid

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncerLatestTriggerWins(t *testing.T) {
	t.Parallel()

	sched := &manualScheduler{}
	d := NewDebouncer(sched, 300*time.Millisecond)

	var got []string
	d.Trigger(func() { got = append(got, "a") })
	d.Trigger(func() { got = append(got, "ab") })
	d.Trigger(func() { got = append(got, "abc") })
	require.Equal(t, 1, sched.Live())
	require.True(t, d.Pending())

	require.Equal(t, 1, sched.Fire())
	require.Equal(t, []string{"abc"}, got)
	require.False(t, d.Pending())
}

func TestDebouncerStop(t *testing.T) {
	t.Parallel()

	sched := &manualScheduler{}
	d := NewDebouncer(sched, time.Second)
	ran := false
	d.Trigger(func() { ran = true })
	require.True(t, d.Stop())
	require.False(t, d.Stop())
	require.Zero(t, sched.Fire())
	require.False(t, ran)
}

func TestDebouncerWithTimerScheduler(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(nil, 10*time.Millisecond)
	var calls atomic.Int32
	done := make(chan struct{}, 1)
	for i := 0; i < 5; i++ {
		d.Trigger(func() {
			calls.Add(1)
			done <- struct{}{}
		})
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}
