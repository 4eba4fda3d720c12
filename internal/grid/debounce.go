package grid

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet period before a search query is applied.
const DefaultSearchDebounce = 300 * time.Millisecond

// CancelFunc stops a scheduled call. It reports whether the call was
// stopped before it ran.
type CancelFunc func() bool

// Scheduler defers fn by d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

// TimerScheduler schedules on the runtime timer. fn runs on its own goroutine.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// Debouncer runs the most recently triggered function once the quiet
// period has elapsed. At most one call is pending at a time.
type Debouncer struct {
	sched Scheduler
	delay time.Duration

	mu     sync.Mutex
	seq    uint64
	cancel CancelFunc
}

func NewDebouncer(sched Scheduler, delay time.Duration) *Debouncer {
	if sched == nil {
		sched = TimerScheduler{}
	}
	return &Debouncer{sched: sched, delay: delay}
}

// Trigger cancels any pending call and schedules fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.seq++
	seq := d.seq
	d.cancel = d.sched.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not run.
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.cancel = nil
		d.mu.Unlock()
		fn()
	})
}

// Stop cancels the pending call, if any, and reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.cancel == nil {
		return false
	}
	d.cancel()
	d.cancel = nil
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}
