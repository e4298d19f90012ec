package monitor

import (
	"sync"
	"sync/atomic"
	"time"
)

// StopReason records why a checkpoint asked the engine to stop.
type StopReason int32

const (
	StopNone StopReason = iota
	StopCallback
	StopDeadline
)

func (r StopReason) String() string {
	switch r {
	case StopCallback:
		return "callback"
	case StopDeadline:
		return "deadline"
	default:
		return "none"
	}
}

// Descriptor is the mutable progress and cancellation state shared with
// the engine for the duration of one recognition call. The engine writes
// progress and calls Checkpoint; the owner may change the deadline and
// cancellation source at any time.
type Descriptor struct {
	progress atomic.Int32
	words    atomic.Int64
	deadline atomic.Int64 // unix nanoseconds, 0 = no limit
	stopped  atomic.Int32

	mu     sync.Mutex
	source CancellationSource

	now func() time.Time
}

func newDescriptor() *Descriptor {
	return &Descriptor{now: time.Now}
}

// SetProgress records the engine's progress, clamped to 0..100.
func (d *Descriptor) SetProgress(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	d.progress.Store(int32(percent))
}

// Progress returns the last value written by the engine.
func (d *Descriptor) Progress() int {
	return int(d.progress.Load())
}

// WordsProcessed returns the word count seen at the last checkpoint.
func (d *Descriptor) WordsProcessed() int {
	return int(d.words.Load())
}

// SetDeadlineAt sets an absolute deadline. The zero time clears it.
func (d *Descriptor) SetDeadlineAt(t time.Time) {
	if t.IsZero() {
		d.deadline.Store(0)
		return
	}
	d.deadline.Store(t.UnixNano())
}

// Deadline returns the absolute deadline and whether one is set.
func (d *Descriptor) Deadline() (time.Time, bool) {
	ns := d.deadline.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

// DeadlineExceeded reports whether a set deadline has passed.
func (d *Descriptor) DeadlineExceeded() bool {
	ns := d.deadline.Load()
	return ns != 0 && d.now().UnixNano() > ns
}

func (d *Descriptor) setSource(src CancellationSource) {
	d.mu.Lock()
	d.source = src
	d.mu.Unlock()
}

// Checkpoint is called by the engine roughly once per processed word. It
// returns true when the engine should stop: the deadline is checked first,
// then the cancellation source. The first stop reason sticks.
func (d *Descriptor) Checkpoint(wordsProcessed int) bool {
	d.words.Store(int64(wordsProcessed))

	if StopReason(d.stopped.Load()) != StopNone {
		return true
	}
	if d.DeadlineExceeded() {
		d.stopped.CompareAndSwap(int32(StopNone), int32(StopDeadline))
		return true
	}

	d.mu.Lock()
	src := d.source
	d.mu.Unlock()

	if src != nil && src.ShouldCancel(wordsProcessed) {
		d.stopped.CompareAndSwap(int32(StopNone), int32(StopCallback))
		return true
	}
	return false
}

// Stopped returns the reason a checkpoint requested a stop, if any.
func (d *Descriptor) Stopped() StopReason {
	return StopReason(d.stopped.Load())
}
