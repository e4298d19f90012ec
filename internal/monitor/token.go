// Package monitor wraps the progress and cancellation descriptor that the
// engine consults while recognizing a page.
package monitor

import (
	"time"

	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/resource"
)

// allocate creates descriptors. Tests replace it to simulate allocation
// failure.
var allocate = newDescriptor

// Token owns one Descriptor for the lifetime of a single recognition call.
// It follows the same move-only discipline as resource.Handle and must not
// be shared between concurrently running operations.
type Token struct {
	h *resource.Handle[*Descriptor]
}

// New allocates a descriptor bound to src, which may be nil. Allocation
// failure is the only error.
func New(src CancellationSource) (*Token, error) {
	d := allocate()
	if d == nil {
		return nil, werrors.NewAllocationFailureError("monitor descriptor")
	}
	d.setSource(src)
	return &Token{h: resource.AdoptPtr(d, releaseDescriptor)}, nil
}

func releaseDescriptor(d *Descriptor) {
	d.setSource(nil)
}

// Get exposes the descriptor for the engine call. It is nil only after the
// token has been moved from or closed.
func (t *Token) Get() *Descriptor {
	if t == nil || !t.h.Valid() {
		return nil
	}
	return t.h.Get()
}

// Progress returns the last progress written by the engine, or 0 when the
// token no longer owns a descriptor.
func (t *Token) Progress() int {
	d := t.Get()
	if d == nil {
		return 0
	}
	return d.Progress()
}

// SetCancelSource replaces the cancellation source.
func (t *Token) SetCancelSource(src CancellationSource) {
	if d := t.Get(); d != nil {
		d.setSource(src)
	}
}

// SetDeadline gives the call a budget of ms milliseconds from now. Zero or
// a negative value means no limit.
func (t *Token) SetDeadline(ms int) {
	d := t.Get()
	if d == nil {
		return
	}
	if ms <= 0 {
		d.SetDeadlineAt(time.Time{})
		return
	}
	d.SetDeadlineAt(d.now().Add(time.Duration(ms) * time.Millisecond))
}

// Move transfers the descriptor to a new token and leaves t empty.
func (t *Token) Move() *Token {
	return &Token{h: t.h.Move()}
}

// Take releases t's descriptor and takes over src's.
func (t *Token) Take(src *Token) {
	if src == nil || src == t {
		return
	}
	t.h.Take(src.h)
}

// Close releases the descriptor. Call it only after the engine call that
// used it has returned or been abandoned.
func (t *Token) Close() error {
	if t == nil {
		return nil
	}
	return t.h.Close()
}
