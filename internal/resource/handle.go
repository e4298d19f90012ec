// Package resource provides single-owner wrappers for native resources
// whose release must happen exactly once.
package resource

// noCopy lets go vet's copylocks check flag accidental copies of a Handle.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Handle owns at most one resource of type T together with the function
// that destroys it. Ownership moves with Move and Take; a Handle must never
// be copied by value.
//
// A Handle is not safe for concurrent use. It belongs to one operation at a
// time.
type Handle[T any] struct {
	_ noCopy

	res     T
	valid   bool
	destroy func(T)
	// isNil marks values that mean "no resource"; set by AdoptPtr
	isNil func(T) bool
}

// Adopt takes ownership of res. destroy runs once when the handle releases
// it through Reset, Clear, Take or Close. A nil destroy is allowed for
// resources that need no cleanup.
func Adopt[T any](res T, destroy func(T)) *Handle[T] {
	return &Handle[T]{res: res, valid: true, destroy: destroy}
}

// AdoptPtr is Adopt for pointer resources where nil means "no resource".
// Reset and Take on such a handle keep nil out as well.
func AdoptPtr[T any](res *T, destroy func(*T)) *Handle[*T] {
	h := &Handle[*T]{destroy: destroy, isNil: isNilPtr[T]}
	h.adopt(res)
	return h
}

func isNilPtr[T any](p *T) bool { return p == nil }

// adopt stores res unless it is the null resource.
func (h *Handle[T]) adopt(res T) {
	if h.isNil != nil && h.isNil(res) {
		return
	}
	h.res = res
	h.valid = true
}

// Empty returns a handle that owns nothing.
func Empty[T any](destroy func(T)) *Handle[T] {
	return &Handle[T]{destroy: destroy}
}

// Get borrows the resource. The caller must not destroy it.
func (h *Handle[T]) Get() T {
	return h.res
}

// Valid reports whether a resource is currently owned.
func (h *Handle[T]) Valid() bool {
	return h != nil && h.valid
}

// Release hands the resource to the caller without destroying it and
// leaves the handle empty. This is the only way to pass ownership to a
// consumer that frees the resource itself.
func (h *Handle[T]) Release() T {
	res := h.res
	var zero T
	h.res = zero
	h.valid = false
	return res
}

// Reset destroys the owned resource, if any, and adopts res. Resetting a
// pointer handle to nil leaves it empty.
func (h *Handle[T]) Reset(res T) {
	h.destroyOwned()
	h.adopt(res)
}

// Clear destroys the owned resource, if any, and leaves the handle empty.
func (h *Handle[T]) Clear() {
	h.destroyOwned()
}

// Move transfers ownership into a new handle and leaves h empty.
func (h *Handle[T]) Move() *Handle[T] {
	moved := &Handle[T]{destroy: h.destroy, isNil: h.isNil}
	if h.valid {
		moved.res = h.Release()
		moved.valid = true
	}
	return moved
}

// Take destroys what h owns and takes over src's resource, leaving src
// empty. Taking from itself is a no-op.
func (h *Handle[T]) Take(src *Handle[T]) {
	if src == h || src == nil {
		return
	}
	h.destroyOwned()
	h.destroy = src.destroy
	h.isNil = src.isNil
	if src.valid {
		h.res = src.Release()
		h.valid = true
	}
}

// Close destroys the owned resource. Closing an empty handle is a no-op,
// so Close is safe to defer even after Release.
func (h *Handle[T]) Close() error {
	if h == nil {
		return nil
	}
	h.destroyOwned()
	return nil
}

func (h *Handle[T]) destroyOwned() {
	if !h.valid {
		return
	}
	res := h.Release()
	if h.destroy != nil {
		h.destroy(res)
	}
}
