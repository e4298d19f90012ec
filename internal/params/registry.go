package params

import (
	"sync"
	"sync/atomic"

	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
)

// Store is the engine's string-keyed parameter table.
type Store interface {
	SetParameter(name, value string) bool
}

// Pair is one name/value assignment in the engine's string form.
type Pair struct {
	Name  string
	Value string
}

const (
	invertToggle    = "tessedit_do_invert"
	invertThreshold = "invert_threshold"
)

// Registry holds the values for one session, validated against the shared
// catalog. It is owned by one operation at a time; while an operation holds
// it, mutations fail with InvalidState.
//
// Invert detection is controlled by two options. invert_threshold wins
// whenever it differs from its default. The deprecated tessedit_do_invert
// is only honoured while the threshold is at its default, and setting it
// false then also writes invert_threshold=0 so both engine generations
// skip the inverted pass.
type Registry struct {
	cat *Catalog

	mu     sync.RWMutex
	values map[string]Value // overrides; absent means default

	inUse atomic.Bool
}

// NewRegistry returns a registry with every option at its default.
func NewRegistry() *Registry {
	return &Registry{
		cat:    Default(),
		values: make(map[string]Value),
	}
}

// Catalog returns the catalog this registry validates against.
func (r *Registry) Catalog() *Catalog { return r.cat }

// Get returns the current value of name.
func (r *Registry) Get(name string) (Value, error) {
	e, ok := r.cat.Lookup(name)
	if !ok {
		return Value{}, werrors.NewUnknownParameterError(name)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.values[name]; ok {
		return v, nil
	}
	return e.Default, nil
}

// Set validates v against the catalog and stores it. A rejected value
// leaves the registry unchanged. The value's kind must match the catalog's.
func (r *Registry) Set(name string, v Value) error {
	e, ok := r.cat.Lookup(name)
	if !ok {
		return werrors.NewUnknownParameterError(name)
	}
	v, err := coerce(e, v)
	if err != nil {
		return err
	}
	if r.inUse.Load() {
		return werrors.NewInvalidStateError("set "+name, "running")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v.Equal(e.Default) {
		delete(r.values, name)
	} else {
		r.values[name] = v
	}
	return nil
}

// SetString parses s according to the option's kind and sets it.
func (r *Registry) SetString(name, s string) error {
	e, ok := r.cat.Lookup(name)
	if !ok {
		return werrors.NewUnknownParameterError(name)
	}
	v, err := ParseValue(e.Kind, s)
	if err != nil {
		return werrors.NewTypeMismatchError(name, e.Kind.String(), s)
	}
	return r.Set(name, v)
}

// Reset restores name to its default.
func (r *Registry) Reset(name string) error {
	if _, ok := r.cat.Lookup(name); !ok {
		return werrors.NewUnknownParameterError(name)
	}
	if r.inUse.Load() {
		return werrors.NewInvalidStateError("reset "+name, "running")
	}
	r.mu.Lock()
	delete(r.values, name)
	r.mu.Unlock()
	return nil
}

// Changed returns the names of options that differ from their default, in
// catalog order.
func (r *Registry) Changed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, e := range r.cat.entries {
		if _, ok := r.values[e.Name]; ok {
			out = append(out, e.Name)
		}
	}
	return out
}

// Pairs returns the assignments ApplyAll would write, in catalog order.
func (r *Registry) Pairs() []Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, thresholdSet := r.values[invertThreshold]
	toggle, toggleSet := r.values[invertToggle]
	disableInvert := toggleSet && !toggle.Bool() && !thresholdSet

	var out []Pair
	for _, e := range r.cat.entries {
		switch e.Name {
		case invertToggle:
			if thresholdSet {
				continue
			}
		case invertThreshold:
			if disableInvert {
				out = append(out, Pair{Name: invertThreshold, Value: Double(0).Format()})
				continue
			}
		}
		if v, ok := r.values[e.Name]; ok {
			out = append(out, Pair{Name: e.Name, Value: v.Format()})
		}
	}
	return out
}

// ApplyAll writes every non-default value into store in catalog order and
// stops at the first key the store rejects. Applying twice writes the same
// pairs in the same order.
func (r *Registry) ApplyAll(store Store) error {
	for _, p := range r.Pairs() {
		if !store.SetParameter(p.Name, p.Value) {
			return werrors.NewApplyFailedError(p.Name, p.Value)
		}
	}
	return nil
}

// Clone returns an independent registry with the same values.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &Registry{cat: r.cat, values: make(map[string]Value, len(r.values))}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Acquire marks the registry as owned by an in-flight operation. It
// returns false when another operation already holds it.
func (r *Registry) Acquire() bool {
	return r.inUse.CompareAndSwap(false, true)
}

// Release ends the hold taken by Acquire.
func (r *Registry) Release() {
	r.inUse.Store(false)
}

func coerce(e Entry, v Value) (Value, error) {
	if v.Kind() != e.Kind {
		return Value{}, werrors.NewTypeMismatchError(e.Name, e.Kind.String(), v.Kind().String())
	}
	if e.Kind == KindDouble {
		if err := Finite(v); err != nil {
			return Value{}, werrors.NewInvalidValueError(e.Name, v.Format(), err)
		}
	}
	if e.Domain != nil {
		if err := e.Domain(v); err != nil {
			return Value{}, werrors.NewInvalidValueError(e.Name, v.Format(), err)
		}
	}
	return v, nil
}
