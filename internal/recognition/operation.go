// Package recognition runs one recognition pass over an engine: it applies
// the parameter registry, drives the engine under a monitor token and turns
// the engine's result stream into an owned result tree.
package recognition

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adverant/nexus/ocr-worker/internal/engine"
	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
	"github.com/adverant/nexus/ocr-worker/internal/logging"
	"github.com/adverant/nexus/ocr-worker/internal/monitor"
	"github.com/adverant/nexus/ocr-worker/internal/params"
	"github.com/adverant/nexus/ocr-worker/internal/pix"
	"github.com/adverant/nexus/ocr-worker/internal/resulttree"
)

// State is the lifecycle position of an Operation.
type State int32

const (
	StateIdle State = iota
	StateConfiguring
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s >= StateCompleted
}

// Options tune a single operation.
type Options struct {
	// Deadline bounds the engine call. Zero means no limit.
	Deadline time.Duration
	// Cancel is consulted at every engine checkpoint.
	Cancel monitor.CancellationSource
	// Logger defaults to a "recognition" logger.
	Logger *logging.Logger
	// JobID is attached to log lines.
	JobID string
}

// Operation is a single-use recognition pass. It takes ownership of the
// image handle; the engine and registry are borrowed and must not be used
// by another operation while this one runs.
type Operation struct {
	eng  engine.Engine
	reg  *params.Registry
	opts Options
	log  *logging.Logger

	state           atomic.Int32
	cancelRequested atomic.Bool
	desc            atomic.Pointer[monitor.Descriptor]
	lastProgress    atomic.Int32
	done            chan struct{}

	mu     sync.Mutex
	img    *pix.Handle
	tree   *resulttree.Node
	err    error
	closed bool
}

// New creates an idle operation. img is moved into the operation and left
// empty.
func New(eng engine.Engine, img *pix.Handle, reg *params.Registry, opts Options) *Operation {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("recognition")
	}
	op := &Operation{
		eng:  eng,
		reg:  reg,
		opts: opts,
		log:  logger,
		done: make(chan struct{}),
	}
	if img != nil {
		op.img = img.Move()
	}
	return op
}

// State returns the current state.
func (op *Operation) State() State {
	return State(op.state.Load())
}

// Done is closed once the operation reaches a terminal state.
func (op *Operation) Done() <-chan struct{} {
	return op.done
}

// Progress returns the engine's last reported progress, 0..100.
func (op *Operation) Progress() int {
	if d := op.desc.Load(); d != nil {
		return d.Progress()
	}
	return int(op.lastProgress.Load())
}

// Cancel asks a running operation to stop at the engine's next checkpoint.
// Before Start it makes the run stop at its first checkpoint. It is a no-op
// once the operation is terminal.
func (op *Operation) Cancel() {
	if op.State().Terminal() {
		return
	}
	op.cancelRequested.Store(true)
}

// Err returns the error that ended the operation, nil unless it was
// cancelled or failed.
func (op *Operation) Err() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.err
}

// Result returns the tree of a completed operation.
func (op *Operation) Result() (*resulttree.Node, error) {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.closed {
		return nil, werrors.NewStaleIteratorError()
	}
	if s := op.State(); s != StateCompleted {
		return nil, werrors.NewInvalidStateError("result", s.String())
	}
	return op.tree, nil
}

// Close releases the image and the result tree. Results are unavailable
// afterwards. Closing a running operation cancels it; the image is freed
// when the engine call returns.
func (op *Operation) Close() error {
	op.mu.Lock()
	if op.closed {
		op.mu.Unlock()
		return nil
	}
	op.closed = true
	op.tree = nil
	img := op.img
	if op.State() == StateIdle {
		op.img = nil
	} else {
		img = nil
	}
	op.mu.Unlock()

	if op.State() == StateRunning || op.State() == StateConfiguring {
		op.cancelRequested.Store(true)
	}
	if img != nil {
		return img.Close()
	}
	return nil
}

// Start runs the operation to a terminal state on the calling goroutine.
// It returns nil on completion, an ErrCancelled error when the deadline,
// a cancellation source, ctx or Cancel stopped the engine, and an
// ErrFailed error for configuration or engine failures. Calling Start on
// anything but an idle operation returns ErrInvalidState and leaves the
// operation untouched.
func (op *Operation) Start(ctx context.Context) error {
	op.mu.Lock()
	closed := op.closed
	op.mu.Unlock()
	if closed {
		return werrors.NewInvalidStateError("start", "closed")
	}
	if !op.state.CompareAndSwap(int32(StateIdle), int32(StateConfiguring)) {
		return werrors.NewInvalidStateError("start", op.State().String())
	}
	start := time.Now()
	op.log.Debug("Configuring", "job", op.opts.JobID)

	op.mu.Lock()
	img := op.img
	op.img = nil
	op.mu.Unlock()
	defer img.Close()

	if op.reg == nil || !op.reg.Acquire() {
		return op.finish(StateFailed, werrors.NewFailedError("configuration failed",
			werrors.NewInvalidStateError("apply parameters", "registry in use")))
	}
	defer op.reg.Release()

	if !img.Valid() {
		return op.finish(StateFailed, werrors.NewFailedError("no image to recognize", nil))
	}
	if err := img.Get().Validate(); err != nil {
		return op.finish(StateFailed, werrors.NewFailedError("invalid image", err))
	}
	if err := op.reg.ApplyAll(op.eng); err != nil {
		return op.finish(StateFailed, err)
	}

	tok, err := monitor.New(monitor.Any(
		op.opts.Cancel,
		monitor.FromContext(ctx),
		monitor.CancelFunc(func(int) bool { return op.cancelRequested.Load() }),
	))
	if err != nil {
		return op.finish(StateFailed, err)
	}
	defer tok.Close()
	tok.SetDeadline(deadlineMillis(op.opts.Deadline))

	desc := tok.Get()
	op.desc.Store(desc)
	op.state.Store(int32(StateRunning))
	op.log.Debug("Running", "job", op.opts.JobID, "deadline", op.opts.Deadline)

	status, panicErr := op.recognize(img.Get(), desc)

	op.lastProgress.Store(int32(desc.Progress()))
	op.desc.Store(nil)

	var result error
	switch {
	case panicErr != nil:
		result = op.finish(StateFailed, panicErr)
	case status == engine.StatusOK:
		result = op.complete()
	case desc.Stopped() != monitor.StopNone:
		result = op.finish(StateCancelled, werrors.NewCancelledError(desc.Stopped().String(), desc.Progress()))
	default:
		result = op.finish(StateFailed, werrors.NewEngineStatusError(int(status)))
	}
	op.log.Info("Recognition finished",
		"job", op.opts.JobID,
		"state", op.State(),
		"progress", op.Progress(),
		"duration", time.Since(start).Round(time.Millisecond))
	return result
}

func (op *Operation) recognize(img *pix.Pix, desc *monitor.Descriptor) (status engine.Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = werrors.NewFailedError(fmt.Sprintf("engine panic: %v", r), nil)
		}
	}()
	return op.eng.Recognize(img, desc), nil
}

func (op *Operation) complete() error {
	it, err := op.eng.Results()
	if err != nil {
		return op.finish(StateFailed, werrors.NewFailedError("failed to read results", err))
	}
	tree, err := resulttree.Build(it)
	if err != nil {
		return op.finish(StateFailed, err)
	}
	op.mu.Lock()
	if !op.closed {
		op.tree = tree
	}
	op.mu.Unlock()
	return op.finish(StateCompleted, nil)
}

func (op *Operation) finish(s State, err error) error {
	op.mu.Lock()
	op.err = err
	op.mu.Unlock()
	op.state.Store(int32(s))
	close(op.done)
	if err != nil && s == StateFailed {
		op.log.Warn("Recognition failed", "job", op.opts.JobID, "error", err)
	}
	return err
}

// deadlineMillis rounds d up so that a positive budget never becomes the
// zero "no limit" value.
func deadlineMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Millisecond - 1) / time.Millisecond)
}
