package monitor

import "context"

// CancellationSource decides at each engine checkpoint whether recognition
// should stop. Implementations must return quickly and must not call back
// into the operation being monitored.
type CancellationSource interface {
	ShouldCancel(wordsProcessed int) bool
}

// CancelFunc adapts a plain function to CancellationSource.
type CancelFunc func(wordsProcessed int) bool

func (f CancelFunc) ShouldCancel(wordsProcessed int) bool {
	if f == nil {
		return false
	}
	return f(wordsProcessed)
}

// Any stops as soon as one of sources asks to. Nil entries are skipped.
func Any(sources ...CancellationSource) CancellationSource {
	filtered := make(anySource, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

type anySource []CancellationSource

func (a anySource) ShouldCancel(wordsProcessed int) bool {
	for _, s := range a {
		if s.ShouldCancel(wordsProcessed) {
			return true
		}
	}
	return false
}

// FromContext cancels once ctx is done.
func FromContext(ctx context.Context) CancellationSource {
	return CancelFunc(func(int) bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	})
}

// WordLimit cancels after n words have been processed.
func WordLimit(n int) CancellationSource {
	return CancelFunc(func(words int) bool { return words >= n })
}
