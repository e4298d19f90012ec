package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/adverant/nexus/ocr-worker/internal/logging"
	"github.com/adverant/nexus/ocr-worker/internal/params"
)

// PresetStore holds the named parameter presets jobs may refer to. It can
// reload its directory when files change.
type PresetStore struct {
	dir string
	log *logging.Logger

	mu      sync.RWMutex
	presets map[string]*params.Preset
}

// NewPresetStore loads every preset in dir. An empty dir gives an empty
// store that only holds presets added with Put.
func NewPresetStore(dir string) (*PresetStore, error) {
	s := &PresetStore{
		dir:     dir,
		log:     logging.NewLogger("presets"),
		presets: make(map[string]*params.Preset),
	}
	if dir == "" {
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the preset called name.
func (s *PresetStore) Get(name string) (*params.Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.presets[name]
	return p, ok
}

// Put adds or replaces a preset.
func (s *PresetStore) Put(p *params.Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets[p.Name] = p
}

// Names lists the loaded presets, sorted.
func (s *PresetStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.presets))
	for n := range s.presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Reload re-reads the directory. On error the previous presets stay.
func (s *PresetStore) Reload() error {
	if s.dir == "" {
		return nil
	}
	loaded, err := params.LoadPresetDir(s.dir)
	if err != nil {
		return err
	}

	// catch bad keys now rather than on the first job that uses them
	for name, p := range loaded {
		if err := p.Apply(params.NewRegistry()); err != nil {
			return fmt.Errorf("invalid preset %s: %w", name, err)
		}
	}

	s.mu.Lock()
	s.presets = loaded
	s.mu.Unlock()
	s.log.Info("Presets loaded", "dir", s.dir, "count", len(loaded))
	return nil
}

// Watch reloads the store whenever a preset file in the directory changes,
// until ctx is done. Bursts of events within debounce collapse into one
// reload.
func (s *PresetStore) Watch(ctx context.Context, debounce time.Duration) error {
	if s.dir == "" {
		return fmt.Errorf("no preset directory to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			s.log.Debug("Preset change", "file", filepath.Base(ev.Name), "op", ev.Op)
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := s.Reload(); err != nil {
				s.log.Warn("Preset reload failed, keeping previous presets", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("Preset watcher error", "error", err)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !params.IsPresetFile(ev.Name) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
