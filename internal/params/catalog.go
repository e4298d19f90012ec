// Package params holds the engine's option catalog and the typed registry
// that validates values before they reach the engine's string store.
package params

import (
	"sort"
	"strings"
	"sync"
)

// Group tags each option with the engine subsystem it controls.
type Group string

const (
	GroupSegmentation Group = "segmentation"
	GroupRecognition  Group = "recognition"
	GroupRejection    Group = "rejection"
	GroupOutput       Group = "output"
	GroupDebug        Group = "debug"
	GroupTraining     Group = "training"
)

// Entry is the immutable metadata for one option.
type Entry struct {
	Name        string
	Kind        Kind
	Default     Value
	Group       Group
	Description string
	Domain      Domain
	Deprecated  string // replacement option, when deprecated
}

// Catalog is the read-only, process-wide set of options.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

var (
	catalogOnce sync.Once
	catalog     *Catalog
)

// Default returns the shared catalog, building it on first use.
func Default() *Catalog {
	catalogOnce.Do(func() {
		catalog = newCatalog(builtinEntries)
	})
	return catalog
}

func newCatalog(src []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, len(src)),
		index:   make(map[string]int, len(src)),
	}
	copy(c.entries, src)
	for i := range c.entries {
		e := &c.entries[i]
		if e.Domain == nil {
			e.Domain = domains[e.Name]
		}
		if repl, ok := deprecations[e.Name]; ok {
			e.Deprecated = repl
		}
		c.index[e.Name] = i
	}
	return c
}

// Lookup returns the entry for name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Len returns the number of options.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByGroup returns the entries of one group in catalog order.
func (c *Catalog) ByGroup(g Group) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Group == g {
			out = append(out, e)
		}
	}
	return out
}

// Search returns entries whose name contains substr, sorted by name.
func (c *Catalog) Search(substr string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if strings.Contains(e.Name, substr) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
