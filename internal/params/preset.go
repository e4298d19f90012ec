package params

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	werrors "github.com/adverant/nexus/ocr-worker/internal/errors"
)

// Preset is a named set of option values loaded from a file.
type Preset struct {
	Name   string
	Source string
	Values map[string]any
}

// LoadPreset reads a preset file. The format follows the extension: .yaml
// and .yml use YAML, .toml uses TOML, anything else is read as the engine's
// native "name value" config format. The preset is named after the file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p, err := ParsePreset(name, data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", path, err)
	}
	p.Source = path
	return p, nil
}

// LoadPresetDir loads every preset file in dir keyed by preset name.
func LoadPresetDir(dir string) (map[string]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory %s: %w", dir, err)
	}
	out := make(map[string]*Preset)
	for _, de := range entries {
		if de.IsDir() || !IsPresetFile(de.Name()) {
			continue
		}
		p, err := LoadPreset(filepath.Join(dir, de.Name()))
		if err != nil {
			return nil, err
		}
		out[p.Name] = p
	}
	return out, nil
}

// IsPresetFile reports whether name has an extension LoadPresetDir reads.
func IsPresetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".toml", ".conf", ".cfg":
		return true
	}
	return false
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "text"
	}
}

// ParsePreset decodes data in the given format ("yaml", "toml" or "text").
func ParsePreset(name string, data []byte, format string) (*Preset, error) {
	values := make(map[string]any)
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	case "text":
		pairs, err := parseTextConfig(strings.NewReader(string(data)))
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			values[p.Name] = p.Value
		}
	default:
		return nil, fmt.Errorf("unknown preset format %q", format)
	}
	return &Preset{Name: name, Values: values}, nil
}

// Names returns the option names in the preset, sorted.
func (p *Preset) Names() []string {
	names := make([]string, 0, len(p.Values))
	for k := range p.Values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Apply sets every value in the preset on r in name order. It stops at the
// first failing key; values set before it stay applied.
func (p *Preset) Apply(r *Registry) error {
	for _, name := range p.Names() {
		if err := setAny(r, name, p.Values[name]); err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
	}
	return nil
}

func setAny(r *Registry, name string, raw any) error {
	if s, ok := raw.(string); ok {
		return r.SetString(name, s)
	}
	e, ok := r.Catalog().Lookup(name)
	if !ok {
		return werrors.NewUnknownParameterError(name)
	}
	v, err := FromInterface(raw)
	if err != nil {
		return werrors.NewTypeMismatchError(name, e.Kind.String(), fmt.Sprintf("%T", raw))
	}
	// YAML and TOML write 2 for 2.0
	if e.Kind == KindDouble && v.Kind() == KindInt {
		v = Double(float64(v.Int()))
	}
	return r.Set(name, v)
}

// ApplyTextConfig reads the engine's native config format from rd and sets
// each option on r. Lines hold a name, whitespace, then the value; blank
// lines and lines starting with # are skipped.
func ApplyTextConfig(r *Registry, rd io.Reader) error {
	pairs, err := parseTextConfig(rd)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if err := r.SetString(p.Name, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func parseTextConfig(rd io.Reader) ([]Pair, error) {
	var out []Pair
	sc := bufio.NewScanner(rd)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexAny(line, " \t")
		if idx < 0 {
			return nil, fmt.Errorf("line %d: missing value for %q", lineNo, line)
		}
		out = append(out, Pair{
			Name:  line[:idx],
			Value: strings.TrimSpace(line[idx:]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return out, nil
}
