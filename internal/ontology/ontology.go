// Package ontology maps raw skill strings onto canonical skill names.
package ontology

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/rie/internal/textsignal"
)

// DefaultMaxSkills caps NormalizeList output unless overridden.
const DefaultMaxSkills = 50

//go:embed skills.yaml
var defaultSkills []byte

type file struct {
	Skills map[string][]string `yaml:"skills"`
}

// Table is a read-only synonym lookup. It is safe for concurrent use.
type Table struct {
	lookup    map[string]string
	canonical []string
	maxSkills int
}

// NewTable builds a lookup from canonical names to their synonyms.
// It fails when one synonym would resolve to two different canonical names.
func NewTable(entries map[string][]string) (*Table, error) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	t := &Table{
		lookup:    make(map[string]string, len(entries)*3),
		maxSkills: DefaultMaxSkills,
	}

	for _, name := range names {
		canonical := strings.ToLower(strings.TrimSpace(name))
		if canonical == "" {
			return nil, fmt.Errorf("empty canonical skill name")
		}
		if err := t.bind(canonical, canonical); err != nil {
			return nil, err
		}
		t.canonical = append(t.canonical, canonical)

		for _, synonym := range entries[name] {
			alias := strings.ToLower(strings.TrimSpace(synonym))
			if alias == "" {
				continue
			}
			if err := t.bind(alias, canonical); err != nil {
				return nil, err
			}
		}
	}

	return t, nil
}

func (t *Table) bind(alias, canonical string) error {
	if existing, ok := t.lookup[alias]; ok && existing != canonical {
		return fmt.Errorf("skill %q maps to both %q and %q", alias, existing, canonical)
	}
	t.lookup[alias] = canonical
	return nil
}

// Load reads a YAML ontology of the form `skills: {canonical: [synonym, ...]}`.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ontology file %q: %w", path, err)
	}
	table, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("ontology file %q: %w", path, err)
	}
	return table, nil
}

// Default returns the built-in ontology.
func Default() (*Table, error) {
	return parse(defaultSkills)
}

func parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing ontology: %w", err)
	}
	return NewTable(f.Skills)
}

// WithMaxSkills returns a table sharing the same lookup but capping lists at n.
// Non-positive values restore the default cap.
func (t *Table) WithMaxSkills(n int) *Table {
	if n <= 0 {
		n = DefaultMaxSkills
	}
	clone := *t
	clone.maxSkills = n
	return &clone
}

// MaxSkills reports the NormalizeList cap.
func (t *Table) MaxSkills() int {
	return t.maxSkills
}

// Canonical returns the sorted canonical names known to the table.
func (t *Table) Canonical() []string {
	out := make([]string, len(t.canonical))
	copy(out, t.canonical)
	return out
}

// Normalize returns the canonical name for raw. An exact match on a canonical
// name or synonym wins; otherwise the first keyword of raw that maps is used;
// otherwise the trimmed, lower-cased input is returned.
func (t *Table) Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if t == nil {
		return key
	}
	if canonical, ok := t.lookup[key]; ok {
		return canonical
	}
	for _, token := range textsignal.Keywords(key) {
		if canonical, ok := t.lookup[token]; ok {
			return canonical
		}
	}
	return key
}

// NormalizeList normalizes every entry, drops empties and duplicates, and keeps
// at most MaxSkills entries in first-seen order.
func (t *Table) NormalizeList(raw []string) []string {
	limit := DefaultMaxSkills
	if t != nil {
		limit = t.maxSkills
	}

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		skill := t.Normalize(item)
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
		if len(out) == limit {
			break
		}
	}
	return out
}
