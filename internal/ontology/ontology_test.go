package ontology

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(map[string][]string{
		"JavaScript": {"js", "ECMAScript"},
		"kubernetes": {"k8s"},
		"go":         {"golang"},
	})
	require.NoError(t, err)
	return table
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	table := syntheticTable(t)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "   ", want: ""},
		{name: "canonical is lower-cased", raw: "JavaScript", want: "javascript"},
		{name: "synonym", raw: " JS ", want: "javascript"},
		{name: "token fallback", raw: "Managed K8s clusters", want: "kubernetes"},
		{name: "short tokens do not map", raw: "using js", want: "using js"},
		{name: "unknown keeps lower-cased input", raw: "  Figma ", want: "figma"},
		{name: "exact short canonical", raw: "Go", want: "go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, table.Normalize(tt.raw))
		})
	}
}

func TestNormalizeIsProjection(t *testing.T) {
	t.Parallel()

	table, err := Default()
	require.NoError(t, err)

	words := []string{"JS", "golang", "Postgres", "k8s", "React Native", " ", "C++", "node js",
		"Amazon Web Services", "team leadership", "CBT", "random", "Docker-Compose", "a"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		n := rng.Intn(3) + 1
		parts := make([]string, n)
		for j := range parts {
			parts[j] = words[rng.Intn(len(words))]
		}
		raw := strings.Join(parts, " ")

		once := table.Normalize(raw)
		assert.Equal(t, once, table.Normalize(once), "raw %q", raw)
	}
}

func TestNewTableRejectsConflicts(t *testing.T) {
	t.Parallel()

	_, err := NewTable(map[string][]string{
		"postgresql": {"pg"},
		"pgbouncer":  {"PG"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"pg"`)

	_, err = NewTable(map[string][]string{"": {"x"}})
	require.Error(t, err)
}

func TestNormalizeList(t *testing.T) {
	t.Parallel()

	table := syntheticTable(t)

	got := table.NormalizeList([]string{"JS", "javascript", "", "Golang", "go", "Figma"})
	assert.Equal(t, []string{"javascript", "go", "figma"}, got)

	capped := table.WithMaxSkills(2).NormalizeList([]string{"a1", "b2", "c3"})
	assert.Equal(t, []string{"a1", "b2"}, capped)
	assert.Equal(t, DefaultMaxSkills, table.MaxSkills())
	assert.Equal(t, DefaultMaxSkills, table.WithMaxSkills(0).MaxSkills())

	assert.Empty(t, table.NormalizeList(nil))
}

func TestDefaultCapsAtFifty(t *testing.T) {
	t.Parallel()

	table, err := Default()
	require.NoError(t, err)

	raw := make([]string, 0, 80)
	for i := 0; i < 80; i++ {
		raw = append(raw, "skill"+strings.Repeat("x", i))
	}
	assert.Len(t, table.NormalizeList(raw), DefaultMaxSkills)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills:\n  rust: [rustlang]\n"), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rust", table.Normalize("RustLang"))
	assert.Equal(t, []string{"rust"}, table.Canonical())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
