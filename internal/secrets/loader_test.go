package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	t.Setenv("RIE_TEST_KEY", " from-env ")
	t.Setenv("RIE_TEST_BLANK", "")

	tests := []struct {
		name      string
		src       Source
		expect    string
		expectErr string
	}{
		{
			name:   "file wins over env and value",
			src:    Source{Name: "api key", File: keyFile, Env: "RIE_TEST_KEY", Value: "inline"},
			expect: "from-file",
		},
		{
			name:   "env wins over value",
			src:    Source{Env: "RIE_TEST_KEY", Value: "inline"},
			expect: "from-env",
		},
		{
			name:   "blank env falls back to value",
			src:    Source{Env: "RIE_TEST_BLANK", Value: " inline "},
			expect: "inline",
		},
		{
			name:      "empty file",
			src:       Source{Name: "api key", File: emptyFile, Value: "inline"},
			expectErr: "api key file",
		},
		{
			name:      "missing file",
			src:       Source{File: filepath.Join(dir, "missing")},
			expectErr: "reading secret from file",
		},
		{
			name:      "nothing configured",
			src:       Source{Name: "api key", Env: "RIE_TEST_BLANK"},
			expectErr: "api key is not configured (checked $RIE_TEST_BLANK)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
