package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/rie/internal/ai"
	"github.com/spigell/rie/internal/ai/openrouter"
	"github.com/spigell/rie/internal/cvreview"
	"github.com/spigell/rie/internal/fusion"
	"github.com/spigell/rie/internal/records"
	"github.com/spigell/rie/internal/screening"
)

func TestNewGenerator(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	keyFile := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(keyFile, []byte("sk-test\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	tests := []struct {
		name      string
		cfg       *AIConfig
		expectNil bool
		expectErr string
	}{
		{name: "no config", expectNil: true},
		{name: "disabled", cfg: &AIConfig{Provider: "gemini"}, expectNil: true},
		{name: "unknown provider", cfg: &AIConfig{Enabled: true, Provider: "llama"}, expectErr: "unsupported ai provider"},
		{name: "openrouter without key", cfg: &AIConfig{Enabled: true}, expectErr: "RIE_OPENROUTER_API_KEY_FILE"},
		{name: "gemini without key", cfg: &AIConfig{Enabled: true, Provider: "Gemini"}, expectErr: "RIE_GEMINI_API_KEY_FILE"},
		{name: "openrouter from file", cfg: &AIConfig{Enabled: true, OpenRouter: &OpenRouterConfig{APIKeyFile: keyFile}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := newGenerator(context.Background(), tt.cfg)
			if tt.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (gen == nil) != tt.expectNil {
				t.Fatalf("unexpected generator: %v", gen)
			}
			if gen != nil && gen.Model() != openrouter.DefaultModel {
				t.Fatalf("expected default model, got %q", gen.Model())
			}
		})
	}
}

func TestNewPipelineRejectsBadWeights(t *testing.T) {
	_, err := newPipeline(context.Background(), &Config{CVWeights: cvreview.Weights{Structure: 0.5}}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "cv weights") {
		t.Fatalf("expected cv weights error, got %v", err)
	}
}

func TestNewPipelineFallsBackWithoutKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	pipeline, err := newPipeline(context.Background(), &Config{AI: &AIConfig{Enabled: true}}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := pipeline.Screen(context.Background(),
		records.Candidate{Name: "Ada", ExperienceYears: 4, Skills: []string{"go"}},
		records.Job{Title: "Backend Engineer", RequiredSkills: []string{"go"}},
		nil,
	)
	if result.AIReason != "ai disabled" {
		t.Fatalf("expected deterministic result, got %q", result.AIReason)
	}
}

func TestLoadOpinion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opinion.json")
	if err := os.WriteFile(path, []byte(`{"fitScore": 70, "confidence": 0.6}`), 0o600); err != nil {
		t.Fatalf("write opinion: %v", err)
	}

	verdict, err := loadOpinion(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Kind != ai.Valid || verdict.Opinion.Score != 70 || verdict.Model != "replay" {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}

	if verdict, err := loadOpinion(""); err != nil || verdict != nil {
		t.Fatalf("expected no opinion without a path, got %v %v", verdict, err)
	}
}

func TestReportByJob(t *testing.T) {
	entries := &screening.Entries{Items: []*screening.Entry{
		{Candidate: &records.Candidate{Name: "Ada"}, Job: &records.Job{Title: "SRE"}, Result: &fusion.Result{Score: 90}},
		{Candidate: &records.Candidate{Name: "Bob"}, Job: &records.Job{Title: "SRE"}, Result: &fusion.Result{Score: 40}},
		{Candidate: &records.Candidate{Name: "Cy"}, Job: &records.Job{Title: "QA"}},
	}}

	report := reportByJob(entries)
	if len(report) != 1 || report["SRE"].Candidates != 2 || report["SRE"].Top != "Ada" || report["SRE"].TopScore != 90 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := ranking(entries); len(got) != 2 {
		t.Fatalf("expected unscored entries skipped, got %d", len(got))
	}
}
