package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/rie/internal/fusion"
	"github.com/spigell/rie/internal/records"
)

func TestAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	store := NewStore(path)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))

	job := &records.Job{ID: "j1", Title: "Backend Engineer"}
	first := NewRecord(records.Candidate{ID: "c1", Name: "Jane"}, job, fusion.Result{Kind: fusion.KindSkillMatch, Score: 73, PromptHash: "abc"}, now)
	second := NewRecord(records.Candidate{Name: "John"}, nil, fusion.Result{Kind: fusion.KindCVReview, Score: 40}, now)

	if err := store.Append(first); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(second); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	if _, err := uuid.Parse(got[0].ID); err != nil {
		t.Fatalf("expected uuid id, got %q", got[0].ID)
	}
	if got[0].ID == got[1].ID {
		t.Fatalf("expected unique ids")
	}
	if !got[0].Timestamp.Equal(now) || got[0].Timestamp.Location() != time.UTC {
		t.Fatalf("expected utc timestamp, got %v", got[0].Timestamp)
	}
	if got[0].Result.Score != 73 || got[0].Result.PromptHash != "abc" {
		t.Fatalf("unexpected result: %+v", got[0].Result)
	}
	if got[1].JobTitle != "" || got[1].Kind != fusion.KindCVReview {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
}

func TestScreened(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "audit.jsonl"))
	now := time.Now()

	err := store.Append(
		NewRecord(records.Candidate{ID: "c1", Name: "Jane"}, &records.Job{Title: "Clerk"}, fusion.Result{Kind: fusion.KindSkillMatch}, now),
		NewRecord(records.Candidate{Name: "John"}, &records.Job{ID: "j2", Title: "Nurse"}, fusion.Result{Kind: fusion.KindCVReview}, now),
	)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	keys, err := store.Screened(fusion.KindSkillMatch)
	if err != nil {
		t.Fatalf("screened: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %v", keys)
	}
	if _, ok := keys[PairKey("c1", "Jane", "", "Clerk")]; !ok {
		t.Fatalf("expected c1|clerk, got %v", keys)
	}
}

func TestLoadEdgeCases(t *testing.T) {
	dir := t.TempDir()

	recs, err := NewStore(filepath.Join(dir, "missing.jsonl")).Load()
	if err != nil || len(recs) != 0 {
		t.Fatalf("expected no records from missing file, got %v, %v", recs, err)
	}

	broken := filepath.Join(dir, "broken.jsonl")
	if err := os.WriteFile(broken, []byte("{\"id\":\"x\"}\n\nnot json\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewStore(broken).Load(); err == nil {
		t.Fatalf("expected decode error")
	}

	disabled := NewStore("  ")
	if disabled.Enabled() {
		t.Fatalf("expected blank path to disable the store")
	}
	if err := disabled.Append(Record{}); err != nil {
		t.Fatalf("disabled append must be a no-op: %v", err)
	}
}
