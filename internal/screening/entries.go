package screening

import (
	"sort"

	"github.com/spigell/rie/internal/audit"
	"github.com/spigell/rie/internal/fusion"
	"github.com/spigell/rie/internal/records"
)

// Entry is one candidate and job pair. Result is nil until the pair is scored.
type Entry struct {
	Candidate *records.Candidate
	Job       *records.Job
	Result    *fusion.Result
}

func (e *Entry) Key() string {
	return audit.PairKey(e.Candidate.ID, e.Candidate.Name, e.Job.ID, e.Job.Title)
}

// Label is a human readable name for logs.
func (e *Entry) Label() string {
	return e.Candidate.Name + " / " + e.Job.Title
}

type Entries struct {
	Items []*Entry
}

// Pairs builds every candidate and job combination in input order.
func Pairs(candidates *records.Candidates, jobs *records.Jobs) *Entries {
	entries := &Entries{Items: make([]*Entry, 0, candidates.Len()*jobs.Len())}
	for _, job := range jobs.Items {
		for _, candidate := range candidates.Items {
			entries.Items = append(entries.Items, &Entry{Candidate: candidate, Job: job})
		}
	}
	return entries
}

func (e *Entries) Len() int {
	return len(e.Items)
}

func (e *Entries) Labels() []string {
	labels := make([]string, 0, len(e.Items))
	for _, entry := range e.Items {
		labels = append(labels, entry.Label())
	}
	return labels
}

// Exclude removes the entries drop matches and returns their labels.
func (e *Entries) Exclude(drop func(*Entry) bool) []string {
	var excluded []string
	kept := e.Items[:0]
	for _, entry := range e.Items {
		if drop(entry) {
			excluded = append(excluded, entry.Label())
			continue
		}
		kept = append(kept, entry)
	}
	e.Items = kept
	return excluded
}

// Sort orders scored entries by score, then final confidence, both descending.
// Unscored entries go last.
func (e *Entries) Sort() {
	sort.SliceStable(e.Items, func(i, j int) bool {
		a, b := e.Items[i].Result, e.Items[j].Result
		switch {
		case a == nil || b == nil:
			return b == nil && a != nil
		case a.Score != b.Score:
			return a.Score > b.Score
		default:
			return a.Confidence.FinalConfidence > b.Confidence.FinalConfidence
		}
	})
}
