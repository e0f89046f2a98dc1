// Package audit appends fused results to a JSON lines file and reads them back.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/rie/internal/fusion"
	"github.com/spigell/rie/internal/records"
)

const maxLineSize = 4 << 20

// Record is one persisted scoring result.
type Record struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Kind          string        `json:"kind"`
	CandidateID   string        `json:"candidateId,omitempty"`
	CandidateName string        `json:"candidateName"`
	JobID         string        `json:"jobId,omitempty"`
	JobTitle      string        `json:"jobTitle,omitempty"`
	Result        fusion.Result `json:"result"`
}

// Key identifies the candidate and job pair of the record.
func (r Record) Key() string {
	return PairKey(r.CandidateID, r.CandidateName, r.JobID, r.JobTitle)
}

// PairKey prefers ids and falls back to the lower-cased name or title.
func PairKey(candidateID, candidateName, jobID, jobTitle string) string {
	candidate := strings.TrimSpace(candidateID)
	if candidate == "" {
		candidate = strings.ToLower(strings.TrimSpace(candidateName))
	}
	job := strings.TrimSpace(jobID)
	if job == "" {
		job = strings.ToLower(strings.TrimSpace(jobTitle))
	}
	return candidate + "|" + job
}

func NewRecord(candidate records.Candidate, job *records.Job, result fusion.Result, now time.Time) Record {
	r := Record{
		ID:            uuid.NewString(),
		Timestamp:     now.UTC(),
		Kind:          result.Kind,
		CandidateID:   candidate.ID,
		CandidateName: candidate.Name,
		Result:        result,
	}
	if job != nil {
		r.JobID = job.ID
		r.JobTitle = job.Title
	}
	return r
}

// Store is an append-only log file. An empty path disables it.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: strings.TrimSpace(path)}
}

func (s *Store) Enabled() bool {
	return s != nil && s.path != ""
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Append writes one line per record.
func (s *Store) Append(recs ...Record) error {
	if !s.Enabled() || len(recs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file %q: %w", s.path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write audit record %s: %w", rec.ID, err)
		}
	}
	return file.Sync()
}

// Load reads every record. A missing file holds no records.
func (s *Store) Load() ([]Record, error) {
	if !s.Enabled() {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit file %q: %w", s.path, err)
	}
	defer file.Close()

	var out []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("decode audit line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit file %q: %w", s.path, err)
	}
	return out, nil
}

// Screened returns the pair keys already recorded for a result kind.
func (s *Store) Screened(kind string) (map[string]struct{}, error) {
	recs, err := s.Load()
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		if rec.Kind == kind {
			keys[rec.Key()] = struct{}{}
		}
	}
	return keys, nil
}
