// Package evidence holds labelled claims and the token pool used to decide
// whether a claim is backed by deterministic signals.
package evidence

import (
	"strings"

	"github.com/spigell/rie/internal/textsignal"
)

const (
	MaxClaims    = 4
	MaxRiskFlags = 6
)

// Claim is a labelled assertion about a candidate with the text supporting it.
type Claim struct {
	Label       string `json:"label"`
	Evidence    string `json:"evidence"`
	MatchedWith string `json:"matchedWith,omitempty"`
	// Weight is the score weight a strength carried; Impact is a gap's severity.
	Weight int    `json:"weightImpact,omitempty"`
	Impact string `json:"impactLevel,omitempty"`
}

// Text is the label and evidence joined for tokenization.
func (c Claim) Text() string {
	return c.Label + " " + c.Evidence
}

// Pool is a set of trusted keywords.
type Pool map[string]struct{}

// NewPool collects the keywords of every text.
func NewPool(texts ...string) Pool {
	p := Pool{}
	p.Add(texts...)
	return p
}

func (p Pool) Add(texts ...string) {
	for _, text := range texts {
		for _, token := range textsignal.Keywords(text) {
			p[token] = struct{}{}
		}
	}
}

// Backs reports whether at least one keyword of the claim is in the pool.
func (p Pool) Backs(c Claim) bool {
	for _, token := range textsignal.Keywords(c.Text()) {
		if _, ok := p[token]; ok {
			return true
		}
	}
	return false
}

// Filter keeps the backed claims in order.
func (p Pool) Filter(claims []Claim) []Claim {
	kept := make([]Claim, 0, len(claims))
	for _, claim := range claims {
		if p.Backs(claim) {
			kept = append(kept, claim)
		}
	}
	return kept
}

// CapClaims trims labels, drops empty ones and duplicates by lower-cased label,
// and keeps at most n claims.
func CapClaims(claims []Claim, n int) []Claim {
	out := make([]Claim, 0, min(len(claims), n))
	seen := make(map[string]struct{}, len(claims))
	for _, claim := range claims {
		if len(out) >= n {
			break
		}
		claim.Label = strings.TrimSpace(claim.Label)
		claim.Evidence = strings.TrimSpace(claim.Evidence)
		key := strings.ToLower(claim.Label)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, claim)
	}
	return out
}

// CapStrings trims items, drops empty ones and case-insensitive duplicates,
// and keeps at most n.
func CapStrings(items []string, n int) []string {
	out := make([]string, 0, min(len(items), n))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if len(out) >= n {
			break
		}
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Labels returns the claim labels in order.
func Labels(claims []Claim) []string {
	labels := make([]string, 0, len(claims))
	for _, claim := range claims {
		labels = append(labels, claim.Label)
	}
	return labels
}
