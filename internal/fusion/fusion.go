// Package fusion blends a deterministic score with a validated model opinion.
//
// Claims from the model survive only when they share a keyword with the
// deterministic evidence pool. Without a valid opinion the deterministic
// result is returned unchanged with the AI weight set to zero.
package fusion

import (
	"math"

	"github.com/spigell/rie/internal/ai"
	"github.com/spigell/rie/internal/cvreview"
	"github.com/spigell/rie/internal/evidence"
	"github.com/spigell/rie/internal/skillmatch"
)

const (
	// ModelVersion tags every fused screening result.
	ModelVersion = "RIE-v2.1"

	AIWeight            = 0.7
	DeterministicWeight = 0.3

	modelConfidenceShare    = 0.45
	dataCompletenessShare   = 0.25
	coverageConfidenceShare = 0.30

	// Fewer backed claims than this and the deterministic list is used instead.
	minBackedClaims = 2
)

const (
	KindSkillMatch = "skill-match"
	KindCVReview   = "cv-review"
)

// Baseline is the deterministic side of a fusion.
type Baseline struct {
	Kind               string
	ModelVersion       string
	Score              int
	ModelConfidence    float64
	DataCompleteness   float64
	CoverageConfidence float64
	FinalConfidence    float64
	Strengths          []evidence.Claim
	Gaps               []evidence.Claim
	RiskFlags          []string
	Recommendation     string
	Seniority          string
	Readiness          string
	Pool               evidence.Pool

	// Reported as is for explainability.
	Coverage any
	Weights  any
	Signals  any
}

// FromSkillMatch adapts a skill match bundle.
func FromSkillMatch(b skillmatch.Bundle) Baseline {
	return Baseline{
		Kind:               KindSkillMatch,
		ModelVersion:       b.ModelVersion,
		Score:              b.FitScore,
		ModelConfidence:    b.Confidence.ModelConfidence,
		DataCompleteness:   b.Confidence.DataCompleteness,
		CoverageConfidence: b.Confidence.CoverageConfidence,
		FinalConfidence:    b.Confidence.FinalConfidence,
		Strengths:          b.Strengths,
		Gaps:               b.Gaps,
		RiskFlags:          b.RiskFlags,
		Recommendation:     b.Recommendation,
		Pool:               b.Pool(),
		Coverage:           b.Coverage,
		Weights:            b.Weights,
		Signals:            b.Signals,
	}
}

// FromCVReview adapts a CV analysis. Structural confidence stands in for
// coverage confidence and the fallback insights for strengths and gaps.
func FromCVReview(a cvreview.Analysis) Baseline {
	return Baseline{
		Kind:               KindCVReview,
		ModelVersion:       a.ModelVersion,
		Score:              a.OverallScore,
		ModelConfidence:    a.Confidence.ModelConfidence,
		DataCompleteness:   a.Confidence.DataCompleteness,
		CoverageConfidence: a.Confidence.StructuralConfidence,
		FinalConfidence:    a.Confidence.FinalConfidence,
		Strengths:          a.Insights.Strengths,
		Gaps:               a.Insights.Improvements,
		RiskFlags:          a.RiskFlags,
		Recommendation:     a.Insights.Summary,
		Seniority:          a.Insights.Seniority,
		Readiness:          a.Insights.Readiness,
		Pool:               a.Pool(),
		Coverage:           a.Breakdown,
		Weights:            a.Weights,
		Signals:            a.Diagnostics,
	}
}

// Meta is audit information about the model call.
type Meta struct {
	ModelVersion string
	PromptHash   string
}

type Confidence struct {
	ModelConfidence    float64 `json:"modelConfidence"`
	DataCompleteness   float64 `json:"dataCompleteness"`
	CoverageConfidence float64 `json:"coverageConfidence"`
	FinalConfidence    float64 `json:"finalConfidence"`
}

type Explainability struct {
	DeterministicWeight float64 `json:"deterministicWeight"`
	AIWeight            float64 `json:"aiWeight"`
}

// Result is the fused output of one scoring request.
type Result struct {
	Kind                 string           `json:"kind"`
	ModelVersion         string           `json:"modelVersion"`
	DeterministicVersion string           `json:"deterministicModelVersion"`
	Score                int              `json:"score"`
	Confidence           Confidence       `json:"confidence"`
	Coverage             any              `json:"coverage,omitempty"`
	Strengths            []evidence.Claim `json:"strengths"`
	Gaps                 []evidence.Claim `json:"gaps"`
	RiskFlags            []string         `json:"riskFlags"`
	Recommendation       string           `json:"recommendation"`
	Seniority            string           `json:"seniorityEstimate,omitempty"`
	Readiness            string           `json:"hiringReadiness,omitempty"`
	Explainability       Explainability   `json:"explainability"`
	ScoringWeights       any              `json:"scoringWeights,omitempty"`
	PromptHash           string           `json:"promptHash,omitempty"`
	AIStatus             string           `json:"aiStatus"`
	AIReason             string           `json:"aiReason,omitempty"`
	AIModel              string           `json:"aiModel,omitempty"`
	AIRawResponse        string           `json:"aiRawResponse,omitempty"`
	DeterministicSignals any              `json:"deterministicSignals"`
}

// Fuse combines the baseline with the verdict.
func Fuse(base Baseline, verdict ai.Verdict, meta Meta) Result {
	version := meta.ModelVersion
	if version == "" {
		version = base.ModelVersion
	}

	result := Result{
		Kind:                 base.Kind,
		ModelVersion:         version,
		DeterministicVersion: base.ModelVersion,
		Coverage:             base.Coverage,
		ScoringWeights:       base.Weights,
		PromptHash:           meta.PromptHash,
		AIStatus:             verdict.Kind.String(),
		AIReason:             verdict.Reason,
		AIModel:              verdict.Model,
		AIRawResponse:        verdict.Raw,
		DeterministicSignals: base.Signals,
		Seniority:            base.Seniority,
		Readiness:            base.Readiness,
	}

	if verdict.Kind != ai.Valid || verdict.Opinion == nil {
		result.Score = base.Score
		result.Confidence = Confidence{
			ModelConfidence:    base.ModelConfidence,
			DataCompleteness:   base.DataCompleteness,
			CoverageConfidence: base.CoverageConfidence,
			FinalConfidence:    base.FinalConfidence,
		}
		result.Strengths = base.Strengths
		result.Gaps = base.Gaps
		result.RiskFlags = base.RiskFlags
		result.Recommendation = base.Recommendation
		result.Explainability = Explainability{DeterministicWeight: 1, AIWeight: 0}
		return result
	}

	op := verdict.Opinion
	modelConfidence := round3(clamp(op.Confidence*AIWeight+base.ModelConfidence*DeterministicWeight, 0, 1))

	result.Score = int(math.Round(clamp(float64(op.Score)*AIWeight+float64(base.Score)*DeterministicWeight, 0, 100)))
	result.Confidence = Confidence{
		ModelConfidence:    modelConfidence,
		DataCompleteness:   base.DataCompleteness,
		CoverageConfidence: base.CoverageConfidence,
		FinalConfidence: round3(clamp(
			modelConfidence*modelConfidenceShare+
				base.DataCompleteness*dataCompletenessShare+
				base.CoverageConfidence*coverageConfidenceShare, 0, 1)),
	}
	result.Strengths = backed(base.Pool, op.Strengths, base.Strengths)
	result.Gaps = backed(base.Pool, op.Gaps, base.Gaps)
	result.RiskFlags = evidence.CapStrings(append(append([]string(nil), base.RiskFlags...), op.RiskFlags...), evidence.MaxRiskFlags)
	result.Recommendation = op.Recommendation
	if result.Recommendation == "" && base.Kind == KindCVReview {
		result.Recommendation = op.Summary
	}
	if result.Recommendation == "" {
		result.Recommendation = base.Recommendation
	}
	if op.Seniority != "" {
		result.Seniority = op.Seniority
	}
	if op.Readiness != "" {
		result.Readiness = op.Readiness
	}
	result.Explainability = Explainability{DeterministicWeight: DeterministicWeight, AIWeight: AIWeight}

	return result
}

// backed keeps the claims the pool supports, or falls back to the deterministic list.
func backed(pool evidence.Pool, claims, fallback []evidence.Claim) []evidence.Claim {
	kept := evidence.CapClaims(pool.Filter(claims), evidence.MaxClaims)
	if len(kept) < minBackedClaims {
		return fallback
	}
	return kept
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
