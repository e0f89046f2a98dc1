// Package cvreview grades the quality of a resume on five dimensions and
// combines them into a weighted overall score.
package cvreview

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spigell/rie/internal/evidence"
	"github.com/spigell/rie/internal/ontology"
	"github.com/spigell/rie/internal/records"
)

const (
	ModelVersion = "RIE-CV-v2.0"

	// ModelConfidence is the fixed confidence of the deterministic review.
	ModelConfidence = 0.4

	RiskWeakStructure   = "Weak CV structure"
	RiskFewAchievements = "Low quantified achievement evidence"
	RiskLowSkillDensity = "Low skill density or domain alignment"
	RiskShallowDepth    = "Shallow or incoherent experience depth"
	RiskClarity         = "Clarity/professionalism concerns"

	FallbackSummary = "Deterministic CV review generated due to unavailable or low-confidence AI interpretation."
)

var labels = map[string]string{
	DimensionStructure:       "structure",
	DimensionSkillDensity:    "skill density",
	DimensionExperienceDepth: "experience depth",
	DimensionAchievements:    "achievements",
	DimensionClarity:         "clarity",
}

// Label is the human readable name of a dimension.
func Label(dimension string) string {
	if label, ok := labels[dimension]; ok {
		return label
	}
	return dimension
}

// Input is what gets reviewed. Job is optional and only supplies a role
// when the candidate states none.
type Input struct {
	ResumeText string
	Candidate  records.Candidate
	Job        *records.Job
}

type Breakdown struct {
	Structure       int `json:"structure"`
	SkillDensity    int `json:"skillDensity"`
	ExperienceDepth int `json:"experienceDepth"`
	Achievements    int `json:"achievements"`
	Clarity         int `json:"clarity"`
}

func (b Breakdown) of(name string) int {
	switch name {
	case DimensionStructure:
		return b.Structure
	case DimensionSkillDensity:
		return b.SkillDensity
	case DimensionExperienceDepth:
		return b.ExperienceDepth
	case DimensionAchievements:
		return b.Achievements
	case DimensionClarity:
		return b.Clarity
	default:
		return 0
	}
}

type Confidence struct {
	ModelConfidence      float64 `json:"modelConfidence"`
	DataCompleteness     float64 `json:"dataCompleteness"`
	StructuralConfidence float64 `json:"structuralConfidence"`
	FinalConfidence      float64 `json:"finalConfidence"`
}

// Insights is the narrative part of a review.
type Insights struct {
	Summary      string           `json:"executiveSummary"`
	Strengths    []evidence.Claim `json:"strengths"`
	Improvements []evidence.Claim `json:"improvementAreas"`
	Seniority    string           `json:"seniorityEstimate"`
	Readiness    string           `json:"hiringReadiness"`
}

type Analysis struct {
	ModelVersion string      `json:"modelVersion"`
	OverallScore int         `json:"overallScore"`
	Breakdown    Breakdown   `json:"breakdown"`
	RiskFlags    []string    `json:"riskFlags"`
	Confidence   Confidence  `json:"confidence"`
	Diagnostics  Diagnostics `json:"diagnostics"`
	Insights     Insights    `json:"insights"`
	Weights      Weights     `json:"scoringWeights"`
}

// Pool returns the keywords AI claims about this review must share to be kept.
func (a Analysis) Pool() evidence.Pool {
	pool := evidence.NewPool(a.Diagnostics.SkillDensity.CanonicalSkills...)
	for _, dimension := range Dimensions {
		pool.Add(Label(dimension))
	}
	pool.Add(a.RiskFlags...)
	// Labels only: insight evidence is a fixed template, not a signal.
	pool.Add(evidence.Labels(a.Insights.Strengths)...)
	pool.Add(evidence.Labels(a.Insights.Improvements)...)
	return pool
}

type Engine struct {
	ontology *ontology.Table
	weights  Weights
}

// New returns an engine. Zero weights select DefaultWeights.
func New(table *ontology.Table, weights Weights) (*Engine, error) {
	if weights.IsZero() {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cv weights: %w", err)
	}
	return &Engine{ontology: table, weights: weights}, nil
}

func (e *Engine) Weights() Weights {
	return e.weights
}

// Score reviews the resume. ResumeText falls back to the candidate's resume text.
func (e *Engine) Score(in Input) Analysis {
	text := in.ResumeText
	if strings.TrimSpace(text) == "" {
		text = in.Candidate.ResumeText
	}

	var (
		breakdown Breakdown
		diag      Diagnostics
	)
	breakdown.Structure, diag.Structure = structure(text, in.Candidate)
	breakdown.SkillDensity, diag.SkillDensity = skillDensity(in.Candidate, in.Job, e.ontology)
	breakdown.ExperienceDepth, diag.ExperienceDepth = experienceDepth(in.Candidate)
	breakdown.Achievements, diag.Achievements = achievements(text)
	breakdown.Clarity, diag.Clarity = clarity(text)

	total := 0.0
	for _, dimension := range Dimensions {
		total += float64(breakdown.of(dimension)) / maxSubScore * e.weights.of(dimension) * 100
	}
	overall := int(math.Round(clamp(total, 0, 100)))

	completeness := dataCompleteness(text, in.Candidate)
	structural := clamp(0.5*float64(breakdown.Structure)/maxSubScore+0.5*float64(breakdown.Clarity)/maxSubScore, 0, 1)

	return Analysis{
		ModelVersion: ModelVersion,
		OverallScore: overall,
		Breakdown:    breakdown,
		RiskFlags:    riskFlags(breakdown),
		Confidence: Confidence{
			ModelConfidence:      ModelConfidence,
			DataCompleteness:     round3(completeness),
			StructuralConfidence: round3(structural),
			FinalConfidence:      round3(clamp(completeness*0.35+structural*0.35+ModelConfidence*0.30, 0, 1)),
		},
		Diagnostics: diag,
		Insights:    fallbackInsights(overall, breakdown),
		Weights:     e.weights,
	}
}

func dataCompleteness(text string, candidate records.Candidate) float64 {
	populated := 0
	for _, ok := range []bool{
		strings.TrimSpace(text) != "",
		strings.TrimSpace(candidate.Name) != "",
		strings.TrimSpace(candidate.Role) != "",
		len(candidate.Skills) > 0,
		len(candidate.ExperienceHistory) > 0,
	} {
		if ok {
			populated++
		}
	}
	return float64(populated) / 5
}

func riskFlags(b Breakdown) []string {
	flags := make([]string, 0, len(Dimensions))
	if b.Structure < 10 {
		flags = append(flags, RiskWeakStructure)
	}
	if b.Achievements < 8 {
		flags = append(flags, RiskFewAchievements)
	}
	if b.SkillDensity < 8 {
		flags = append(flags, RiskLowSkillDensity)
	}
	if b.ExperienceDepth < 8 {
		flags = append(flags, RiskShallowDepth)
	}
	if b.Clarity < 8 {
		flags = append(flags, RiskClarity)
	}
	return flags
}

// Seniority estimates a level from the experience depth sub-score.
func Seniority(experienceDepth int) string {
	switch {
	case experienceDepth >= 14:
		return "Senior"
	case experienceDepth >= 9:
		return "Mid"
	default:
		return "Junior"
	}
}

// Readiness maps an overall score to a hiring readiness label.
func Readiness(overall int) string {
	switch {
	case overall >= 75:
		return "Interview Ready"
	case overall >= 55:
		return "Screening Recommended"
	default:
		return "Needs Development"
	}
}

func fallbackInsights(overall int, b Breakdown) Insights {
	ranked := append([]string(nil), Dimensions...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return b.of(ranked[i]) > b.of(ranked[j])
	})

	claim := func(dimension string) evidence.Claim {
		return evidence.Claim{
			Label:    Label(dimension),
			Evidence: fmt.Sprintf("Deterministic sub-score %d/%d", b.of(dimension), maxSubScore),
		}
	}

	strengths := []evidence.Claim{claim(ranked[0]), claim(ranked[1])}

	weakest := append([]string(nil), Dimensions...)
	sort.SliceStable(weakest, func(i, j int) bool {
		return b.of(weakest[i]) < b.of(weakest[j])
	})
	improvements := []evidence.Claim{claim(weakest[0]), claim(weakest[1])}
	for i := range improvements {
		improvements[i].Impact = "medium"
	}

	return Insights{
		Summary:      FallbackSummary,
		Strengths:    strengths,
		Improvements: improvements,
		Seniority:    Seniority(b.ExperienceDepth),
		Readiness:    Readiness(overall),
	}
}
