// Package skillmatch scores how well a candidate's stated skills and experience
// cover a job's requirements. Scoring is deterministic and uses no language model.
package skillmatch

import (
	"math"
	"strconv"
	"strings"

	"github.com/spigell/rie/internal/evidence"
	"github.com/spigell/rie/internal/ontology"
	"github.com/spigell/rie/internal/records"
	"github.com/spigell/rie/internal/rolemodel"
	"github.com/spigell/rie/internal/textsignal"
)

const (
	ModelVersion = "RIE-SkillMatch-v1.0"

	// ModelConfidence is the fixed confidence of the deterministic path.
	ModelConfidence = 0.65

	neutralCoverage   = 0.5
	neutralExperience = 0.8
	softMatched       = 1.0
	softUnmatched     = 0.6
	candidateExtras   = 2

	RiskLowRequired      = "Low required-skill coverage"
	RiskExperienceShort  = "Experience below requirement"
	RiskIncompleteRecord = "Incomplete candidate profile data"

	MatchedRequired  = "Job.requiredSkills"
	MatchedPreferred = "Job.preferredSkills"
	MatchedProfile   = "Candidate.profile"

	strengthEvidence = "Mapped from candidate.skills"
)

type Coverage struct {
	Required   float64 `json:"requiredCoverage"`
	Preferred  float64 `json:"preferredCoverage"`
	Experience float64 `json:"experienceMatch"`
}

type Confidence struct {
	ModelConfidence    float64 `json:"modelConfidence"`
	DataCompleteness   float64 `json:"dataCompleteness"`
	CoverageConfidence float64 `json:"coverageConfidence"`
	FinalConfidence    float64 `json:"finalConfidence"`
}

// Signals are the normalized lists and raw inputs behind a score.
type Signals struct {
	RoleModel           string   `json:"roleModel"`
	CandidateSkills     []string `json:"candidateSkills"`
	RequiredSkills      []string `json:"requiredSkills"`
	PreferredSkills     []string `json:"preferredSkills"`
	MatchedRequired     []string `json:"matchedRequired"`
	MissingRequired     []string `json:"missingRequired"`
	MatchedPreferred    []string `json:"matchedPreferred"`
	MissingPreferred    []string `json:"missingPreferred"`
	MinExperience       float64  `json:"minExperience"`
	CandidateExperience float64  `json:"candidateExperience"`
}

// Bundle is the full deterministic result for one candidate and job.
type Bundle struct {
	ModelVersion   string            `json:"modelVersion"`
	FitScore       int               `json:"fitScore"`
	HiringLabel    string            `json:"hiringRecommendation"`
	Coverage       Coverage          `json:"coverage"`
	Confidence     Confidence        `json:"confidence"`
	Strengths      []evidence.Claim  `json:"strengths"`
	Gaps           []evidence.Claim  `json:"gaps"`
	RiskFlags      []string          `json:"riskFlags"`
	Recommendation string            `json:"recommendation"`
	Signals        Signals           `json:"deterministicSignals"`
	Weights        rolemodel.Weights `json:"scoringWeights"`
}

// Pool returns the keywords AI claims about this bundle must share to be kept.
func (b Bundle) Pool() evidence.Pool {
	pool := evidence.NewPool(evidence.Labels(b.Strengths)...)
	pool.Add(evidence.Labels(b.Gaps)...)
	pool.Add(b.Signals.MatchedRequired...)
	pool.Add(b.Signals.MissingRequired...)
	pool.Add(b.Signals.MatchedPreferred...)
	pool.Add(b.Signals.MissingPreferred...)
	return pool
}

type Engine struct {
	ontology *ontology.Table
	roles    *rolemodel.Selector
}

func New(table *ontology.Table, roles *rolemodel.Selector) *Engine {
	return &Engine{ontology: table, roles: roles}
}

// Evaluate scores the candidate against the job.
func (e *Engine) Evaluate(candidate records.Candidate, job records.Job) Bundle {
	selection := e.roles.Select(job)
	weights := selection.Weights

	candidateSkills := e.ontology.NormalizeList(candidate.Skills)
	required := e.ontology.NormalizeList(job.RequiredSkills)
	preferred := e.ontology.NormalizeList(job.PreferredSkills)

	matcher := newMatcher(candidate.Role, candidateSkills)
	matchedRequired, missingRequired := matcher.split(required)
	matchedPreferred, missingPreferred := matcher.split(preferred)

	requiredCoverage := ratio(len(matchedRequired), len(required))
	preferredCoverage := ratio(len(matchedPreferred), len(preferred))

	minExperience := math.Max(0, job.MinExperience)
	years := math.Max(0, candidate.ExperienceYears)
	experienceMatch := neutralExperience
	if minExperience > 0 {
		experienceMatch = clamp(years/minExperience, 0, 1)
	}
	experienceGap := math.Max(0, minExperience-years)

	soft := softUnmatched
	if len(matchedPreferred) > 0 {
		soft = softMatched
	}

	// Conversions round each product so no fused multiply-add changes the result.
	raw := (float64(requiredCoverage*weights.Required) +
		float64(preferredCoverage*weights.Preferred) +
		float64(experienceMatch*weights.Experience) +
		float64(soft*weights.SoftSkill)) * 100
	fitScore := int(math.Round(clamp(raw, 0, 100)))

	completeness := dataCompleteness(candidate, candidateSkills, required)
	coverageConfidence := clamp(0.7*requiredCoverage+0.2*preferredCoverage+0.1*experienceMatch, 0, 1)

	var risks []string
	if requiredCoverage < 0.5 {
		risks = append(risks, RiskLowRequired)
	}
	if experienceGap > 0 {
		risks = append(risks, RiskExperienceShort)
	}
	if completeness < 0.6 {
		risks = append(risks, RiskIncompleteRecord)
	}

	return Bundle{
		ModelVersion: ModelVersion,
		FitScore:     fitScore,
		HiringLabel:  HiringLabel(fitScore),
		Coverage: Coverage{
			Required:   round3(requiredCoverage),
			Preferred:  round3(preferredCoverage),
			Experience: round3(experienceMatch),
		},
		Confidence: Confidence{
			ModelConfidence:    ModelConfidence,
			DataCompleteness:   round3(completeness),
			CoverageConfidence: round3(coverageConfidence),
			FinalConfidence:    round3(clamp(completeness*0.35+coverageConfidence*0.65, 0, 1)),
		},
		Strengths:      strengths(candidateSkills, matchedRequired, matchedPreferred),
		Gaps:           gaps(missingRequired, missingPreferred, experienceGap),
		RiskFlags:      evidence.CapStrings(risks, evidence.MaxRiskFlags),
		Recommendation: Recommendation(fitScore),
		Signals: Signals{
			RoleModel:           selection.Key,
			CandidateSkills:     candidateSkills,
			RequiredSkills:      required,
			PreferredSkills:     preferred,
			MatchedRequired:     matchedRequired,
			MissingRequired:     missingRequired,
			MatchedPreferred:    matchedPreferred,
			MissingPreferred:    missingPreferred,
			MinExperience:       minExperience,
			CandidateExperience: years,
		},
		Weights: weights,
	}
}

// Recommendation maps a fit score onto a next-step tier.
func Recommendation(fitScore int) string {
	switch {
	case fitScore >= 80:
		return "Strong fit. Fast-track to interview with scenario-based validation."
	case fitScore >= 60:
		return "Moderate fit. Continue with structured screening focused on missing skills."
	default:
		return "Partial fit. Consider alternate role mapping or targeted upskilling plan."
	}
}

// HiringLabel is the short hiring recommendation for a fit score.
func HiringLabel(fitScore int) string {
	switch {
	case fitScore >= 75:
		return "Strong Match"
	case fitScore >= 50:
		return "Moderate Match"
	default:
		return "Weak Match"
	}
}

// matcher holds the normalized candidate skills and the keywords of those
// skills and the stated role.
type matcher struct {
	skills map[string]struct{}
	tokens map[string]struct{}
}

func newMatcher(role string, skills []string) matcher {
	m := matcher{
		skills: make(map[string]struct{}, len(skills)),
		tokens: textsignal.TokenSet(textsignal.Keywords, role),
	}
	for _, skill := range skills {
		m.skills[skill] = struct{}{}
		for _, token := range textsignal.Keywords(skill) {
			m.tokens[token] = struct{}{}
		}
	}
	return m
}

// matches is an exact normalized match, or any shared keyword.
func (m matcher) matches(skill string) bool {
	if _, ok := m.skills[skill]; ok {
		return true
	}
	for _, token := range textsignal.Keywords(skill) {
		if _, ok := m.tokens[token]; ok {
			return true
		}
	}
	return false
}

func (m matcher) split(skills []string) (matched, missing []string) {
	matched = make([]string, 0, len(skills))
	missing = make([]string, 0, len(skills))
	for _, skill := range skills {
		if m.matches(skill) {
			matched = append(matched, skill)
			continue
		}
		missing = append(missing, skill)
	}
	return matched, missing
}

// dataCompleteness is the share of populated fields among name, email, role,
// experience, candidate skills and job required skills.
func dataCompleteness(candidate records.Candidate, skills, required []string) float64 {
	populated := 0
	for _, ok := range []bool{
		strings.TrimSpace(candidate.Name) != "",
		strings.TrimSpace(candidate.Email) != "",
		strings.TrimSpace(candidate.Role) != "",
		candidate.ExperienceYears > 0,
		len(skills) > 0,
		len(required) > 0,
	} {
		if ok {
			populated++
		}
	}
	return clamp(float64(populated)/6, 0, 1)
}

func strengths(candidateSkills, matchedRequired, matchedPreferred []string) []evidence.Claim {
	claims := make([]evidence.Claim, 0, len(matchedRequired)+len(matchedPreferred)+candidateExtras)
	for _, skill := range matchedRequired {
		claims = append(claims, strength(skill, MatchedRequired, 10))
	}
	for _, skill := range matchedPreferred {
		claims = append(claims, strength(skill, MatchedPreferred, 6))
	}

	matched := make(map[string]struct{}, len(matchedRequired)+len(matchedPreferred))
	for _, skill := range append(append([]string(nil), matchedRequired...), matchedPreferred...) {
		matched[skill] = struct{}{}
	}
	extras := 0
	for _, skill := range candidateSkills {
		if extras == candidateExtras {
			break
		}
		if _, ok := matched[skill]; ok {
			continue
		}
		claims = append(claims, strength(skill, MatchedProfile, 3))
		extras++
	}

	return evidence.CapClaims(claims, evidence.MaxClaims)
}

func strength(label, matchedWith string, weight int) evidence.Claim {
	return evidence.Claim{Label: label, Evidence: strengthEvidence, MatchedWith: matchedWith, Weight: weight}
}

func gaps(missingRequired, missingPreferred []string, experienceGap float64) []evidence.Claim {
	claims := make([]evidence.Claim, 0, len(missingRequired)+len(missingPreferred)+1)
	for _, skill := range missingRequired {
		claims = append(claims, evidence.Claim{Label: skill, Evidence: "Required but missing", Impact: "high"})
	}
	for _, skill := range missingPreferred {
		claims = append(claims, evidence.Claim{Label: skill, Evidence: "Preferred but missing", Impact: "medium"})
	}
	if experienceGap > 0 {
		claims = append(claims, evidence.Claim{
			Label:    "experience",
			Evidence: "Experience short by " + strconv.FormatFloat(experienceGap, 'f', -1, 64) + " year(s)",
			Impact:   "high",
		})
	}
	return evidence.CapClaims(claims, evidence.MaxClaims)
}

// ratio is matched/total, or the neutral 0.5 for an empty list.
func ratio(matched, total int) float64 {
	if total == 0 {
		return neutralCoverage
	}
	return float64(matched) / float64(total)
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
