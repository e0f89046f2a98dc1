package cvreview

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spigell/rie/internal/ontology"
	"github.com/spigell/rie/internal/records"
	"github.com/spigell/rie/internal/textsignal"
)

const (
	DimensionStructure       = "structure"
	DimensionSkillDensity    = "skillDensity"
	DimensionExperienceDepth = "experienceDepth"
	DimensionAchievements    = "achievements"
	DimensionClarity         = "clarity"

	maxSubScore = 20

	minSummaryLength   = 40
	optimalWordsMin    = 250
	optimalWordsMax    = 900
	shortResumeWords   = 120
	idealSentenceWords = 18
	longSentenceWords  = 30
)

// Dimensions in reporting order.
var Dimensions = []string{
	DimensionStructure,
	DimensionSkillDensity,
	DimensionExperienceDepth,
	DimensionAchievements,
	DimensionClarity,
}

// Checked from the most senior rank down.
var seniorityRanks = []struct {
	rank    int
	pattern *regexp.Regexp
}{
	{rank: 5, pattern: regexp.MustCompile(`principal|staff|director|head|vp|chief`)},
	{rank: 4, pattern: regexp.MustCompile(`lead|senior`)},
	{rank: 3, pattern: regexp.MustCompile(`mid|engineer ii|analyst ii`)},
	{rank: 1, pattern: regexp.MustCompile(`junior|associate|intern|trainee`)},
}

type StructureDiagnostics struct {
	HasSummary       bool `json:"hasSummary"`
	HasSkillsSection bool `json:"hasSkillsSection"`
	MeasurableHits   int  `json:"measurableHits"`
	Words            int  `json:"words"`
	OptimalLength    bool `json:"optimalLength"`
}

type SkillDensityDiagnostics struct {
	UniqueCount       int      `json:"uniqueCount"`
	RepeatedPenalty   int      `json:"repeatedPenalty"`
	DomainConsistency float64  `json:"domainConsistency"`
	CanonicalSkills   []string `json:"canonicalSkills"`
}

type ExperienceDepthDiagnostics struct {
	Years           float64 `json:"years"`
	Progression     float64 `json:"progression"`
	AvgTenureMonths float64 `json:"avgTenureMonths"`
	Coherence       float64 `json:"coherence"`
}

type AchievementDiagnostics struct {
	Quantified          int `json:"quantified"`
	ImpactVerbHits      int `json:"impactVerbHits"`
	BusinessOutcomeHits int `json:"businessOutcomeHits"`
}

type ClarityDiagnostics struct {
	AvgSentenceLength float64 `json:"avgSentenceLen"`
	BuzzwordHits      int     `json:"buzzwordHits"`
	LongSentenceRatio float64 `json:"longSentenceRatio"`
}

type Diagnostics struct {
	Structure       StructureDiagnostics       `json:"structure"`
	SkillDensity    SkillDensityDiagnostics    `json:"skillDensity"`
	ExperienceDepth ExperienceDepthDiagnostics `json:"experienceDepth"`
	Achievements    AchievementDiagnostics     `json:"achievements"`
	Clarity         ClarityDiagnostics         `json:"clarity"`
}

func structure(text string, candidate records.Candidate) (int, StructureDiagnostics) {
	words := textsignal.CountWords(text)
	hits := textsignal.QuantifiedHits(text)

	d := StructureDiagnostics{
		HasSummary:       utf8.RuneCountInString(strings.TrimSpace(candidate.Summary)) >= minSummaryLength,
		HasSkillsSection: len(candidate.Skills) > 0,
		MeasurableHits:   hits,
		Words:            words,
		OptimalLength:    words >= optimalWordsMin && words <= optimalWordsMax,
	}

	score := clamp(float64(hits)*1.5, 0, 6)
	if d.HasSummary {
		score += 4
	}
	if d.HasSkillsSection {
		score += 4
	}
	switch {
	case d.OptimalLength:
		score += 6
	case words < shortResumeWords:
		score += 1
	default:
		score += 3
	}

	return subScore(score), d
}

func skillDensity(candidate records.Candidate, job *records.Job, table *ontology.Table) (int, SkillDensityDiagnostics) {
	role := candidate.Role
	if strings.TrimSpace(role) == "" && job != nil {
		role = job.Title
	}
	roleTokens := textsignal.TokenSet(textsignal.Keywords, role)

	skills := table.NormalizeList(candidate.Skills)
	unique := len(skills)
	penalty := max(0, len(candidate.Skills)-unique)

	hits := 0
	for _, skill := range skills {
		for _, token := range textsignal.Keywords(skill) {
			if _, ok := roleTokens[token]; ok {
				hits++
				break
			}
		}
	}
	consistency := 0.0
	if unique > 0 {
		consistency = float64(hits) / float64(unique)
	}

	score := clamp(float64(unique)*0.9, 0, 10) +
		clamp(consistency*6, 0, 6) +
		clamp(float64(4-penalty), 0, 4)

	return subScore(score), SkillDensityDiagnostics{
		UniqueCount:       unique,
		RepeatedPenalty:   penalty,
		DomainConsistency: round3(consistency),
		CanonicalSkills:   skills,
	}
}

func seniorityRank(title string) int {
	title = strings.ToLower(title)
	for _, level := range seniorityRanks {
		if level.pattern.MatchString(title) {
			return level.rank
		}
	}
	return 2
}

func experienceDepth(candidate records.Candidate) (int, ExperienceDepthDiagnostics) {
	history := candidate.ExperienceHistory
	years := math.Max(0, candidate.ExperienceYears)

	progression := 0.5
	if len(history) > 1 {
		up := 0
		for i := 1; i < len(history); i++ {
			if seniorityRank(history[i].Title) >= seniorityRank(history[i-1].Title) {
				up++
			}
		}
		progression = float64(up) / float64(len(history)-1)
	} else if years > 3 {
		progression = 0.7
	}

	avgTenure := years * 12
	if len(history) > 0 {
		total := 0.0
		for _, entry := range history {
			total += math.Max(0, entry.TenureMonths)
		}
		avgTenure = total / float64(len(history))
	}

	coherence := 0.4
	role := textsignal.TokenSet(textsignal.Keywords, candidate.Role)
	switch {
	case len(history) > 0:
		hits := 0
		for _, entry := range history {
			for _, token := range textsignal.Keywords(entry.Title) {
				if _, ok := role[token]; ok {
					hits++
					break
				}
			}
		}
		coherence = float64(hits) / float64(len(history))
	case strings.TrimSpace(candidate.Role) != "":
		coherence = 0.6
	}

	score := clamp(years*1.2, 0, 8) +
		clamp(progression*4, 0, 4) +
		clamp(avgTenure/12, 0, 4) +
		clamp(coherence*4, 0, 4)

	return subScore(score), ExperienceDepthDiagnostics{
		Years:           years,
		Progression:     round3(progression),
		AvgTenureMonths: round3(avgTenure),
		Coherence:       round3(coherence),
	}
}

func achievements(text string) (int, AchievementDiagnostics) {
	d := AchievementDiagnostics{
		Quantified:          textsignal.QuantifiedHits(text),
		ImpactVerbHits:      textsignal.ImpactVerbHits(text),
		BusinessOutcomeHits: textsignal.OutcomeTermHits(text),
	}

	score := clamp(float64(d.Quantified), 0, 8) +
		clamp(float64(d.ImpactVerbHits)*0.8, 0, 6) +
		clamp(float64(d.BusinessOutcomeHits), 0, 6)

	return subScore(score), d
}

func clarity(text string) (int, ClarityDiagnostics) {
	sentences := textsignal.SentenceSplit(text)
	words := float64(textsignal.CountWords(text))

	avg := words
	longRatio := 0.0
	if len(sentences) > 0 {
		avg = words / float64(len(sentences))
		long := 0
		for _, sentence := range sentences {
			if textsignal.CountWords(sentence) > longSentenceWords {
				long++
			}
		}
		longRatio = float64(long) / float64(len(sentences))
	}
	buzz := textsignal.BuzzwordHits(text)

	readability := clamp(10-math.Abs(idealSentenceWords-avg)*0.5, 0, 10)
	professionalism := clamp(10-float64(buzz)*1.2-longRatio*5, 0, 10)

	return subScore(readability + professionalism), ClarityDiagnostics{
		AvgSentenceLength: round3(avg),
		BuzzwordHits:      buzz,
		LongSentenceRatio: round3(longRatio),
	}
}

func subScore(v float64) int {
	return int(math.Round(clamp(v, 0, maxSubScore)))
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
