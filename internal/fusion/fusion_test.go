package fusion

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/rie/internal/ai"
	"github.com/spigell/rie/internal/cvreview"
	"github.com/spigell/rie/internal/evidence"
	"github.com/spigell/rie/internal/ontology"
	"github.com/spigell/rie/internal/records"
	"github.com/spigell/rie/internal/rolemodel"
	"github.com/spigell/rie/internal/skillmatch"
)

func scenarioBundle(t *testing.T) skillmatch.Bundle {
	t.Helper()
	table, err := ontology.Default()
	require.NoError(t, err)
	roles, err := rolemodel.DefaultSelector(nil)
	require.NoError(t, err)

	return skillmatch.New(table, roles).Evaluate(
		records.Candidate{Name: "Jane", ExperienceYears: 3, Skills: []string{"Python", "AWS"}},
		records.Job{Title: "Operations Analyst", MinExperience: 2, RequiredSkills: []string{"python", "docker"}, PreferredSkills: []string{"aws"}},
	)
}

func TestFuseOutOfRangeOpinionIsDeterministic(t *testing.T) {
	t.Parallel()

	bundle := scenarioBundle(t)
	base := FromSkillMatch(bundle)
	meta := Meta{ModelVersion: ModelVersion, PromptHash: "0123456789abcdef"}

	verdict := ai.Decode(`{"fitScore": 120, "confidence": 0.9, "strengths": ["python", "aws"]}`)
	require.Equal(t, ai.Malformed, verdict.Kind)

	got := Fuse(base, verdict, meta)
	want := Fuse(base, ai.NoOpinion(""), meta)
	want.AIStatus, want.AIReason, want.AIRawResponse = got.AIStatus, got.AIReason, got.AIRawResponse

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("malformed opinion changed the result (-want +got):\n%s", diff)
	}

	assert.Equal(t, bundle.FitScore, got.Score)
	assert.Equal(t, Explainability{DeterministicWeight: 1, AIWeight: 0}, got.Explainability)
	assert.Equal(t, bundle.Strengths, got.Strengths)
	assert.Equal(t, bundle.Gaps, got.Gaps)
	assert.Equal(t, bundle.Recommendation, got.Recommendation)
	assert.Equal(t, bundle.Confidence.FinalConfidence, got.Confidence.FinalConfidence)
	assert.Equal(t, "malformed", got.AIStatus)
	assert.Equal(t, ModelVersion, got.ModelVersion)
	assert.Equal(t, skillmatch.ModelVersion, got.DeterministicVersion)
	assert.Equal(t, "0123456789abcdef", got.PromptHash)
	assert.Equal(t, bundle.Signals, got.DeterministicSignals)
}

func TestFuseBlendsScores(t *testing.T) {
	t.Parallel()

	base := FromSkillMatch(scenarioBundle(t))
	require.Equal(t, 73, base.Score)

	got := Fuse(base, ai.DecodeMap(map[string]any{
		"fitScore":   90,
		"confidence": 0.9,
		"strengths":  []any{"python", "aws", "Great communicator"},
		"gaps":       []any{map[string]any{"label": "Docker", "reason": "no container work listed"}, "Terraform"},
		"riskFlags":  []any{"Docker gap"},
	}), Meta{ModelVersion: ModelVersion})

	// round(90*0.7 + 73*0.3) = round(84.9)
	assert.Equal(t, 85, got.Score)
	assert.InDelta(t, 0.825, got.Confidence.ModelConfidence, 1e-9)
	assert.InDelta(t, 0.733, got.Confidence.FinalConfidence, 1e-9)
	assert.Equal(t, base.DataCompleteness, got.Confidence.DataCompleteness)
	assert.Equal(t, base.CoverageConfidence, got.Confidence.CoverageConfidence)
	assert.Equal(t, Explainability{DeterministicWeight: DeterministicWeight, AIWeight: AIWeight}, got.Explainability)

	assert.Equal(t, []string{"python", "aws"}, evidence.Labels(got.Strengths))
	assert.Equal(t, ai.StrengthPlaceholder, got.Strengths[0].Evidence)

	// Only Docker is backed, so the deterministic gaps are kept.
	assert.Equal(t, base.Gaps, got.Gaps)

	assert.Equal(t, []string{"Docker gap"}, got.RiskFlags)
	assert.Equal(t, base.Recommendation, got.Recommendation)
	assert.Equal(t, "opinion", got.AIStatus)
}

func TestFuseSubstitutesWhenOneClaimSurvives(t *testing.T) {
	t.Parallel()

	base := FromSkillMatch(scenarioBundle(t))
	got := Fuse(base, ai.DecodeMap(map[string]any{
		"fitScore":       60,
		"confidence":     0.5,
		"strengths":      []any{map[string]any{"label": "Python", "evidence": "five years of python"}, map[string]any{"label": "Charismatic leader", "evidence": "great vibes"}},
		"recommendation": "Advance to a technical interview.",
	}), Meta{})

	assert.Equal(t, base.Strengths, got.Strengths)
	assert.NotContains(t, evidence.Labels(got.Strengths), "Charismatic leader")
	assert.Equal(t, "Advance to a technical interview.", got.Recommendation)
}

func TestFuseNeverKeepsUnbackedClaims(t *testing.T) {
	t.Parallel()

	base := FromSkillMatch(scenarioBundle(t))
	claims := []any{"Visionary", "Synergy driver", "Rockstar energy", "Python wizard", "AWS certified", "Docker captain"}

	got := Fuse(base, ai.DecodeMap(map[string]any{
		"fitScore": 50, "confidence": 0.5, "strengths": claims, "gaps": claims,
	}), Meta{})

	for _, claim := range append(append([]evidence.Claim{}, got.Strengths...), got.Gaps...) {
		assert.True(t, base.Pool.Backs(claim), claim.Label)
	}
	assert.LessOrEqual(t, len(got.Strengths), evidence.MaxClaims)
}

func TestFuseCVReview(t *testing.T) {
	t.Parallel()

	table, err := ontology.Default()
	require.NoError(t, err)
	engine, err := cvreview.New(table, cvreview.Weights{})
	require.NoError(t, err)

	analysis := engine.Score(cvreview.Input{ResumeText: "Increased revenue by 30%.", Candidate: records.Candidate{Name: "Jane", Role: "Engineer"}})
	base := FromCVReview(analysis)

	got := Fuse(base, ai.DecodeMap(map[string]any{
		"qualityScore":    80,
		"modelConfidence": 0.8,
		"improvements": []any{
			map[string]any{"label": "Structure", "evidence": "no sections"},
			map[string]any{"label": "Achievements", "evidence": "one metric only"},
		},
	}), Meta{})

	assert.Equal(t, KindCVReview, got.Kind)
	assert.Equal(t, cvreview.ModelVersion, got.ModelVersion)
	assert.Equal(t, []string{"Structure", "Achievements"}, evidence.Labels(got.Gaps))
	assert.Equal(t, analysis.Insights.Strengths, got.Strengths)
	assert.Equal(t, analysis.Confidence.StructuralConfidence, got.Confidence.CoverageConfidence)
}

type stubGenerator struct {
	response string
	calls    int
}

func (s *stubGenerator) Generate(context.Context, ai.Prompt) (string, error) {
	s.calls++
	return s.response, nil
}

func (s *stubGenerator) Model() string { return "stub" }

func newPipeline(t *testing.T, gen ai.Generator) *Pipeline {
	t.Helper()
	table, err := ontology.Default()
	require.NoError(t, err)
	roles, err := rolemodel.DefaultSelector(nil)
	require.NoError(t, err)
	cv, err := cvreview.New(table, cvreview.Weights{})
	require.NoError(t, err)
	return NewPipeline(skillmatch.New(table, roles), cv, ai.NewAssessor(gen, zap.NewNop(), 0), zap.NewNop())
}

func TestPipelineScreen(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: "```json\n{\"fitScore\": 90, \"confidence\": 0.9}\n```"}
	pipeline := newPipeline(t, gen)

	candidate := records.Candidate{Name: "Jane", ResumeText: "Skills: Python, AWS\n6 years of experience"}
	job := records.Job{Title: "Backend Engineer", RequiredSkills: []string{"python"}}

	got := pipeline.Screen(context.Background(), candidate, job, nil)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "opinion", got.AIStatus)
	assert.Equal(t, "stub", got.AIModel)
	assert.Len(t, got.PromptHash, 16)
	signals, ok := got.DeterministicSignals.(skillmatch.Signals)
	require.True(t, ok)
	assert.Equal(t, []string{"python", "aws"}, signals.CandidateSkills)
	assert.Equal(t, 6.0, signals.CandidateExperience)

	supplied := ai.NoOpinion("replay")
	replayed := pipeline.Screen(context.Background(), candidate, job, &supplied)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "absent", replayed.AIStatus)
	assert.Equal(t, got.PromptHash, replayed.PromptHash)
}

func TestPipelineReviewWithoutAI(t *testing.T) {
	t.Parallel()

	got := newPipeline(t, nil).Review(context.Background(), records.Candidate{Name: "Jane", ResumeText: "Increased revenue by 30%."}, nil, nil)

	assert.Equal(t, "absent", got.AIStatus)
	assert.Equal(t, "ai disabled", got.AIReason)
	assert.Equal(t, Explainability{DeterministicWeight: 1}, got.Explainability)
	assert.Equal(t, cvreview.FallbackSummary, got.Recommendation)
}

func TestFuseCVReviewKeepsModelNarrative(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: `{
		"executiveSummary": "Solid backend engineer with measurable delivery.",
		"qualityScore": 80,
		"modelConfidence": 0.8,
		"seniorityEstimate": "Senior",
		"hiringReadiness": "Ready for interview"
	}`}

	got := newPipeline(t, gen).Review(context.Background(), records.Candidate{Name: "Jane", ResumeText: "Increased revenue by 30%."}, nil, nil)

	require.Equal(t, "opinion", got.AIStatus)
	assert.Equal(t, "Solid backend engineer with measurable delivery.", got.Recommendation)
	assert.Equal(t, "Senior", got.Seniority)
	assert.Equal(t, "Ready for interview", got.Readiness)
}

func TestFuseCVReviewWithoutOpinionKeepsDeterministicInsights(t *testing.T) {
	t.Parallel()

	got := newPipeline(t, nil).Review(context.Background(), records.Candidate{Name: "Jane", ResumeText: "Increased revenue by 30%."}, nil, nil)

	assert.Equal(t, cvreview.FallbackSummary, got.Recommendation)
	assert.NotEmpty(t, got.Seniority)
	assert.NotEmpty(t, got.Readiness)
}

func TestFuseCVReviewDropsClaimsBackedOnlyByTemplateWords(t *testing.T) {
	t.Parallel()

	table, err := ontology.Default()
	require.NoError(t, err)
	engine, err := cvreview.New(table, cvreview.Weights{})
	require.NoError(t, err)

	analysis := engine.Score(cvreview.Input{ResumeText: "Increased revenue by 30%.", Candidate: records.Candidate{Name: "Jane"}})
	base := FromCVReview(analysis)

	got := Fuse(base, ai.DecodeMap(map[string]any{
		"qualityScore":    70,
		"modelConfidence": 0.7,
		"strengths": []any{
			map[string]any{"label": "Charismatic visionary", "evidence": "high score"},
			map[string]any{"label": "Natural born closer", "evidence": "deterministic"},
		},
	}), Meta{})

	assert.Equal(t, analysis.Insights.Strengths, got.Strengths)
	assert.NotContains(t, evidence.Labels(got.Strengths), "Charismatic visionary")
}

func TestReviewDoesNotInventHistoryFromRoleLines(t *testing.T) {
	t.Parallel()

	pipeline := newPipeline(t, nil)
	candidate := records.Candidate{Name: "Jane", ExperienceYears: 6}

	labelled := pipeline.Review(context.Background(), withResume(candidate, "Experience:\nTitle: Senior Engineer\nBuilt payment APIs."), nil, nil)
	plain := pipeline.Review(context.Background(), withResume(candidate, "Experience:\nSenior Engineer\nBuilt payment APIs."), nil, nil)

	for _, result := range []Result{labelled, plain} {
		diagnostics, ok := result.DeterministicSignals.(cvreview.Diagnostics)
		require.True(t, ok)
		assert.InDelta(t, 72.0, diagnostics.ExperienceDepth.AvgTenureMonths, 1e-9)
	}
}

func withResume(c records.Candidate, text string) records.Candidate {
	c.ResumeText = text
	return c
}
