package fusion

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/rie/internal/ai"
	"github.com/spigell/rie/internal/cvreview"
	"github.com/spigell/rie/internal/logger"
	"github.com/spigell/rie/internal/records"
	"github.com/spigell/rie/internal/skillmatch"
	"github.com/spigell/rie/internal/textsignal"
)

// Pipeline runs a deterministic engine, asks the assessor once and fuses.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	skillMatch *skillmatch.Engine
	cv         *cvreview.Engine
	assessor   *ai.Assessor
	logger     *zap.Logger
}

func NewPipeline(skillMatch *skillmatch.Engine, cv *cvreview.Engine, assessor *ai.Assessor, log *zap.Logger) *Pipeline {
	return &Pipeline{
		skillMatch: skillMatch,
		cv:         cv,
		assessor:   assessor,
		logger:     logger.WithFields(log),
	}
}

// Screen scores a candidate against a job. A non-nil opinion is used instead
// of calling the assessor.
func (p *Pipeline) Screen(ctx context.Context, candidate records.Candidate, job records.Job, opinion *ai.Verdict) Result {
	candidate = enrich(candidate)
	bundle := p.skillMatch.Evaluate(candidate, job)

	prompt, err := ai.ScreenPrompt(screenPayload(job, bundle))
	verdict := p.opinion(ctx, prompt, err, opinion)

	result := Fuse(FromSkillMatch(bundle), verdict, Meta{ModelVersion: ModelVersion, PromptHash: prompt.Hash()})
	p.log(candidate, job.Title, bundle.Signals.RoleModel, result)
	return result
}

// Review grades a resume. Job is optional context.
func (p *Pipeline) Review(ctx context.Context, candidate records.Candidate, job *records.Job, opinion *ai.Verdict) Result {
	candidate = enrich(candidate)
	analysis := p.cv.Score(cvreview.Input{ResumeText: candidate.ResumeText, Candidate: candidate, Job: job})

	prompt, err := ai.ReviewPrompt(reviewPayload(candidate, job, analysis))
	verdict := p.opinion(ctx, prompt, err, opinion)

	result := Fuse(FromCVReview(analysis), verdict, Meta{PromptHash: prompt.Hash()})
	title := ""
	if job != nil {
		title = job.Title
	}
	p.log(candidate, title, "", result)
	return result
}

func (p *Pipeline) opinion(ctx context.Context, prompt ai.Prompt, promptErr error, supplied *ai.Verdict) ai.Verdict {
	switch {
	case supplied != nil:
		return *supplied
	case promptErr != nil:
		p.logger.Warn("skip ai call", zap.Error(promptErr))
		return ai.NoOpinion(fmt.Sprintf("build prompt: %v", promptErr))
	default:
		return p.assessor.Assess(ctx, prompt)
	}
}

func (p *Pipeline) log(candidate records.Candidate, job, roleModel string, result Result) {
	fields := append(logger.ScoreFields(result.ModelVersion, roleModel, result.PromptHash),
		zap.Int("score", result.Score),
		zap.Float64("final_confidence", result.Confidence.FinalConfidence),
		zap.String("ai_status", result.AIStatus),
	)
	logger.WithPair(p.logger, candidate.Name, job).Info("scored "+result.Kind, fields...)
}

// enrich fills empty candidate fields from the resume text.
func enrich(candidate records.Candidate) records.Candidate {
	if strings.TrimSpace(candidate.ResumeText) == "" {
		return candidate
	}
	return candidate.Enrich(textsignal.ParseResume(candidate.ResumeText))
}

type scoringContext struct {
	RequiredCoverage  float64 `json:"requiredRatio"`
	PreferredCoverage float64 `json:"preferredRatio"`
	ExperienceMatch   float64 `json:"experienceMatchScore"`
}

type screenRequest struct {
	JobTitle          string         `json:"jobTitle"`
	MatchedSkills     []string       `json:"matchedSkills"`
	MissingSkills     []string       `json:"missingSkills"`
	ExperienceSummary string         `json:"experienceSummary"`
	ScoringContext    scoringContext `json:"scoringContext"`
}

func screenPayload(job records.Job, b skillmatch.Bundle) screenRequest {
	summary := fmt.Sprintf("Experience is below minimum requirement (%g years).", b.Signals.CandidateExperience)
	if b.Coverage.Experience >= 1 {
		summary = fmt.Sprintf("Experience meets minimum requirement (%g years).", b.Signals.CandidateExperience)
	}

	return screenRequest{
		JobTitle:          job.Title,
		MatchedSkills:     append(append([]string{}, b.Signals.MatchedRequired...), b.Signals.MatchedPreferred...),
		MissingSkills:     append(append([]string{}, b.Signals.MissingRequired...), b.Signals.MissingPreferred...),
		ExperienceSummary: summary,
		ScoringContext: scoringContext{
			RequiredCoverage:  b.Coverage.Required,
			PreferredCoverage: b.Coverage.Preferred,
			ExperienceMatch:   b.Coverage.Experience,
		},
	}
}

type reviewDeterministic struct {
	OverallScore int                  `json:"overallScore"`
	Breakdown    cvreview.Breakdown   `json:"breakdown"`
	Diagnostics  cvreview.Diagnostics `json:"diagnostics"`
	RiskFlags    []string             `json:"riskFlags"`
}

type reviewRequest struct {
	ResumeText    string              `json:"parsedResumeText"`
	Candidate     records.Candidate   `json:"candidate"`
	JobContext    *records.Job        `json:"optionalJobContext"`
	Deterministic reviewDeterministic `json:"deterministic"`
}

// reviewPayload moves the resume text out of the candidate so it is sent once.
func reviewPayload(candidate records.Candidate, job *records.Job, a cvreview.Analysis) reviewRequest {
	text := candidate.ResumeText
	candidate.ResumeText = ""
	return reviewRequest{
		ResumeText: text,
		Candidate:  candidate,
		JobContext: job,
		Deterministic: reviewDeterministic{
			OverallScore: a.OverallScore,
			Breakdown:    a.Breakdown,
			Diagnostics:  a.Diagnostics,
			RiskFlags:    a.RiskFlags,
		},
	}
}
