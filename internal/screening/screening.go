// Package screening runs ordered steps over candidate and job pairs: skip pairs
// already in the audit log, score the rest, then drop weak results.
package screening

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/rie/internal/ai"
	"github.com/spigell/rie/internal/audit"
	"github.com/spigell/rie/internal/fusion"
	"github.com/spigell/rie/internal/records"
)

// Filter represents a single step applied to screening entries.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, e *Entries) (*Entries, Step, error)
}

// Scorer produces a fused screening result for one pair.
type Scorer interface {
	Screen(ctx context.Context, candidate records.Candidate, job records.Job, opinion *ai.Verdict) fusion.Result
}

// Deps aggregates dependencies shared across all steps.
type Deps struct {
	Logger   *zap.Logger
	Audit    *audit.Store
	Scorer   Scorer
	Parallel int
}

// Step describes the result of executing a step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains the thresholds consumed by the filters.
type Config struct {
	MinimumFitScore         int      `mapstructure:"minimum-fit-score"`
	MinimumRequiredCoverage float64  `mapstructure:"minimum-required-coverage"`
	ExcludeRiskFlags        []string `mapstructure:"exclude-risk-flags"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the steps in the order rank runs them.
func Default(rescreen bool) []Filter {
	return []Filter{
		NewAlreadyScreened(rescreen),
		NewScore(),
		NewMinFit(),
		NewRequiredCoverage(),
		NewRiskFlags(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled step and then applies them in order.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, e *Entries) (*Entries, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		e = next
	}

	return e, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// toggle carries the disabled state shared by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }
