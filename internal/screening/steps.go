package screening

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/rie/internal/fusion"
	"github.com/spigell/rie/internal/skillmatch"
)

const (
	defaultParallel = 4
	rescreenMsg     = "rescreen flag is set"
)

type alreadyScreenedFilter struct {
	toggle
	rescreen bool
}

// NewAlreadyScreened creates a filter that removes pairs found in the audit log.
func NewAlreadyScreened(rescreen bool) Filter {
	return &alreadyScreenedFilter{rescreen: rescreen}
}

func (f *alreadyScreenedFilter) Name() string { return "already_screened" }

func (f *alreadyScreenedFilter) Validate(*Config) error { return nil }

func (f *alreadyScreenedFilter) Apply(_ context.Context, deps Deps, e *Entries) (*Entries, Step, error) {
	initial := e.Len()
	if f.rescreen {
		if deps.Logger != nil {
			deps.Logger.Info("ignoring already screened pairs", zap.String("reason", rescreenMsg))
		}
		return e, Step{Initial: initial, Left: initial}, nil
	}
	if !deps.Audit.Enabled() {
		return e, Step{Initial: initial, Left: initial}, nil
	}

	screened, err := deps.Audit.Screened(fusion.KindSkillMatch)
	if err != nil {
		return e, Step{}, fmt.Errorf("read audit log: %w", err)
	}

	excluded := e.Exclude(func(entry *Entry) bool {
		_, ok := screened[entry.Key()]
		return ok
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding pairs based on the audit log",
			zap.String("path", deps.Audit.Path()),
			zap.Strings("excluded_pairs", excluded),
			zap.Int("pairs_left", e.Len()),
		)
	}

	return e, Step{Initial: initial, Dropped: len(excluded), Left: e.Len()}, nil
}

func (f *alreadyScreenedFilter) Status() Status {
	reason := f.reason
	if f.rescreen {
		reason = "skip requested via flag"
	}
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  reason,
		Details: map[string]string{"exclude_screened": strconv.FormatBool(!f.rescreen)},
	}
}

type scoreStep struct {
	toggle
}

// NewScore creates the step that runs the scorer on every pair.
func NewScore() Filter {
	return &scoreStep{}
}

func (f *scoreStep) Name() string { return "score" }

func (f *scoreStep) Validate(*Config) error { return nil }

// Apply scores pairs concurrently. Each goroutine owns one slot.
func (f *scoreStep) Apply(ctx context.Context, deps Deps, e *Entries) (*Entries, Step, error) {
	initial := e.Len()
	if deps.Scorer == nil {
		return e, Step{}, errors.New("scorer is required")
	}

	limit := deps.Parallel
	if limit <= 0 {
		limit = defaultParallel
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, entry := range e.Items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := deps.Scorer.Screen(gctx, *entry.Candidate, *entry.Job, nil)
			entry.Result = &result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return e, Step{}, fmt.Errorf("scoring interrupted: %w", err)
	}

	return e, Step{Initial: initial, Left: e.Len()}, nil
}

type minFitFilter struct {
	toggle
	minimum int
}

// NewMinFit creates a filter that removes results scoring below the configured minimum.
func NewMinFit() Filter {
	return &minFitFilter{}
}

func (f *minFitFilter) Name() string { return "min_fit" }

func (f *minFitFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg != nil {
		f.minimum = cfg.MinimumFitScore
	}
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum fit score %d is outside [0, 100]", f.minimum)
	}
	return nil
}

func (f *minFitFilter) Apply(_ context.Context, deps Deps, e *Entries) (*Entries, Step, error) {
	initial := e.Len()
	if f.minimum == 0 {
		return e, Step{Initial: initial, Left: initial}, nil
	}

	excluded := e.Exclude(func(entry *Entry) bool {
		return entry.Result != nil && entry.Result.Score < f.minimum
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding pairs below minimum fit score",
			zap.Int("minimum_fit_score", f.minimum),
			zap.Strings("excluded_pairs", excluded),
			zap.Int("pairs_left", e.Len()),
		)
	}

	return e, Step{Initial: initial, Dropped: len(excluded), Left: e.Len()}, nil
}

func (f *minFitFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_fit_score": strconv.Itoa(f.minimum)},
	}
}

type requiredCoverageFilter struct {
	toggle
	minimum float64
}

// NewRequiredCoverage creates a filter on the share of required skills matched.
func NewRequiredCoverage() Filter {
	return &requiredCoverageFilter{}
}

func (f *requiredCoverageFilter) Name() string { return "required_coverage" }

func (f *requiredCoverageFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg != nil {
		f.minimum = cfg.MinimumRequiredCoverage
	}
	if f.minimum < 0 || f.minimum > 1 {
		return fmt.Errorf("minimum required coverage %.2f is outside [0, 1]", f.minimum)
	}
	return nil
}

func (f *requiredCoverageFilter) Apply(_ context.Context, deps Deps, e *Entries) (*Entries, Step, error) {
	initial := e.Len()
	if f.minimum == 0 {
		return e, Step{Initial: initial, Left: initial}, nil
	}

	excluded := e.Exclude(func(entry *Entry) bool {
		if entry.Result == nil {
			return false
		}
		coverage, ok := entry.Result.Coverage.(skillmatch.Coverage)
		return ok && coverage.Required < f.minimum
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding pairs below minimum required coverage",
			zap.Float64("minimum_required_coverage", f.minimum),
			zap.Strings("excluded_pairs", excluded),
			zap.Int("pairs_left", e.Len()),
		)
	}

	return e, Step{Initial: initial, Dropped: len(excluded), Left: e.Len()}, nil
}

func (f *requiredCoverageFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_required_coverage": fmt.Sprintf("%.2f", f.minimum)},
	}
}

type riskFlagsFilter struct {
	toggle
	flags []string
}

// NewRiskFlags creates a filter that removes results carrying an excluded risk flag.
func NewRiskFlags() Filter {
	return &riskFlagsFilter{}
}

func (f *riskFlagsFilter) Name() string { return "risk_flags" }

func (f *riskFlagsFilter) Validate(cfg *Config) error {
	f.flags = nil
	if cfg == nil {
		return nil
	}
	for _, flag := range cfg.ExcludeRiskFlags {
		if flag = strings.TrimSpace(flag); flag != "" {
			f.flags = append(f.flags, flag)
		}
	}
	return nil
}

func (f *riskFlagsFilter) Apply(_ context.Context, deps Deps, e *Entries) (*Entries, Step, error) {
	initial := e.Len()
	if len(f.flags) == 0 {
		return e, Step{Initial: initial, Left: initial}, nil
	}

	excluded := e.Exclude(func(entry *Entry) bool {
		return entry.Result != nil && f.matches(entry.Result.RiskFlags)
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding pairs by risk flags",
			zap.Strings("excluded_flags", f.flags),
			zap.Strings("excluded_pairs", excluded),
			zap.Int("pairs_left", e.Len()),
		)
	}

	return e, Step{Initial: initial, Dropped: len(excluded), Left: e.Len()}, nil
}

func (f *riskFlagsFilter) matches(flags []string) bool {
	for _, flag := range flags {
		for _, excluded := range f.flags {
			if strings.EqualFold(strings.TrimSpace(flag), excluded) {
				return true
			}
		}
	}
	return false
}

func (f *riskFlagsFilter) Status() Status {
	details := map[string]string{}
	if len(f.flags) > 0 {
		details["flags"] = strings.Join(f.flags, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
