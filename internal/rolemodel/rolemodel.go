// Package rolemodel picks the scoring weight profile that fits a job.
package rolemodel

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/spigell/rie/internal/records"
)

const (
	Counseling = "counseling"
	Tech       = "tech"
	Default    = "default"

	sumTolerance = 1e-6
)

//go:embed roles.yaml
var defaultProfiles []byte

// Checked in order; the first rule with a matching term wins.
var rules = []struct {
	key   string
	terms []string
}{
	{key: Counseling, terms: []string{"counsel", "therapy", "psycholog", "wellness", "mental"}},
	{key: Tech, terms: []string{"engineer", "developer", "software", "frontend", "backend", "devops", "data"}},
}

var validate = validator.New()

// Weights are the four skill-match weights of a profile.
type Weights struct {
	Required   float64 `json:"required" yaml:"required" mapstructure:"required" validate:"gte=0,lte=1"`
	Preferred  float64 `json:"preferred" yaml:"preferred" mapstructure:"preferred" validate:"gte=0,lte=1"`
	Experience float64 `json:"experience" yaml:"experience" mapstructure:"experience" validate:"gte=0,lte=1"`
	SoftSkill  float64 `json:"softSkill" yaml:"soft-skill" mapstructure:"soft-skill" validate:"gte=0,lte=1"`
}

// Validate checks every weight is in [0,1] and that they sum to 1.
func (w Weights) Validate() error {
	if err := validate.Struct(w); err != nil {
		return err
	}
	sum := w.Required + w.Preferred + w.Experience + w.SoftSkill
	if math.Abs(sum-1) > sumTolerance {
		return fmt.Errorf("weights sum to %.6f, expected 1", sum)
	}
	return nil
}

// Selection is the chosen profile key with its weights.
type Selection struct {
	Key     string  `json:"key"`
	Weights Weights `json:"weights"`
}

// Selector holds validated, read-only profiles.
type Selector struct {
	profiles map[string]Weights
}

// New validates the profiles. counseling, tech and default must all be present.
func New(profiles map[string]Weights) (*Selector, error) {
	s := &Selector{profiles: make(map[string]Weights, len(profiles))}
	for key, weights := range profiles {
		key = strings.ToLower(strings.TrimSpace(key))
		if err := weights.Validate(); err != nil {
			return nil, fmt.Errorf("role model %q: %w", key, err)
		}
		s.profiles[key] = weights
	}

	for _, key := range []string{Counseling, Tech, Default} {
		if _, ok := s.profiles[key]; !ok {
			return nil, fmt.Errorf("role model %q is not defined", key)
		}
	}

	return s, nil
}

// DefaultSelector returns the built-in profiles with the given overrides applied.
// Overrides replace whole profiles.
func DefaultSelector(overrides map[string]Weights) (*Selector, error) {
	var profiles map[string]Weights
	if err := yaml.Unmarshal(defaultProfiles, &profiles); err != nil {
		return nil, fmt.Errorf("parsing built-in role models: %w", err)
	}
	for key, weights := range overrides {
		profiles[strings.ToLower(strings.TrimSpace(key))] = weights
	}
	return New(profiles)
}

// Select returns the profile for the job's title, department and description.
func (s *Selector) Select(job records.Job) Selection {
	key := Key(job.Context())
	return Selection{Key: key, Weights: s.profiles[key]}
}

// Key classifies a lower-cased job context.
func Key(context string) string {
	for _, rule := range rules {
		for _, term := range rule.terms {
			if strings.Contains(context, term) {
				return rule.key
			}
		}
	}
	return Default
}

// Profile returns the weights stored under key.
func (s *Selector) Profile(key string) (Weights, bool) {
	w, ok := s.profiles[key]
	return w, ok
}
