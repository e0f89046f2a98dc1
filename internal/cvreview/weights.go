package cvreview

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Weights are the shares of each dimension in the overall score.
type Weights struct {
	Structure       float64 `json:"structure" mapstructure:"structure" validate:"gte=0,lte=1"`
	SkillDensity    float64 `json:"skillDensity" mapstructure:"skill-density" validate:"gte=0,lte=1"`
	ExperienceDepth float64 `json:"experienceDepth" mapstructure:"experience-depth" validate:"gte=0,lte=1"`
	Achievements    float64 `json:"achievements" mapstructure:"achievements" validate:"gte=0,lte=1"`
	Clarity         float64 `json:"clarity" mapstructure:"clarity" validate:"gte=0,lte=1"`
}

func DefaultWeights() Weights {
	return Weights{Structure: 0.2, SkillDensity: 0.2, ExperienceDepth: 0.2, Achievements: 0.2, Clarity: 0.2}
}

// IsZero reports whether no weight is set, which callers treat as "use defaults".
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Validate checks every weight is in [0,1] and that they sum to 1.
func (w Weights) Validate() error {
	if err := validate.Struct(w); err != nil {
		return err
	}
	sum := w.Structure + w.SkillDensity + w.ExperienceDepth + w.Achievements + w.Clarity
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("cv weights sum to %.6f, expected 1", sum)
	}
	return nil
}

func (w Weights) of(name string) float64 {
	switch name {
	case DimensionStructure:
		return w.Structure
	case DimensionSkillDensity:
		return w.SkillDensity
	case DimensionExperienceDepth:
		return w.ExperienceDepth
	case DimensionAchievements:
		return w.Achievements
	case DimensionClarity:
		return w.Clarity
	default:
		return 0
	}
}
