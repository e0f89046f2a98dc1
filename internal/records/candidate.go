package records

import (
	"strings"

	"github.com/spigell/rie/internal/textsignal"
)

type Candidates struct {
	Items []*Candidate
}

// Employment is one entry of a candidate's ordered work history, oldest first.
type Employment struct {
	Title        string  `json:"title" yaml:"title"`
	TenureMonths float64 `json:"tenureMonths,omitempty" yaml:"tenureMonths,omitempty" validate:"gte=0"`
}

type Candidate struct {
	ID                string       `json:"id,omitempty" yaml:"id,omitempty"`
	Name              string       `json:"name" yaml:"name" validate:"required"`
	Email             string       `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Role              string       `json:"role,omitempty" yaml:"role,omitempty"`
	ExperienceYears   float64      `json:"experienceYears" yaml:"experienceYears" validate:"gte=0"`
	Skills            []string     `json:"skills,omitempty" yaml:"skills,omitempty"`
	ExperienceHistory []Employment `json:"experienceHistory,omitempty" yaml:"experienceHistory,omitempty" validate:"dive"`
	ResumeText        string       `json:"resumeText,omitempty" yaml:"resumeText,omitempty"`
	Summary           string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Education         string       `json:"education,omitempty" yaml:"education,omitempty"`
	Certifications    []string     `json:"certifications,omitempty" yaml:"certifications,omitempty"`
}

// Enrich fills fields the record leaves empty from what the resume states
// explicitly. Values present on the record always win. Parsed roles only set
// Role: they carry no tenure, so they never become employment history.
func (c Candidate) Enrich(profile textsignal.Profile) Candidate {
	if strings.TrimSpace(c.Name) == "" {
		c.Name = profile.Name
	}
	if c.ExperienceYears <= 0 {
		c.ExperienceYears = profile.ExperienceYears
	}
	if len(c.Skills) == 0 {
		c.Skills = append([]string(nil), profile.Skills...)
	}
	if strings.TrimSpace(c.Role) == "" && len(profile.Roles) > 0 {
		c.Role = profile.Roles[len(profile.Roles)-1]
	}
	if strings.TrimSpace(c.Education) == "" {
		c.Education = profile.Education
	}
	if len(c.Certifications) == 0 {
		c.Certifications = append([]string(nil), profile.Certifications...)
	}
	return c
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) Names() []string {
	names := make([]string, 0, len(c.Items))
	for _, v := range c.Items {
		names = append(names, v.Name)
	}
	return names
}

func (c *Candidates) FindByID(id string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}
