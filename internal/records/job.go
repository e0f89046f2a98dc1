package records

import "strings"

type Jobs struct {
	Items []*Job
}

type Job struct {
	ID              string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title           string   `json:"title" yaml:"title" validate:"required"`
	Department      string   `json:"department,omitempty" yaml:"department,omitempty"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	MinExperience   float64  `json:"minExperience" yaml:"minExperience" validate:"gte=0"`
	RequiredSkills  []string `json:"requiredSkills,omitempty" yaml:"requiredSkills,omitempty"`
	PreferredSkills []string `json:"preferredSkills,omitempty" yaml:"preferredSkills,omitempty"`
}

// Context is the lower-cased title, department and description joined by spaces.
func (j *Job) Context() string {
	return strings.ToLower(strings.Join([]string{j.Title, j.Department, j.Description}, " "))
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) Titles() []string {
	titles := make([]string, 0, len(j.Items))
	for _, v := range j.Items {
		titles = append(titles, v.Title)
	}
	return titles
}

func (j *Jobs) FindByTitle(title string) *Job {
	for _, job := range j.Items {
		if job.Title == title {
			return job
		}
	}
	return nil
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}
