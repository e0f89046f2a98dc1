package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/spigell/rie/internal/records"
)

// pickJob returns the job with the given title, the only job, or asks.
func pickJob(jobs *records.Jobs, title string) (*records.Job, error) {
	if title != "" {
		job := jobs.FindByTitle(title)
		if job == nil {
			return nil, fmt.Errorf("job with title %q not found among %v", title, jobs.Titles())
		}
		return job, nil
	}
	if jobs.Len() == 1 {
		return jobs.Items[0], nil
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: jobs.Titles(),
	}
	idx, _, err := jobPrompt.Run()
	if err != nil {
		return nil, err
	}
	return jobs.Items[idx], nil
}

// pickCandidate returns the candidate with the given id, the only one, or asks.
func pickCandidate(candidates *records.Candidates, id string) (*records.Candidate, error) {
	if id != "" {
		candidate := candidates.FindByID(id)
		if candidate == nil {
			return nil, fmt.Errorf("candidate with id %q not found", id)
		}
		return candidate, nil
	}
	if candidates.Len() == 1 {
		return candidates.Items[0], nil
	}

	candidatePrompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: candidates.Names(),
	}
	idx, _, err := candidatePrompt.Run()
	if err != nil {
		return nil, err
	}
	return candidates.Items[idx], nil
}
