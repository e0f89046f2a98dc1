// Package records holds the candidate and job inputs of a scoring run and
// loads them from YAML or JSON files.
package records

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Validate checks the record fields the scoring core relies on.
func (c *Candidate) Validate() error {
	return validate.Struct(c)
}

// Validate checks the record fields the scoring core relies on.
func (j *Job) Validate() error {
	return validate.Struct(j)
}

// LoadCandidates reads a file holding one candidate, a list of candidates,
// or a mapping with a `candidates` list.
func LoadCandidates(path string) (*Candidates, error) {
	items, err := load[Candidate](path, "candidates")
	if err != nil {
		return nil, err
	}
	for idx, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("candidate #%d in %q: %w", idx, path, err)
		}
	}
	return &Candidates{Items: items}, nil
}

// LoadJobs reads a file holding one job, a list of jobs, or a mapping with a
// `jobs` list.
func LoadJobs(path string) (*Jobs, error) {
	items, err := load[Job](path, "jobs")
	if err != nil {
		return nil, err
	}
	for idx, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("job #%d in %q: %w", idx, path, err)
		}
	}
	return &Jobs{Items: items}, nil
}

func load[T any](path, listKey string) ([]*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}

	items, err := decode[T](doc, listKey)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no %s found in %q", listKey, path)
	}
	return items, nil
}

func decode[T any](doc any, listKey string) ([]*T, error) {
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		return decodeList[T](v)
	case map[string]any:
		if list, ok := v[listKey]; ok {
			items, ok := list.([]any)
			if !ok {
				return nil, fmt.Errorf("%s must be a list", listKey)
			}
			return decodeList[T](items)
		}
		return decodeList[T]([]any{v})
	default:
		return nil, fmt.Errorf("unexpected document of type %T", doc)
	}
}

func decodeList[T any](raw []any) ([]*T, error) {
	var items []*T

	cfg := &mapstructure.DecoderConfig{
		Result:           &items,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	return items, nil
}
