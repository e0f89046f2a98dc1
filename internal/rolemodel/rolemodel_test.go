package rolemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/rie/internal/records"
)

func TestSelect(t *testing.T) {
	t.Parallel()

	selector, err := DefaultSelector(nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		job  records.Job
		key  string
		want Weights
	}{
		{
			name: "counseling",
			job:  records.Job{Title: "School Counselor"},
			key:  Counseling,
			want: Weights{Required: 0.5, Preferred: 0.15, Experience: 0.2, SoftSkill: 0.15},
		},
		{
			name: "tech",
			job:  records.Job{Title: "Backend Developer", Department: "Platform"},
			key:  Tech,
			want: Weights{Required: 0.6, Preferred: 0.2, Experience: 0.2, SoftSkill: 0},
		},
		{
			name: "counseling wins over tech",
			job:  records.Job{Title: "Data Analyst", Description: "Mental health program"},
			key:  Counseling,
			want: Weights{Required: 0.5, Preferred: 0.15, Experience: 0.2, SoftSkill: 0.15},
		},
		{
			name: "default",
			job:  records.Job{Title: "Office Manager", Department: "Operations"},
			key:  Default,
			want: Weights{Required: 0.55, Preferred: 0.2, Experience: 0.2, SoftSkill: 0.05},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := selector.Select(tt.job)
			assert.Equal(t, tt.key, got.Key)
			assert.Equal(t, tt.want, got.Weights)
		})
	}
}

func TestWeightsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Weights{Required: 0.25, Preferred: 0.25, Experience: 0.25, SoftSkill: 0.25}.Validate())
	assert.Error(t, Weights{Required: 0.5, Preferred: 0.2, Experience: 0.2, SoftSkill: 0.2}.Validate())
	assert.Error(t, Weights{Required: 1.2, Preferred: -0.2}.Validate())
}

func TestOverrides(t *testing.T) {
	t.Parallel()

	custom := Weights{Required: 0.7, Preferred: 0.1, Experience: 0.2}
	selector, err := DefaultSelector(map[string]Weights{"Tech": custom})
	require.NoError(t, err)
	assert.Equal(t, custom, selector.Select(records.Job{Title: "Software Engineer"}).Weights)

	profile, ok := selector.Profile(Tech)
	require.True(t, ok)
	assert.Equal(t, custom, profile)
	counseling, ok := selector.Profile(Counseling)
	require.True(t, ok)
	assert.InDelta(t, 0.5, counseling.Required, 1e-9)
	_, ok = selector.Profile("sales")
	assert.False(t, ok)

	_, err = DefaultSelector(map[string]Weights{Default: {Required: 1, Preferred: 1}})
	require.Error(t, err)

	_, err = New(map[string]Weights{Default: {Required: 1}})
	require.Error(t, err)
}
