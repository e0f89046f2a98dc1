package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolBacks(t *testing.T) {
	t.Parallel()

	pool := NewPool("python", "Required but missing docker")
	pool.Add("aws")

	assert.True(t, pool.Backs(Claim{Label: "Strong Python background"}))
	assert.True(t, pool.Backs(Claim{Label: "Cloud", Evidence: "uses AWS daily"}))
	assert.False(t, pool.Backs(Claim{Label: "Great leader", Evidence: "inspires people"}))
	// stop-words and short tokens never back a claim
	assert.False(t, pool.Backs(Claim{Label: "the", Evidence: "is a"}))
}

func TestPoolFilterKeepsOrder(t *testing.T) {
	t.Parallel()

	pool := NewPool("kubernetes terraform")
	claims := []Claim{
		{Label: "Terraform modules"},
		{Label: "Public speaking"},
		{Label: "Kubernetes operators"},
	}

	assert.Equal(t, []string{"Terraform modules", "Kubernetes operators"}, Labels(pool.Filter(claims)))
	assert.Empty(t, pool.Filter(nil))
}

func TestCapClaims(t *testing.T) {
	t.Parallel()

	claims := []Claim{
		{Label: " Go ", Evidence: " e1 "},
		{Label: "go", Evidence: "dup"},
		{Label: "  "},
		{Label: "Python"},
		{Label: "AWS"},
		{Label: "Docker"},
		{Label: "Kubernetes"},
	}

	got := CapClaims(claims, MaxClaims)
	assert.Equal(t, []string{"Go", "Python", "AWS", "Docker"}, Labels(got))
	assert.Equal(t, "e1", got[0].Evidence)
}

func TestCapStrings(t *testing.T) {
	t.Parallel()

	items := []string{"a", "A", "", "b", "c", "d", "e", "f", "g"}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, CapStrings(items, MaxRiskFlags))
	assert.Empty(t, CapStrings(nil, MaxRiskFlags))
}
