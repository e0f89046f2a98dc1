package textsignal

import (
	"regexp"
	"strings"
)

// A number followed by a unit. A percent sign needs no trailing word boundary,
// so "by 30%" and "30%." both count.
var quantifiedPattern = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:%|(?:x|k|m|million|billion|days?|weeks?|months?|years?|users?|customers?|clients?|people|employees|projects?|teams?)\b)`)

var impactVerbs = []string{
	"led", "built", "delivered", "improved", "increased", "reduced", "optimized", "launched",
	"scaled", "managed", "designed", "implemented", "automated", "streamlined", "grew",
}

var businessOutcomeTerms = []string{
	"revenue", "cost", "conversion", "retention", "latency", "performance", "uptime",
	"customer", "sla", "efficiency", "throughput", "churn", "roi", "kpi",
}

var buzzwords = []string{
	"synergy", "go-getter", "rockstar", "ninja", "guru", "hardworking", "results-driven",
	"dynamic", "fast learner", "team player", "detail-oriented",
}

// QuantifiedHits counts numbers paired with a unit such as "30%", "2x", "10k" or "5 projects".
func QuantifiedHits(text string) int {
	return len(quantifiedPattern.FindAllStringIndex(text, -1))
}

// CountTerms returns how many vocabulary terms occur in text, matched
// case-insensitively as substrings. Each term counts at most once.
func CountTerms(text string, vocabulary []string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, term := range vocabulary {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			hits++
		}
	}
	return hits
}

// ImpactVerbHits counts impact verbs such as "increased" or "launched".
func ImpactVerbHits(text string) int {
	return CountTerms(text, impactVerbs)
}

// OutcomeTermHits counts business-outcome terms such as "revenue" or "latency".
func OutcomeTermHits(text string) int {
	return CountTerms(text, businessOutcomeTerms)
}

// BuzzwordHits counts filler phrases such as "team player".
func BuzzwordHits(text string) int {
	return CountTerms(text, buzzwords)
}
