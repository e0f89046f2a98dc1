package textsignal

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	skillHeadings      = []string{"skills", "technical skills", "core skills", "key skills"}
	experienceHeadings = []string{"experience", "work experience", "professional experience"}
	educationHeadings  = []string{"education"}
	certHeadings       = []string{"certifications", "certificates"}

	namePattern  = regexp.MustCompile(`(?i)^\s*name\s*[:\-]\s*(.+)$`)
	rolePattern  = regexp.MustCompile(`(?i)^(?:role|title|position)\s*[:\-]\s*(.+)$`)
	yearsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(?:years|yrs)\b`)
)

// Profile holds what could be read explicitly from resume text. Nothing is inferred:
// a field is empty when the text does not state it.
type Profile struct {
	Name            string
	ExperienceYears float64
	Skills          []string
	Roles           []string
	Education       string
	Certifications  []string
}

// ParseResume extracts explicitly stated fields from resume text.
func ParseResume(text string) Profile {
	text = strings.TrimSpace(text)
	if text == "" {
		return Profile{}
	}

	return Profile{
		Name:            extractName(text),
		ExperienceYears: extractYears(text),
		Skills:          extractSkills(text),
		Roles:           extractRoles(text),
		Education:       extractEducation(text),
		Certifications:  extractCertifications(text),
	}
}

func extractName(text string) string {
	for _, line := range lines(text) {
		if match := namePattern.FindStringSubmatch(line); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

func extractYears(text string) float64 {
	match := yearsPattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	years, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return years
}

func extractSkills(text string) []string {
	items := InlineList(text, skillHeadings)
	if len(items) == 0 {
		block := SectionBlock(text, skillHeadings)
		if block == "" {
			return nil
		}
		items = SplitList(strings.Join(lines(block), ","))
	}
	return uniqueLower(items)
}

func extractRoles(text string) []string {
	block := SectionBlock(text, experienceHeadings)
	if block == "" {
		return nil
	}

	var roles []string
	for _, line := range lines(block) {
		if match := rolePattern.FindStringSubmatch(strings.TrimSpace(line)); match != nil {
			roles = append(roles, strings.TrimSpace(match[1]))
		}
	}
	return roles
}

func extractEducation(text string) string {
	if items := InlineList(text, educationHeadings); len(items) > 0 {
		return strings.Join(items, " | ")
	}
	return SectionBlock(text, educationHeadings)
}

func extractCertifications(text string) []string {
	if items := InlineList(text, certHeadings); len(items) > 0 {
		return items
	}
	block := SectionBlock(text, certHeadings)
	if block == "" {
		return nil
	}

	var certs []string
	for _, line := range lines(block) {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			certs = append(certs, line)
		}
	}
	return certs
}

func uniqueLower(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
