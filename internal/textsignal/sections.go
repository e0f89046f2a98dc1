package textsignal

import (
	"regexp"
	"strings"
	"unicode"
)

const maxHeadingLength = 40

var (
	lineBreak      = regexp.MustCompile(`\r?\n`)
	listSeparators = regexp.MustCompile(`[;,|]`)
	bulletPrefix   = regexp.MustCompile(`^[-•*]\s*`)
)

// Headings that close a block even without a trailing colon.
var knownHeadings = map[string]struct{}{
	"summary": {}, "profile": {}, "objective": {}, "about": {}, "about me": {},
	"skills": {}, "technical skills": {}, "core skills": {}, "key skills": {},
	"experience": {}, "work experience": {}, "professional experience": {}, "employment": {},
	"education": {}, "certifications": {}, "certificates": {}, "projects": {},
	"languages": {}, "interests": {}, "references": {}, "contact": {},
	"achievements": {}, "awards": {}, "publications": {}, "volunteering": {},
}

func lines(text string) []string {
	if text == "" {
		return nil
	}
	return lineBreak.Split(text, -1)
}

func headingPattern(names []string) *regexp.Regexp {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(quoted, "|") + `)\s*[:\-]?\s*$`)
}

// looksLikeHeading reports whether a line is a short, capitalized section title,
// either terminated by ':' or '-' or a well-known title.
func looksLikeHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > maxHeadingLength {
		return false
	}

	terminated := strings.HasSuffix(trimmed, ":") || strings.HasSuffix(trimmed, "-")
	title := strings.TrimSpace(strings.TrimRight(trimmed, ":-"))
	if title == "" {
		return false
	}

	first := []rune(title)[0]
	if !unicode.IsUpper(first) {
		return false
	}
	for _, r := range title {
		if !unicode.IsLetter(r) && r != ' ' && r != '&' {
			return false
		}
	}

	if terminated {
		return true
	}
	_, known := knownHeadings[strings.ToLower(title)]
	return known
}

// SectionBlock returns the trimmed text between a line naming one of the headings
// and the next heading-like line. It returns "" when no heading is found.
func SectionBlock(text string, headings []string) string {
	start := headingPattern(headings)
	if start == nil {
		return ""
	}

	var block []string
	inSection := false
	for _, line := range lines(text) {
		if !inSection {
			if start.MatchString(line) {
				inSection = true
			}
			continue
		}
		if looksLikeHeading(line) {
			break
		}
		block = append(block, line)
	}

	return strings.TrimSpace(strings.Join(block, "\n"))
}

// InlineList finds the first "Key: a, b; c | d" line for one of the keys and
// returns its trimmed, non-empty items.
func InlineList(text string, keys []string) []string {
	quoted := make([]string, 0, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			quoted = append(quoted, regexp.QuoteMeta(key))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	pattern := regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(quoted, "|") + `)\s*[:\-]\s*(.+)$`)

	for _, line := range lines(text) {
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		return SplitList(match[1])
	}
	return nil
}

// SplitList splits on ';', ',' and '|' and strips bullets from every item.
func SplitList(value string) []string {
	var out []string
	for _, part := range listSeparators.Split(value, -1) {
		part = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(part), ""))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
