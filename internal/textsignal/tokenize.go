// Package textsignal extracts deterministic signals from unstructured resume text.
//
// Every function here is pure and returns an empty or zero value when the input
// carries nothing useful; none of them fail.
package textsignal

import (
	"regexp"
	"strings"
)

const minKeywordLength = 3

var stopWords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "a": {}, "an": {}, "to": {}, "of": {}, "for": {},
	"with": {}, "in": {}, "on": {}, "at": {}, "by": {}, "from": {}, "as": {}, "is": {},
	"are": {}, "this": {}, "that": {}, "be": {}, "will": {}, "we": {}, "you": {},
	"our": {}, "your": {}, "candidate": {}, "job": {},
}

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '+', r == '.', r == '#':
		return true
	default:
		return false
	}
}

// Tokenize lower-cases text and splits it on every rune outside [a-z0-9+.#].
// Order is preserved and duplicates are kept.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isTokenRune(r)
	})
}

// Keywords is Tokenize without stop-words and without tokens shorter than three runes.
func Keywords(text string) []string {
	tokens := Tokenize(text)
	out := tokens[:0]
	for _, token := range tokens {
		if len(token) < minKeywordLength {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		out = append(out, token)
	}
	return out
}

// IsStopWord reports whether the lower-cased token is ignored by Keywords.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// SentenceSplit splits text on runs of '.', '!' and '?', dropping empty sentences.
func SentenceSplit(text string) []string {
	parts := sentenceBreak.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// CountWords returns the number of tokens in text.
func CountWords(text string) int {
	return len(Tokenize(text))
}

// TokenSet collects the tokens of every text into a set.
func TokenSet(tokenizer func(string) []string, texts ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, text := range texts {
		for _, token := range tokenizer(text) {
			set[token] = struct{}{}
		}
	}
	return set
}
