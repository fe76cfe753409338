// Package normalize cleans translated product titles into search keys.
package normalize

import (
	"regexp"
	"strings"
)

// Compiled patterns, applied in declaration order
var (
	// (...), [...] and {...} spans are promotional or annotation noise
	bracketedPattern = regexp.MustCompile(`\(.*?\)|\[.*?\]|\{.*?\}`)

	digitPattern = regexp.MustCompile(`\d+`)

	currencyPattern = regexp.MustCompile(`¥|yen|%|％`)

	nonLetterPattern = regexp.MustCompile(`[^a-z\s]`)
)

// stopwords is built once and only read afterwards
var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	set := make(map[string]struct{}, len(englishStopwords)+len(promotionalStopwords))
	for _, w := range englishStopwords {
		set[w] = struct{}{}
	}
	for _, w := range promotionalStopwords {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether a token is dropped by Title
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Title normalizes a translated title into a space separated token string.
// The result may be empty when every token is filtered out.
func Title(title string) string {
	if title == "" {
		return ""
	}

	title = strings.ToLower(title)
	title = bracketedPattern.ReplaceAllString(title, " ")
	title = digitPattern.ReplaceAllString(title, " ")
	title = currencyPattern.ReplaceAllString(title, " ")
	title = nonLetterPattern.ReplaceAllString(title, " ")

	seen := make(map[string]struct{})
	var tokens []string
	for _, token := range strings.Fields(title) {
		if IsStopword(token) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	return strings.Join(tokens, " ")
}

// TitleField normalizes an optional title
func TitleField(title *string) string {
	if title == nil {
		return ""
	}
	return Title(*title)
}
