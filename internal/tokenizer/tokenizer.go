// Package tokenizer splits free text into lowercase word tokens and builds
// URL-safe slugs from them.
package tokenizer

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// nonWordRegex matches sequences of characters that are neither letters nor digits.
var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Tokenize lowercases text and splits it on every run of non-letter,
// non-digit characters. Letters outside ASCII are kept.
func Tokenize(text string) []string {
	split := nonWordRegex.Split(strings.ToLower(text), -1)

	tokens := make([]string, 0, len(split)) // Initialize as empty slice, not nil
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// Slugify turns text into a lowercase, hyphen-separated slug:
// "Next.js patterns!" becomes "next-js-patterns".
func Slugify(text string) string {
	return strings.Join(Tokenize(text), "-")
}

// SlugFromLink derives a slug from the last path segment of a link, e.g.
// "https://example.com/blog/debugging-prod/" gives "debugging-prod". It falls
// back to slugifying the whole link when it has no usable path.
func SlugFromLink(link string) string {
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		last := path.Base(strings.TrimSuffix(u.Path, "/"))
		last = strings.TrimSuffix(last, path.Ext(last))
		if slug := Slugify(last); slug != "" {
			return slug
		}
	}
	return Slugify(link)
}
