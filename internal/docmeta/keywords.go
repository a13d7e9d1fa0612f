package docmeta

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// DefaultMaxKeywords bounds the keyword list per document.
	DefaultMaxKeywords = 5
	// DefaultAbstractLength is the abstract window in characters.
	DefaultAbstractLength = 300
)

var keywordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// Common English stopwords excluded from keyword extraction.
var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "is": {}, "in": {}, "to": {}, "of": {}, "for": {},
	"with": {}, "on": {}, "at": {}, "from": {}, "by": {}, "about": {},
	"as": {}, "it": {}, "this": {}, "that": {}, "be": {}, "are": {},
	"was": {}, "were": {}, "an": {}, "or": {}, "but": {}, "if": {},
	"then": {}, "because": {}, "when": {}, "where": {}, "why": {}, "how": {},
}

// Keywords extracts the most frequent alphabetic tokens of length three or
// more, stopword-filtered, ranked by frequency with first occurrence
// breaking ties.
func Keywords(text string, max int) []string {
	if max <= 0 {
		max = DefaultMaxKeywords
	}
	counts := make(map[string]int)
	var order []string
	for _, w := range keywordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := stopwords[w]; skip {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > max {
		order = order[:max]
	}
	return order
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Abstract takes the opening of the document as its abstract: the first max
// characters of whitespace-collapsed text, trimmed back to the last sentence
// boundary when one falls past the midpoint of the window.
func Abstract(text string, max int) string {
	if max <= 0 {
		max = DefaultAbstractLength
	}
	text = whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	if len(text) <= max {
		return text
	}
	abstract := text[:max]
	if i := strings.LastIndex(abstract, "."); i > max/2 {
		abstract = abstract[:i+1]
	}
	return abstract
}
