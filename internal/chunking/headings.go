package chunking

import "strings"

// HeadingSet is the ordered set of outline headings still awaiting a match
// during segmentation. Each heading binds at most once: MatchAndRemove
// consumes the heading it matches, so duplicate heading text binds only its
// first body occurrence and a linear scan never revisits a section.
type HeadingSet struct {
	remaining []string
}

// ParseHeadings extracts heading strings from outline text: one per line,
// stripped of bullet and indentation decorations, empties discarded. An
// empty outline yields an empty set.
func ParseHeadings(outline string) *HeadingSet {
	hs := &HeadingSet{}
	if strings.TrimSpace(outline) == "" {
		return hs
	}
	for _, line := range strings.Split(outline, "\n") {
		h := strings.Trim(line, "- \t\r")
		if h != "" {
			hs.remaining = append(hs.remaining, h)
		}
	}
	return hs
}

// MatchAndRemove reports whether s exactly matches a still-unconsumed
// heading, removing it from the set on a match.
func (hs *HeadingSet) MatchAndRemove(s string) bool {
	for i, h := range hs.remaining {
		if h == s {
			hs.remaining = append(hs.remaining[:i], hs.remaining[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports how many headings are still unmatched.
func (hs *HeadingSet) Len() int { return len(hs.remaining) }
