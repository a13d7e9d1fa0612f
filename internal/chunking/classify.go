package chunking

import "regexp"

// Tag classifies the outline shape of a document's plain-text rendering.
type Tag string

const (
	HasOutline Tag = "HAS_OUTLINE"
	NoOutline  Tag = "NO_OUTLINE"
)

// Classifier decides whether a document begins with a detectable outline.
// It is a small, swappable predicate so a structural parser can replace the
// default heuristic without touching the segmenter.
type Classifier interface {
	Classify(text string) Tag
}

// classifyWindow bounds how far into the document the fingerprint scan looks.
const classifyWindow = 2000

// A dash-bulleted line, then a blank line, then an uppercase body start: the
// fingerprint of an auto-generated outline placed ahead of a heading-styled
// body.
var outlineFingerprint = regexp.MustCompile(`- .*\r?\n\r?\n[A-Z]`)

// MarkerClassifier is the default fingerprint-based classifier. False
// negatives degrade to single-chunk processing; false positives are an
// accepted limitation of the heuristic.
type MarkerClassifier struct{}

func (MarkerClassifier) Classify(text string) Tag {
	window := text
	if len(window) > classifyWindow {
		window = window[:classifyWindow]
	}
	if outlineFingerprint.MatchString(window) {
		return HasOutline
	}
	return NoOutline
}

var paragraphBreak = regexp.MustCompile(`\r?\n\r?\n`)

// SplitOutline separates the leading outline from the body text according to
// the classification. When the text has no blank-line boundary the outline
// is empty and the whole text is body.
func SplitOutline(tag Tag, text string) (outline, body string) {
	if tag != HasOutline {
		return "", text
	}
	loc := paragraphBreak.FindStringIndex(text)
	if loc == nil {
		return "", text
	}
	return text[:loc[0]], text[loc[1]:]
}
