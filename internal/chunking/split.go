package chunking

import (
	"regexp"
	"strings"
)

// maxSplitDepth caps re-splitting of oversized pieces. Every successful
// split strictly shrinks its input, so the cap is a guard against
// pathological documents, not a working limit.
const maxSplitDepth = 20

// listMarker matches bullet ("- ") and numbered ("1.") item boundaries at
// line starts inside un-wrapped content.
var listMarker = regexp.MustCompile(`\n(- |[0-9]+\.)`)

var sentenceBoundary = regexp.MustCompile(`[.!?]\s`)

// SplitBudget subdivides a serialized chunk until every piece measures at or
// under maxTokens, preferring list-item boundaries, then sentence
// boundaries, then fixed-size word batches. The heading prefix, when
// present, is reattached to every piece. A piece no strategy can reduce (a
// degenerate unsplittable unit) is returned as-is rather than looping, so
// the result always has at least one element.
func SplitBudget(chunk string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	type item struct {
		text  string
		depth int
	}
	stack := []item{{text: chunk}}

	var out []string
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if EstimateTokens(it.text) <= maxTokens || it.depth >= maxSplitDepth {
			out = append(out, it.text)
			continue
		}
		parts := splitOnce(it.text, maxTokens)
		if len(parts) < 2 {
			// No strategy made progress; emit best-effort.
			out = append(out, it.text)
			continue
		}
		// Depth-first in reverse keeps the output in document order.
		for i := len(parts) - 1; i >= 0; i-- {
			stack = append(stack, item{text: parts[i], depth: it.depth + 1})
		}
	}
	return out
}

// splitOnce applies the first strategy that divides the chunk into two or
// more pieces, or returns nil when none does.
func splitOnce(chunk string, maxTokens int) []string {
	heading, content := SplitSerialized(chunk)
	prefix := ""
	if heading != "" {
		prefix = heading + sep
	}

	if segs := listSegments(content); len(segs) >= 2 {
		if parts := packSegments(segs, "", prefix, maxTokens); len(parts) >= 2 {
			return parts
		}
	}
	if segs := sentenceSegments(content); len(segs) >= 2 {
		if parts := packSegments(segs, " ", prefix, maxTokens); len(parts) >= 2 {
			return parts
		}
	}
	return wordBatches(content, prefix, maxTokens)
}

// listSegments cuts content at list-item markers, keeping each marker with
// the segment it introduces. Text before the first marker forms the leading
// segment. Returns nil when content has no markers.
func listSegments(content string) []string {
	locs := listMarker.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}
	var segs []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			segs = append(segs, content[prev:loc[0]])
		}
		prev = loc[0]
	}
	segs = append(segs, content[prev:])
	return segs
}

// sentenceSegments splits content after sentence-ending punctuation followed
// by whitespace. Returns nil when no such boundary exists.
func sentenceSegments(content string) []string {
	if !sentenceBoundary.MatchString(content) {
		return nil
	}
	var segs []string
	start := 0
	for i := 0; i+1 < len(content); i++ {
		c := content[i]
		if (c == '.' || c == '!' || c == '?') && isSpace(content[i+1]) {
			if s := strings.TrimSpace(content[start : i+1]); s != "" {
				segs = append(segs, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(content[start:]); s != "" {
		segs = append(segs, s)
	}
	return segs
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t'
}

// packSegments greedily accumulates segments into pieces, flushing (and
// re-prefixing the heading) whenever adding the next segment would push the
// piece over the ceiling.
func packSegments(segs []string, joiner, prefix string, maxTokens int) []string {
	var out []string
	cur := ""
	for _, seg := range segs {
		next := cur
		if cur != "" {
			next += joiner
		}
		next += seg
		if cur != "" && EstimateTokens(prefix+next) > maxTokens {
			out = append(out, prefix+strings.TrimSpace(cur))
			next = seg
		}
		cur = next
	}
	if strings.TrimSpace(cur) != "" {
		out = append(out, prefix+strings.TrimSpace(cur))
	}
	return out
}

// wordBatches is the structural-marker-free fallback: fixed-size word groups
// sized to approximate the token ceiling, leaving room for the reattached
// heading prefix. Returns nil when the content fits a single batch (nothing
// to split).
func wordBatches(content, prefix string, maxTokens int) []string {
	words := strings.Fields(content)
	batch := int(float64(maxTokens)*wordsPerToken) - len(strings.Fields(prefix))
	if batch < 1 {
		batch = 1
	}
	if len(words) <= batch {
		return nil
	}
	var out []string
	for start := 0; start < len(words); start += batch {
		end := start + batch
		if end > len(words) {
			end = len(words)
		}
		out = append(out, prefix+strings.Join(words[start:end], " "))
	}
	return out
}
