package chunking

import "strings"

// sep joins a heading and its content in a chunk's serialized form.
const sep = " [SEP] "

// Chunk is a contiguous run of body paragraphs, optionally bound to one
// outline heading.
type Chunk struct {
	Heading string
	Content string
}

// String serializes the chunk for downstream transport:
// "heading [SEP] content", or the bare content for headless chunks.
func (c Chunk) String() string {
	if c.Heading == "" {
		return c.Content
	}
	return c.Heading + sep + c.Content
}

// SplitSerialized reverses Chunk.String, returning an empty heading for
// headless chunks.
func SplitSerialized(s string) (heading, content string) {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):]
	}
	return "", s
}

// Segment walks body paragraphs in order, grouping content runs under the
// outline heading that precedes them. A paragraph exactly matching a
// still-unconsumed heading starts a new chunk; any other paragraph
// accumulates under the current heading, including paragraphs that repeat an
// already-consumed heading. Content preceding the first matched heading, or
// all content when no heading ever matches, is emitted as a headless chunk.
// Paragraphs inside a chunk are joined by single spaces.
func Segment(outline, body string) []Chunk {
	headings := ParseHeadings(outline)
	paragraphs := strings.Split(body, "\n\n")

	var (
		chunks  []Chunk
		heading string
		content []string
	)
	flush := func() {
		if len(content) > 0 {
			chunks = append(chunks, Chunk{Heading: heading, Content: strings.Join(content, " ")})
		}
		content = content[:0]
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if headings.MatchAndRemove(para) {
			flush()
			heading = para
			continue
		}
		content = append(content, para)
	}
	flush()

	return chunks
}
