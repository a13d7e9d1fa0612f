package chunking

import "strings"

// DefaultMaxTokens is the per-chunk token ceiling when none is configured.
const DefaultMaxTokens = 300

// wordsPerToken sizes word batches in the splitter's fallback: roughly 0.75
// words per token for English text.
const wordsPerToken = 0.75

// EstimateTokens gives a rough token count from whitespace-delimited words,
// ~1.33 tokens per word. Exact tokenization is not required for chunk
// sizing; the same estimate is used for the ceiling check and for chunk
// length metadata so the two stay consistent.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
