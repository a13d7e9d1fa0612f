package chunking

import (
	"log/slog"
	"strings"
)

// Engine runs the full chunking pass over one document's plain-text
// rendering: outline classification, outline/body split, normalization,
// heading-based segmentation, and token-budget splitting. Engines hold no
// per-document state and are safe for concurrent use.
type Engine struct {
	classifier Classifier
	maxTokens  int
	log        *slog.Logger
}

func NewEngine(maxTokens int, log *slog.Logger) *Engine {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		classifier: MarkerClassifier{},
		maxTokens:  maxTokens,
		log:        log,
	}
}

// WithClassifier swaps the outline detection predicate.
func (e *Engine) WithClassifier(c Classifier) *Engine {
	e.classifier = c
	return e
}

// Chunks converts a document's plain-text rendering into serialized,
// budget-sized chunk strings in document order. Empty or blank input yields
// no chunks.
func (e *Engine) Chunks(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tag := e.classifier.Classify(text)
	outline, body := SplitOutline(tag, text)
	body = Normalize(body)

	segments := Segment(outline, body)
	e.log.Debug("segmented document",
		"tag", string(tag),
		"segments", len(segments),
	)

	var out []string
	for _, c := range segments {
		out = append(out, SplitBudget(c.String(), e.maxTokens)...)
	}
	return out
}
