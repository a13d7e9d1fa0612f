package chunking

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func testEngine(maxTokens int) *Engine {
	return NewEngine(maxTokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEngineOutlineDocument(t *testing.T) {
	text := "- Intro\n- Details\n\nIntro\n\nSome text.\n\nDetails\n\nMore text."
	got := testEngine(300).Chunks(text)

	want := []string{
		"Intro [SEP] Some text.",
		"Details [SEP] More text.",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEngineHeadlessDocument(t *testing.T) {
	got := testEngine(300).Chunks("Paragraph one.\n\nParagraph two.")
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != "Paragraph one. Paragraph two." {
		t.Errorf("chunk = %q", got[0])
	}
}

func TestEngineEmptyDocument(t *testing.T) {
	e := testEngine(300)
	for _, text := range []string{"", "   \n\n  "} {
		if got := e.Chunks(text); len(got) != 0 {
			t.Errorf("Chunks(%q) = %v, want none", text, got)
		}
	}
}

func TestEngineWrappedProse(t *testing.T) {
	// Line-wrapped prose inside a section is un-wrapped before segmentation,
	// so the wrapped lines stay one paragraph.
	text := "- Section\n\nSection\n\nFirst line\nwrapped onto another\nand another."
	got := testEngine(300).Chunks(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(got), got)
	}
	if got[0] != "Section [SEP] First line wrapped onto another and another." {
		t.Errorf("chunk = %q", got[0])
	}
}

func TestEngineSplitsOversizedSections(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 150; i++ {
		body.WriteString("This is a filler sentence for the oversized section. ")
	}
	text := "- Big\n\nBig\n\n" + body.String()

	e := testEngine(100)
	got := e.Chunks(text)
	if len(got) < 2 {
		t.Fatalf("expected oversized section to split, got %d chunks", len(got))
	}
	for i, c := range got {
		if !strings.HasPrefix(c, "Big [SEP] ") {
			t.Errorf("chunk %d lost heading prefix", i)
		}
		if n := EstimateTokens(c); n > 100 {
			t.Errorf("chunk %d measures %d tokens, over ceiling", i, n)
		}
	}
}

type fixedClassifier struct{ tag Tag }

func (f fixedClassifier) Classify(string) Tag { return f.tag }

func TestEngineClassifierSwap(t *testing.T) {
	// Force NO_OUTLINE so the would-be outline is treated as body.
	text := "- Intro\n\nIntro body."
	e := testEngine(300).WithClassifier(fixedClassifier{tag: NoOutline})
	got := e.Chunks(text)
	if len(got) != 1 {
		t.Fatalf("expected single chunk, got %d", len(got))
	}
	if !strings.Contains(got[0], "- Intro") {
		t.Errorf("outline text should remain in body, got %q", got[0])
	}
}
