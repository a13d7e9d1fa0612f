package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProcessor(workers int) *Processor {
	return New(Options{
		MaxChunkTokens:   300,
		AllowedFiletypes: []string{".md", ".txt"},
		Workers:          workers,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProcessReaderMarkdown(t *testing.T) {
	doc := "# Intro\n\nSome introductory text.\n\n# Details\n\nMore detailed text."

	res := testProcessor(1).ProcessReader(strings.NewReader(doc), "guide.md", int64(len(doc)), "unit")
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 2)

	assert.Equal(t, "guide_1", res.Records[0].Chunk.DocID)
	assert.Equal(t, "Intro", res.Records[0].Chunk.Section)
	assert.Equal(t, "guide_2", res.Records[1].Chunk.DocID)
	assert.Equal(t, "Details", res.Records[1].Chunk.Section)

	assert.Equal(t, "guide.md", res.File.Filename)
	assert.Equal(t, "unit", res.File.Source)
	assert.Equal(t, int64(len(doc)), res.File.FileSize)
	assert.NotEmpty(t, res.File.Abstract)
}

func TestProcessReaderEmptyDocument(t *testing.T) {
	res := testProcessor(1).ProcessReader(strings.NewReader("   \n\n  "), "blank.txt", 7, "unit")
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Records)
}

func TestProcessReaderUnsupportedType(t *testing.T) {
	res := testProcessor(1).ProcessReader(strings.NewReader("x"), "image.png", 1, "unit")
	assert.Error(t, res.Err)
	assert.Empty(t, res.Records)
}

func TestProcessFileMissing(t *testing.T) {
	res := testProcessor(1).ProcessFile(filepath.Join(t.TempDir(), "absent.md"), "unit")
	assert.Error(t, res.Err)
	assert.Empty(t, res.Records)
}

func TestProcessDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))

	files := map[string]string{
		"a.md":          "# One\n\nAlpha content here.",
		"nested/b.txt":  "Plain text body for the second file.",
		"ignored.bin":   "binary-ish payload",
		"nested/c.jpeg": "not a document",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	summary, err := testProcessor(4).ProcessDir(context.Background(), dir, "batch")
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.TotalChunks)

	// WalkDir yields lexical order, and result slots mirror it.
	assert.Equal(t, "a.md", summary.Results[0].Filename)
	assert.Equal(t, "b.txt", summary.Results[1].Filename)
	for _, res := range summary.Results {
		assert.Equal(t, "batch", res.File.Source)
	}
}

func TestProcessDirContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.md"), []byte("# Ok\n\nFine."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), nil, 0o644))

	summary, err := testProcessor(2).ProcessDir(context.Background(), dir, "batch")
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	// Empty extraction is a warning, not a failure.
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 1, summary.TotalChunks)
}
