package docmeta

import (
	"fmt"
	"path/filepath"
	"strings"

	"kb-ingest/internal/chunking"
)

// NoHeading is the section sentinel for chunks with no bound heading.
const NoHeading = "No Heading"

// ChunkMeta annotates a single chunk.
type ChunkMeta struct {
	DocID       string `json:"doc_id"`
	ChunkNumber int    `json:"chunk_number"`
	ChunkLength int    `json:"chunk_length"`
	Section     string `json:"section"`
}

// FileMeta holds document-level statistics, computed once per document and
// replicated onto every chunk at assembly time.
type FileMeta struct {
	Source    string   `json:"source"`
	Filename  string   `json:"filename"`
	FileSize  int64    `json:"file_size"`
	FileType  string   `json:"file_type"`
	PageCount int      `json:"page_count"`
	WordCount int      `json:"word_count"`
	CharCount int      `json:"char_count"`
	Keywords  []string `json:"keywords"`
	Abstract  string   `json:"abstract"`
}

// Record pairs one chunk's text with its chunk- and file-level metadata.
type Record struct {
	Text  string
	Chunk ChunkMeta
	File  FileMeta
}

// Metadata flattens both metadata levels into the key/value map a
// vector-store "add documents" call expects. Keywords are joined into one
// string since list values are not universally supported.
func (r Record) Metadata() map[string]any {
	return map[string]any{
		"doc_id":       r.Chunk.DocID,
		"chunk_number": r.Chunk.ChunkNumber,
		"chunk_length": r.Chunk.ChunkLength,
		"section":      r.Chunk.Section,
		"source":       r.File.Source,
		"filename":     r.File.Filename,
		"file_size":    r.File.FileSize,
		"file_type":    r.File.FileType,
		"page_count":   r.File.PageCount,
		"word_count":   r.File.WordCount,
		"char_count":   r.File.CharCount,
		"keywords":     strings.Join(r.File.Keywords, ", "),
		"abstract":     r.File.Abstract,
	}
}

// NewFileMeta computes document-level statistics from the normalized full
// text of a document.
func NewFileMeta(filename, source, content string, fileSize int64, pageCount int) FileMeta {
	words := 0
	if strings.TrimSpace(content) != "" {
		words = len(strings.Fields(content))
	}
	return FileMeta{
		Source:    source,
		Filename:  filename,
		FileSize:  fileSize,
		FileType:  strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		PageCount: pageCount,
		WordCount: words,
		CharCount: len(content),
		Keywords:  Keywords(content, DefaultMaxKeywords),
		Abstract:  Abstract(content, DefaultAbstractLength),
	}
}

// Assemble pairs each serialized chunk with its metadata. Chunk numbers are
// 1-based and strictly increasing in final output order, which makes every
// doc_id ({filename stem}_{chunk_number}) unique within the document.
func Assemble(filename string, chunks []string, file FileMeta) []Record {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	records := make([]Record, 0, len(chunks))
	for i, text := range chunks {
		heading, _ := chunking.SplitSerialized(text)
		section := heading
		if section == "" {
			section = NoHeading
		}
		n := i + 1
		records = append(records, Record{
			Text: text,
			Chunk: ChunkMeta{
				DocID:       fmt.Sprintf("%s_%d", stem, n),
				ChunkNumber: n,
				ChunkLength: chunking.EstimateTokens(text),
				Section:     section,
			},
			File: file,
		})
	}
	return records
}
