package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Converter renders a document into a plain-text form the chunking engine
// understands: any detected outline is placed as a dash-bulleted block ahead
// of the body, separated by a blank line, and body headings appear as
// standalone paragraphs so the segmenter can bind them.
type Converter interface {
	Convert(r io.Reader, filename string) (text string, pages int, err error)
}

// linesPerPage estimates page counts for formats without physical pages.
const linesPerPage = 40

// ForFile returns the converter for a filename's extension.
func ForFile(filename string) (Converter, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".md", ".markdown":
		return &Markdown{}, nil
	case ".pdf":
		return &PDF{}, nil
	case ".docx":
		return &DOCX{}, nil
	case ".txt":
		return &Text{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupported reports whether a converter exists for the filename.
func IsSupported(filename string) bool {
	_, err := ForFile(filename)
	return err == nil
}

// File converts a document on disk.
func File(path string) (text string, pages int, err error) {
	conv, err := ForFile(path)
	if err != nil {
		return "", 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	return conv.Convert(f, filepath.Base(path))
}

// assemble joins a synthesized outline block and body paragraphs into the
// conventional outline-before-body rendering.
func assemble(outline, body []string) string {
	bodyText := strings.Join(body, "\n\n")
	if len(outline) == 0 {
		return bodyText
	}
	return strings.Join(outline, "\n") + "\n\n" + bodyText
}

func estimatePages(lineCount int) int {
	pages := lineCount / linesPerPage
	if pages < 1 {
		pages = 1
	}
	return pages
}
