package convert

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts plain text page by page. PDFs carry no reliable structural
// outline here, so the rendering has no leading outline block and the
// document degrades to the single-chunk path downstream.
type PDF struct{}

func (PDF) Convert(r io.Reader, filename string) (string, int, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, err
	}

	var b strings.Builder
	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	// Some extractors emit NUL bytes, which text stores reject.
	return strings.ReplaceAll(b.String(), "\x00", ""), numPages, nil
}
