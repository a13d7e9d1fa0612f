package convert

import (
	"io"
	"strings"
)

// Text passes plain files through unchanged, estimating page count from
// line count.
type Text struct{}

func (Text) Convert(r io.Reader, filename string) (string, int, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	text := string(content)
	return text, estimatePages(strings.Count(text, "\n") + 1), nil
}
