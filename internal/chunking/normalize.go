package chunking

import "strings"

// Normalize cleans a document's extracted plain text: converter artifacts are
// removed, line endings are canonicalized, line-wrapped prose is un-wrapped,
// and whitespace runs collapse. Paragraph breaks (blank lines) and bullet
// boundaries survive. Pure string transform; normalizing already-normalized
// text is a no-op.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "[image]", "")
	text = strings.ReplaceAll(text, "[]", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = unwrapLines(text)
	return collapseSpaces(text)
}

// unwrapLines turns a lone newline into a space unless it marks a paragraph
// break or precedes a bullet item. Runs of two or more newlines collapse to
// the canonical double-newline paragraph separator.
func unwrapLines(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			b.WriteByte(text[i])
			continue
		}
		j := i
		for j < len(text) && text[j] == '\n' {
			j++
		}
		switch {
		case j-i >= 2:
			b.WriteString("\n\n")
		case strings.HasPrefix(text[j:], "- "):
			b.WriteByte('\n')
		default:
			b.WriteByte(' ')
		}
		i = j - 1
	}
	return b.String()
}

func collapseSpaces(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			for i+1 < len(text) && text[i+1] == ' ' {
				i++
			}
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(text[i])
	}
	return b.String()
}
