package convert

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown converts Markdown using the goldmark AST: headings feed the
// outline block and reappear as standalone body paragraphs; list items keep
// their bullet markers on separate lines.
type Markdown struct{}

func (Markdown) Convert(r io.Reader, filename string) (string, int, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var outline, body []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(string(node.Text(src)))
			if title != "" {
				outline = append(outline, "- "+title)
				body = append(body, title)
			}
		case *ast.List:
			if items := listItems(node, src); len(items) > 0 {
				body = append(body, strings.Join(items, "\n"))
			}
		default:
			if t := blockText(n, src); t != "" {
				body = append(body, t)
			}
		}
	}

	pages := estimatePages(bytes.Count(src, []byte("\n")) + 1)
	return assemble(outline, body), pages, nil
}

func listItems(list *ast.List, src []byte) []string {
	var items []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		if t := blockText(item, src); t != "" {
			items = append(items, "- "+t)
		}
	}
	return items
}

// blockText collects the raw text of a block node and its children.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
			buf.WriteByte(' ')
		}
		return strings.Join(strings.Fields(buf.String()), " ")
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(t)
		}
	}
	return strings.TrimSpace(buf.String())
}
