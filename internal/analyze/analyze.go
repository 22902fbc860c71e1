package analyze

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a document's heading outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Outline walks the markdown AST and returns the document's headings in
// order. This is reporting-only: page boundary detection never consults the
// markdown AST.
func Outline(content string) []Heading {
	src := []byte(content)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var out []Heading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		out = append(out, Heading{
			Level: h.Level,
			Text:  strings.TrimSpace(headingText(h, src)),
		})
	}
	return out
}

// headingText collects the plain text of a heading's inline children.
func headingText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Value(src))
			continue
		}
		b.WriteString(headingText(c, src))
	}
	return b.String()
}
