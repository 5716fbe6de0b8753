// Package implement inserts generated structural elements into page content.
package implement

import (
	"strings"

	"github.com/danhoward/aio-engine/pkg/types"
)

// Insertion point descriptors carried on generated elements.
const (
	AfterFirstParagraph = "after_first_paragraph"
	EndOfContent        = "end_of_content"
)

// Apply inserts each element's markup into content at its insertion point and
// returns the new content plus the elements actually applied. Elements with
// empty markup are skipped; an unknown insertion point falls back to the end
// of the content.
func Apply(content string, elems []types.GeneratedElement) (string, []types.GeneratedElement) {
	var applied []types.GeneratedElement
	for _, el := range elems {
		markup := el.Markup
		if markup == "" {
			markup = el.Text
		}
		if strings.TrimSpace(markup) == "" {
			continue
		}
		content = insertAt(content, markup, el.InsertionPoint)
		applied = append(applied, el)
	}
	return content, applied
}

func insertAt(content, markup, point string) string {
	var idx int
	switch point {
	case AfterFirstParagraph:
		idx = FirstParagraphEnd(content)
	default:
		idx = len(content)
	}

	var b strings.Builder
	b.Grow(len(content) + len(markup) + 2)
	b.WriteString(content[:idx])
	if idx > 0 && content[idx-1] != '\n' {
		b.WriteString("\n")
	}
	b.WriteString(markup)
	if idx < len(content) && markup[len(markup)-1] != '\n' {
		b.WriteString("\n")
	}
	b.WriteString(content[idx:])
	return b.String()
}

// FirstParagraphEnd returns the index just past the first closing paragraph
// tag, or past the first blank line for plain text. Empty or single-block
// content yields the content end.
func FirstParagraphEnd(content string) int {
	lower := strings.ToLower(content)
	if i := strings.Index(lower, "</p>"); i >= 0 {
		return i + len("</p>")
	}
	if i := strings.Index(content, "\n\n"); i >= 0 {
		return i
	}
	return len(content)
}
