package ingest

import (
	"github.com/microcosm-cc/bluemonday"
)

// newSanitizer builds the HTML policy applied to extracted text before it is
// stored: structural and formatting tags only, links and images with
// constrained attributes, everything else stripped.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br",
		"h1", "h2", "h3",
		"blockquote",
		"b", "strong",
		"div", "span",
		"ol", "ul", "li",
	)
	p.AllowAttrs("href", "target").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")

	return p
}
