// Package postprocess rewrites tag markup in rendered HTML: tag anchors in the
// reading view are swapped for widget pills and property-panel tags get their
// basename as visible text.
package postprocess

import (
	"golang.org/x/net/html"

	"github.com/starford/basetag/internal/dom"
	"github.com/starford/basetag/internal/widget"
)

// Built-in selectors for host-rendered tag markup.
const (
	LinkTagSelector      = "a.tag"
	PropertyTagSelector  = `.metadata-property[data-property-key="tags"] .multi-select-pill-content`
	PropertyTagContainer = ".metadata-container"
)

var linkTags = dom.Without(dom.CompileValid(LinkTagSelector), widget.Class)

// RewriteTags replaces every unconverted tag anchor below fragment with a
// widget pill built from the anchor's text. Running it again on the same
// fragment changes nothing.
func RewriteTags(doc *dom.Document, fragment *html.Node) {
	for _, a := range dom.QueryAll(fragment, linkTags) {
		doc.InsertBefore(a.Parent, widget.New(dom.Text(a)).Node(), a)
		doc.Remove(a)
	}
}
