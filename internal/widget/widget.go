// Package widget builds the pill elements that replace raw tag text.
package widget

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/basetag/internal/tagname"
)

// Class marks elements produced or rewritten by basetag. Passes skip elements
// that already carry it.
const Class = "basetag"

// TagClass is the host's class for tag links.
const TagClass = "tag"

// DataAttr holds the original tag text on rewritten property elements.
const DataAttr = "data-tag"

// Widget is a replacement for one raw tag string. Widgets built from the same
// text compare equal with ==.
type Widget struct {
	Tag string
}

// New returns the widget for the raw tag text.
func New(tag string) Widget {
	return Widget{Tag: tag}
}

// Eq reports whether both widgets render identically.
func (w Widget) Eq(other Widget) bool { return w.Tag == other.Tag }

// IsZero reports whether the widget renders as an inert placeholder.
func (w Widget) IsZero() bool { return w.Tag == "" }

// Label is the visible pill text.
func (w Widget) Label() string {
	if w.Tag == "" {
		return ""
	}
	return tagname.Label(w.Tag)
}

// Href is the navigation target; it encodes the unmodified tag.
func (w Widget) Href() string {
	if w.Tag == "" {
		return ""
	}
	return tagname.Marker + w.Tag
}

// Node builds a detached anchor element for the widget. An empty tag yields a
// bare <a> with no text, class or link.
func (w Widget) Node() *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.A,
		Data:     "a",
	}
	if w.Tag == "" {
		return n
	}
	n.Attr = []html.Attribute{
		{Key: "class", Val: TagClass + " " + Class},
		{Key: "target", Val: "_blank"},
		{Key: "rel", Val: "noopener"},
		{Key: "href", Val: w.Href()},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: w.Label()})
	return n
}
