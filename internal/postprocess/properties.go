package postprocess

import (
	"github.com/starford/basetag/internal/dom"
	"github.com/starford/basetag/internal/tagname"
	"github.com/starford/basetag/internal/widget"
)

// UpdatePropertyTags shows the basename of every property tag in doc that
// matches PropertyTagSelector or one of extra, and records the full text in
// the data-tag attribute. Elements already marked with widget.Class are left
// alone, so repeated calls only touch new elements. Malformed selectors in
// extra are ignored.
func UpdatePropertyTags(doc *dom.Document, extra ...string) {
	selectors := append([]string{PropertyTagSelector}, extra...)
	m := dom.Without(dom.CompileValid(selectors...), widget.Class)
	for _, n := range dom.QueryAll(doc.Root(), m) {
		text := dom.Text(n)
		doc.SetText(n, tagname.Basename(text))
		doc.AddClass(n, widget.Class)
		doc.SetAttr(n, widget.DataAttr, text)
	}
}
