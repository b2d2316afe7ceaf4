// Package dom wraps golang.org/x/net/html trees with change notification.
//
// All structural edits made through a Document are reported to the observers
// registered on it, in the manner of a browser MutationObserver: records are
// queued while mutating and handed to callbacks on Flush. A Document is not
// safe for concurrent use.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is an HTML tree plus the observers watching it.
type Document struct {
	root      *html.Node
	fragment  bool
	observers []*observer
}

// New wraps an existing tree.
func New(root *html.Node) *Document {
	return &Document{root: root}
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return New(root), nil
}

// ParseFragment parses s as the content of a <div>. The div becomes the
// document root and is omitted by Render.
func ParseFragment(s string) (*Document, error) {
	holder := NewElement("div")
	nodes, err := html.ParseFragment(strings.NewReader(s), holder)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	for _, n := range nodes {
		holder.AppendChild(n)
	}
	return &Document{root: holder, fragment: true}, nil
}

// Root returns the document root.
func (d *Document) Root() *html.Node { return d.root }

// Render writes the tree as HTML.
func (d *Document) Render(w io.Writer) error {
	if !d.fragment {
		return html.Render(w, d.root)
	}
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// String renders the tree, returning "" on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// InsertBefore inserts child into parent before ref, or appends when ref is nil.
func (d *Document) InsertBefore(parent, child, ref *html.Node) {
	if parent == nil || child == nil {
		return
	}
	if child.Parent != nil {
		d.Remove(child)
	}
	parent.InsertBefore(child, ref)
	d.queue(MutationRecord{Kind: ChildList, Target: parent, Added: []*html.Node{child}})
}

// AppendChild appends child to parent.
func (d *Document) AppendChild(parent, child *html.Node) {
	d.InsertBefore(parent, child, nil)
}

// Remove detaches n from its parent.
func (d *Document) Remove(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	parent := n.Parent
	parent.RemoveChild(n)
	d.queue(MutationRecord{Kind: ChildList, Target: parent, Removed: []*html.Node{n}})
}

// SetText replaces all children of n with a single text node, like assigning
// textContent. An empty text leaves n without children.
func (d *Document) SetText(n *html.Node, text string) {
	if n == nil {
		return
	}
	var removed []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		removed = append(removed, c)
		c = next
	}
	var added []*html.Node
	if text != "" {
		tn := &html.Node{Type: html.TextNode, Data: text}
		n.AppendChild(tn)
		added = append(added, tn)
	}
	d.queue(MutationRecord{Kind: ChildList, Target: n, Added: added, Removed: removed})
}

// SetAttr sets or replaces attribute key on n.
func (d *Document) SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	setAttr(n, key, val)
	d.queue(MutationRecord{Kind: Attributes, Target: n, AttributeName: key})
}

// AddClass appends cls to the class list of n unless already present.
func (d *Document) AddClass(n *html.Node, cls string) {
	if n == nil || HasClass(n, cls) {
		return
	}
	cur, _ := Attr(n, "class")
	if cur = strings.TrimSpace(cur); cur != "" {
		cur += " "
	}
	d.SetAttr(n, "class", cur+cls)
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Text returns the concatenated text of n and its descendants.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
				continue
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	return sb.String()
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether n's class list contains cls.
func HasClass(n *html.Node, cls string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == cls {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func isAncestor(anc, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == anc {
			return true
		}
	}
	return false
}
