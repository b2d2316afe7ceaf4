// Package livepreview keeps tag decorations for an editable Markdown buffer.
//
// An Engine is created per editor view. It builds its decoration set from the
// view's syntax tree on construction and then follows view updates: edits
// made while composing text or drag-selecting only shift existing
// decorations, while selection and viewport changes rebuild the set.
package livepreview

import (
	"strings"

	"github.com/starford/basetag/internal/decoration"
	"github.com/starford/basetag/internal/parser"
	"github.com/starford/basetag/internal/syntax"
	"github.com/starford/basetag/internal/widget"
)

// DefaultKeyLookback is how many preceding siblings are searched for the key
// of a frontmatter value.
const DefaultKeyLookback = 20

// View is the editor state the engine reads.
type View interface {
	// VisibleRanges returns the rendered parts of the document, ascending.
	VisibleRanges() []decoration.Range
	// Tree returns the syntax tree of the current document.
	Tree() syntax.Walker
	// Selection returns the current selection ranges; a cursor is an empty range.
	Selection() []decoration.Range
	// Slice returns the document text in [from, to).
	Slice(from, to int) string
}

// Update describes one view transaction.
type Update struct {
	View    View
	Changes decoration.ChangeSet

	// Composing is set while an input method is composing text.
	Composing bool
	// PointerDown is set while the user drags a selection with the pointer.
	PointerDown bool

	SelectionSet    bool
	ViewportChanged bool
}

// State is the last transition taken by an Engine.
type State uint8

const (
	Initialized State = iota
	Remapped
	Recomputed
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Remapped:
		return "remapped"
	case Recomputed:
		return "recomputed"
	}
	return "unknown"
}

// Option configures an Engine.
type Option func(*Engine)

// WithKeyLookback sets how many siblings are searched for a frontmatter key.
// Values below 1 are ignored.
func WithKeyLookback(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.lookback = n
		}
	}
}

// Engine owns the decoration set of one editor view. It is not safe for
// concurrent use; updates must be applied in the order the host delivers them.
type Engine struct {
	decorations decoration.Set
	state       State
	lookback    int
}

// New builds the initial decoration set for view.
func New(view View, opts ...Option) *Engine {
	e := &Engine{lookback: DefaultKeyLookback}
	for _, opt := range opts {
		opt(e)
	}
	e.decorations = e.build(view)
	return e
}

// Decorations returns the current decoration set.
func (e *Engine) Decorations() decoration.Set { return e.decorations }

// State returns the last transition taken.
func (e *Engine) State() State { return e.state }

// Update applies one view transaction and reports whether the decoration set
// was replaced or shifted.
func (e *Engine) Update(u Update) bool {
	switch {
	case u.Composing || u.PointerDown:
		e.decorations = e.decorations.Map(u.Changes)
		e.state = Remapped
		return true
	case u.SelectionSet || u.ViewportChanged:
		if u.View == nil {
			return false
		}
		e.decorations = e.build(u.View)
		e.state = Recomputed
		return true
	case !u.Changes.IsEmpty():
		// An edit that moved neither selection nor viewport, such as a
		// change made by another view, only shifts positions.
		e.decorations = e.decorations.Map(u.Changes)
		e.state = Remapped
		return true
	}
	return false
}

// Build computes the decorations for view with default options.
func Build(view View) decoration.Set {
	return (&Engine{lookback: DefaultKeyLookback}).build(view)
}

func (e *Engine) build(view View) decoration.Set {
	var b decoration.Builder
	if view == nil {
		return b.Finish()
	}
	tree := view.Tree()
	if tree == nil {
		return b.Finish()
	}
	sel := view.Selection()

	for _, vr := range view.VisibleRanges() {
		tree.Iterate(vr.From, vr.To, func(n syntax.Node) {
			switch {
			case strings.Contains(n.Name(), "hashtag-end"):
				e.addInlineTag(&b, view, sel, n)
			case n.Name() == syntax.FrontmatterContent:
				e.addFrontmatterTags(&b, view, sel, n)
			}
		})
	}
	return b.Finish()
}

// addInlineTag replaces the marker and tag text with one widget unless the
// selection touches the tag.
func (e *Engine) addInlineTag(b *decoration.Builder, view View, sel []decoration.Range, n syntax.Node) {
	guard := decoration.Range{From: n.From() - 1, To: n.To() + 1}
	if touches(guard, sel) {
		return
	}
	b.Add(n.From()-1, n.To(), widget.New(view.Slice(n.From(), n.To())))
}

// addFrontmatterTags decorates each space-separated fragment of a frontmatter
// value whose key is "tags" or "tag".
func (e *Engine) addFrontmatterTags(b *decoration.Builder, view View, sel []decoration.Range, n syntax.Node) {
	guard := decoration.Range{From: n.From(), To: n.To() + 1}
	if touches(guard, sel) {
		return
	}
	if !parser.IsTagKey(e.frontmatterKey(view, n)) {
		return
	}

	index := n.From()
	for _, tag := range strings.Split(view.Slice(n.From(), n.To()), " ") {
		if tag == "" {
			continue
		}
		b.Add(index, index+len(tag), widget.New(tag))
		index += len(tag) + 1
	}
}

// frontmatterKey walks back through the siblings of n for the nearest key
// token. When none is found within the lookback, n itself is the key only if
// it is a key token, so a value never names its own key.
func (e *Engine) frontmatterKey(view View, n syntax.Node) string {
	key, ok := findKey(n, e.lookback)
	if !ok {
		key = n
	}
	if !strings.Contains(key.Name(), "atom") {
		return ""
	}
	return view.Slice(key.From(), key.To())
}

func findKey(n syntax.Node, limit int) (syntax.Node, bool) {
	cur := n
	for i := 0; i < limit; i++ {
		prev, ok := cur.PrevSibling()
		if !ok {
			return nil, false
		}
		if strings.Contains(prev.Name(), "atom") {
			return prev, true
		}
		cur = prev
	}
	return nil, false
}

func touches(r decoration.Range, sel []decoration.Range) bool {
	for _, s := range sel {
		if r.Intersects(s) {
			return true
		}
	}
	return false
}
