package editor

import (
	"sort"
	"unicode/utf8"

	"github.com/starford/basetag/internal/decoration"
	"github.com/starford/basetag/internal/livepreview"
	"github.com/starford/basetag/internal/syntax"
)

// Document is an editable Markdown buffer shown through a window of lines.
// Every operation returns the livepreview.Update describing it, so the host
// can forward it to the decoration engine.
type Document struct {
	text    string
	anchor  int
	head    int
	blurred bool

	top    int
	height int

	lines []int
	tree  *syntax.Tree
}

var _ livepreview.View = (*Document)(nil)

// NewDocument creates a document with the cursor at the start.
func NewDocument(text string) *Document {
	d := &Document{text: text}
	d.reindex()
	return d
}

// Text returns the buffer contents.
func (d *Document) Text() string { return d.text }

// Cursor returns the selection head.
func (d *Document) Cursor() int { return d.head }

// Anchor returns the fixed end of the selection.
func (d *Document) Anchor() int { return d.anchor }

// Top returns the first visible line.
func (d *Document) Top() int { return d.top }

// Height returns the number of visible lines; 0 shows everything.
func (d *Document) Height() int { return d.height }

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns the byte range of line i without its terminator.
func (d *Document) Line(i int) (from, to int) {
	from = d.lines[i]
	if i+1 < len(d.lines) {
		return from, d.lines[i+1] - 1
	}
	return from, len(d.text)
}

// LineOf returns the line containing pos.
func (d *Document) LineOf(pos int) int {
	return sort.Search(len(d.lines), func(i int) bool { return d.lines[i] > pos }) - 1
}

// PosAt returns the offset of rune column col on line; both are clamped.
func (d *Document) PosAt(line, col int) int {
	if line < 0 {
		line = 0
	}
	if line >= len(d.lines) {
		line = len(d.lines) - 1
	}
	pos, end := d.Line(line)
	for ; col > 0 && pos < end; col-- {
		_, size := utf8.DecodeRuneInString(d.text[pos:])
		pos += size
	}
	return pos
}

// VisibleRanges returns the byte range of the visible lines.
func (d *Document) VisibleRanges() []decoration.Range {
	if d.height <= 0 {
		return []decoration.Range{{From: 0, To: len(d.text)}}
	}
	last := d.top + d.height
	to := len(d.text)
	if last < len(d.lines) {
		to = d.lines[last]
	}
	return []decoration.Range{{From: d.lines[d.top], To: to}}
}

// Tree returns the syntax tree, parsing the buffer on first use after an
// edit.
func (d *Document) Tree() syntax.Walker {
	if d.tree == nil {
		d.tree = syntax.Parse([]byte(d.text))
	}
	return d.tree
}

// Selection returns the single selection range, or nothing while blurred.
func (d *Document) Selection() []decoration.Range {
	if d.blurred {
		return nil
	}
	from, to := d.selected()
	return []decoration.Range{{From: from, To: to}}
}

// Slice returns the text in [from, to), clamped to the buffer.
func (d *Document) Slice(from, to int) string {
	from, to = d.clamp(from), d.clamp(to)
	if from >= to {
		return ""
	}
	return d.text[from:to]
}

// SetCursor moves the selection head to pos. Without extend the selection
// collapses onto it.
func (d *Document) SetCursor(pos int, extend bool) livepreview.Update {
	d.head = d.snap(pos)
	d.blurred = false
	if !extend {
		d.anchor = d.head
	}
	return livepreview.Update{View: d, SelectionSet: true, ViewportChanged: d.follow()}
}

// Blur hides the selection until the cursor is placed again.
func (d *Document) Blur() livepreview.Update {
	d.blurred = true
	return livepreview.Update{View: d, SelectionSet: true}
}

// Blurred reports whether the selection is hidden.
func (d *Document) Blurred() bool { return d.blurred }

// Left moves one rune left.
func (d *Document) Left(extend bool) livepreview.Update {
	if !extend && d.anchor != d.head {
		from, _ := d.selected()
		return d.SetCursor(from, false)
	}
	_, size := utf8.DecodeLastRuneInString(d.text[:d.head])
	return d.SetCursor(d.head-size, extend)
}

// Right moves one rune right.
func (d *Document) Right(extend bool) livepreview.Update {
	if !extend && d.anchor != d.head {
		_, to := d.selected()
		return d.SetCursor(to, false)
	}
	_, size := utf8.DecodeRuneInString(d.text[d.head:])
	return d.SetCursor(d.head+size, extend)
}

// Vertical moves by delta lines, keeping the rune column where possible.
func (d *Document) Vertical(delta int, extend bool) livepreview.Update {
	line := d.LineOf(d.head)
	from, _ := d.Line(line)
	col := utf8.RuneCountInString(d.text[from:d.head])
	return d.SetCursor(d.PosAt(line+delta, col), extend)
}

// Home moves to the start of the line.
func (d *Document) Home(extend bool) livepreview.Update {
	from, _ := d.Line(d.LineOf(d.head))
	return d.SetCursor(from, extend)
}

// End moves to the end of the line.
func (d *Document) End(extend bool) livepreview.Update {
	_, to := d.Line(d.LineOf(d.head))
	return d.SetCursor(to, extend)
}

// Insert replaces the selection with s, as typing does.
func (d *Document) Insert(s string) livepreview.Update {
	from, to := d.selected()
	return d.replace(from, to, s)
}

// Compose inserts s as input-method text. The engine shifts its decorations
// instead of rebuilding them.
func (d *Document) Compose(s string) livepreview.Update {
	u := d.Insert(s)
	u.Composing = true
	return u
}

// Backspace deletes the selection or the rune before the cursor.
func (d *Document) Backspace() livepreview.Update {
	from, to := d.selected()
	if from == to {
		if from == 0 {
			return livepreview.Update{View: d}
		}
		_, size := utf8.DecodeLastRuneInString(d.text[:from])
		from -= size
	}
	return d.replace(from, to, "")
}

// Delete deletes the selection or the rune after the cursor.
func (d *Document) Delete() livepreview.Update {
	from, to := d.selected()
	if from == to {
		if to == len(d.text) {
			return livepreview.Update{View: d}
		}
		_, size := utf8.DecodeRuneInString(d.text[to:])
		to += size
	}
	return d.replace(from, to, "")
}

// Press starts a pointer selection at pos.
func (d *Document) Press(pos int, extend bool) livepreview.Update {
	u := d.SetCursor(pos, extend)
	u.PointerDown = true
	return u
}

// DragTo extends a pointer selection to pos.
func (d *Document) DragTo(pos int) livepreview.Update {
	u := d.SetCursor(pos, true)
	u.PointerDown = true
	return u
}

// Release ends a pointer selection.
func (d *Document) Release() livepreview.Update {
	return livepreview.Update{View: d, SelectionSet: true}
}

// Scroll moves the window by delta lines.
func (d *Document) Scroll(delta int) livepreview.Update {
	prev := d.top
	d.top = d.clampTop(d.top + delta)
	return livepreview.Update{View: d, ViewportChanged: d.top != prev}
}

// Resize sets the window height in lines.
func (d *Document) Resize(height int) livepreview.Update {
	if height < 0 {
		height = 0
	}
	d.height = height
	d.top = d.clampTop(d.top)
	d.follow()
	return livepreview.Update{View: d, ViewportChanged: true}
}

func (d *Document) replace(from, to int, s string) livepreview.Update {
	changes := decoration.NewChangeSet(decoration.Change{From: from, To: to, Insert: s})
	d.text = changes.Apply(d.text)
	d.reindex()
	d.head = from + len(s)
	d.anchor = d.head
	return livepreview.Update{
		View:            d,
		Changes:         changes,
		SelectionSet:    true,
		ViewportChanged: d.follow(),
	}
}

func (d *Document) reindex() {
	d.lines = append(d.lines[:0], 0)
	for i := 0; i < len(d.text); i++ {
		if d.text[i] == '\n' {
			d.lines = append(d.lines, i+1)
		}
	}
	d.tree = nil
	d.top = d.clampTop(d.top)
}

// follow scrolls the cursor line into view and reports whether the window
// moved.
func (d *Document) follow() bool {
	if d.height <= 0 {
		return false
	}
	prev := d.top
	line := d.LineOf(d.head)
	switch {
	case line < d.top:
		d.top = line
	case line >= d.top+d.height:
		d.top = line - d.height + 1
	}
	return d.top != prev
}

func (d *Document) clampTop(top int) int {
	limit := len(d.lines) - d.height
	if d.height <= 0 || limit < 0 {
		limit = 0
	}
	if top > limit {
		top = limit
	}
	if top < 0 {
		top = 0
	}
	return top
}

func (d *Document) selected() (int, int) {
	if d.anchor <= d.head {
		return d.anchor, d.head
	}
	return d.head, d.anchor
}

func (d *Document) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(d.text) {
		return len(d.text)
	}
	return pos
}

// snap clamps pos and moves it back onto a rune boundary.
func (d *Document) snap(pos int) int {
	pos = d.clamp(pos)
	for pos > 0 && pos < len(d.text) && !utf8.RuneStart(d.text[pos]) {
		pos--
	}
	return pos
}
