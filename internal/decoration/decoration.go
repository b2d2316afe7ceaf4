// Package decoration holds range-to-widget replacements over a text buffer.
//
// Offsets are byte offsets into the document. Ranges are half-open: [From, To).
package decoration

import "github.com/starford/basetag/internal/widget"

// Range is a half-open span [From, To).
type Range struct {
	From int
	To   int
}

// Intersects reports whether r and o overlap. A zero-width o lying exactly on
// r.From counts as intersecting.
func (r Range) Intersects(o Range) bool {
	return r.From <= o.To && o.From < r.To
}

// IsEmpty reports whether r covers no text.
func (r Range) IsEmpty() bool { return r.From >= r.To }

// Decoration replaces the text in Range with Widget.
type Decoration struct {
	Range
	Widget widget.Widget
}

// Set is an immutable, ordered, non-overlapping collection of decorations.
type Set struct {
	items []Decoration
}

// Len returns the number of decorations.
func (s Set) Len() int { return len(s.items) }

// All returns a copy of the decorations in ascending order.
func (s Set) All() []Decoration {
	return append([]Decoration(nil), s.items...)
}

// At returns the decoration starting exactly at pos.
func (s Set) At(pos int) (Decoration, bool) {
	for _, d := range s.items {
		if d.From == pos {
			return d, true
		}
		if d.From > pos {
			break
		}
	}
	return Decoration{}, false
}

// Eq reports whether both sets hold the same ranges with equal widgets.
func (s Set) Eq(o Set) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

// Map shifts every decoration through ch. Text inserted at a decoration's
// start lands before it; text inserted at its end lands after it. A
// decoration whose range collapses is dropped.
func (s Set) Map(ch ChangeSet) Set {
	if ch.IsEmpty() || len(s.items) == 0 {
		return s
	}
	out := make([]Decoration, 0, len(s.items))
	for _, d := range s.items {
		from := ch.MapPos(d.From, 1)
		to := ch.MapPos(d.To, -1)
		if from >= to {
			continue
		}
		d.From, d.To = from, to
		out = append(out, d)
	}
	return Set{items: out}
}

// Builder accumulates decorations in ascending order.
type Builder struct {
	items []Decoration
}

// Add appends a decoration replacing [from, to) with w. It reports false and
// drops the decoration when the range is empty, starts before the previous
// decoration, or overlaps it.
func (b *Builder) Add(from, to int, w widget.Widget) bool {
	if from < 0 || from >= to {
		return false
	}
	if n := len(b.items); n > 0 {
		if from < b.items[n-1].To {
			return false
		}
	}
	b.items = append(b.items, Decoration{Range: Range{From: from, To: to}, Widget: w})
	return true
}

// Finish returns the accumulated set and resets the builder.
func (b *Builder) Finish() Set {
	s := Set{items: b.items}
	b.items = nil
	return s
}
