package decoration

import "sort"

// Change replaces the bytes [From, To) of the old document with Insert.
type Change struct {
	From   int
	To     int
	Insert string
}

// ChangeSet is a set of non-overlapping changes expressed in coordinates of
// the document before any of them applied.
type ChangeSet struct {
	changes []Change
}

// NewChangeSet normalises changes: it swaps inverted ranges, drops no-ops and
// sorts by position. Overlapping changes are merged into one replacement.
func NewChangeSet(changes ...Change) ChangeSet {
	cs := make([]Change, 0, len(changes))
	for _, c := range changes {
		if c.To < c.From {
			c.From, c.To = c.To, c.From
		}
		if c.From < 0 {
			c.From = 0
		}
		if c.From == c.To && c.Insert == "" {
			continue
		}
		cs = append(cs, c)
	}
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].From < cs[j].From })

	merged := make([]Change, 0, len(cs))
	for _, c := range cs {
		if n := len(merged); n > 0 && c.From < merged[n-1].To {
			last := &merged[n-1]
			last.Insert += c.Insert
			if c.To > last.To {
				last.To = c.To
			}
			continue
		}
		merged = append(merged, c)
	}
	return ChangeSet{changes: merged}
}

// IsEmpty reports whether the set changes nothing.
func (c ChangeSet) IsEmpty() bool { return len(c.changes) == 0 }

// Changes returns a copy of the normalised changes.
func (c ChangeSet) Changes() []Change {
	return append([]Change(nil), c.changes...)
}

// LengthDelta is the net byte count added by the set.
func (c ChangeSet) LengthDelta() int {
	d := 0
	for _, ch := range c.changes {
		d += len(ch.Insert) - (ch.To - ch.From)
	}
	return d
}

// MapPos maps an old-document position into the new document. assoc picks
// the side when text is inserted exactly at pos or pos falls in a replaced
// range: negative stays before the insertion, otherwise pos moves after it.
func (c ChangeSet) MapPos(pos, assoc int) int {
	delta := 0
	for _, ch := range c.changes {
		if pos < ch.From {
			break
		}
		if pos > ch.To {
			delta += len(ch.Insert) - (ch.To - ch.From)
			continue
		}
		// ch.From <= pos <= ch.To
		if ch.From == ch.To {
			if assoc < 0 {
				return pos + delta
			}
			delta += len(ch.Insert)
			continue
		}
		if assoc < 0 {
			return ch.From + delta
		}
		return ch.From + delta + len(ch.Insert)
	}
	return pos + delta
}

// Apply returns doc with the changes applied.
func (c ChangeSet) Apply(doc string) string {
	if c.IsEmpty() {
		return doc
	}
	out := make([]byte, 0, len(doc)+c.LengthDelta())
	at := 0
	for _, ch := range c.changes {
		from, to := clamp(ch.From, len(doc)), clamp(ch.To, len(doc))
		if from < at {
			from = at
		}
		if to < from {
			to = from
		}
		out = append(out, doc[at:from]...)
		out = append(out, ch.Insert...)
		at = to
	}
	out = append(out, doc[at:]...)
	return string(out)
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
