package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/starford/basetag/internal/decoration"
)

// Render draws the visible lines of doc. Decorations become pills showing
// their widget label; the cursor and selection are drawn unless the document
// is blurred.
func Render(doc *Document, set decoration.Set, st Styles) string {
	first, last := 0, doc.LineCount()
	if h := doc.Height(); h > 0 {
		first = doc.Top()
		if first+h < last {
			last = first + h
		}
	}

	items := set.All()
	selFrom, selTo := doc.selected()
	cursor := !doc.Blurred()

	var sb strings.Builder
	di := 0
	for line := first; line < last; line++ {
		if line > first {
			sb.WriteByte('\n')
		}
		from, to := doc.Line(line)
		for di < len(items) && items[di].From < from {
			di++
		}

		for pos := from; pos < to; {
			if di < len(items) && items[di].From == pos && items[di].To <= to &&
				!(cursor && doc.head >= pos && doc.head < items[di].To) {
				sb.WriteString(st.Pill.Render(items[di].Widget.Label()))
				pos = items[di].To
				di++
				continue
			}
			_, size := utf8.DecodeRuneInString(doc.text[pos:])
			ch := doc.text[pos : pos+size]
			switch {
			case cursor && pos == doc.head:
				sb.WriteString(st.Cursor.Render(ch))
			case cursor && pos >= selFrom && pos < selTo:
				sb.WriteString(st.Selection.Render(ch))
			default:
				sb.WriteString(ch)
			}
			pos += size
			for di < len(items) && items[di].From < pos {
				di++
			}
		}
		if cursor && doc.head == to {
			sb.WriteString(st.Cursor.Render(" "))
		}
	}
	return sb.String()
}
