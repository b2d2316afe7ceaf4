// Package markdown renders notes with goldmark and locates inline tags.
package markdown

import (
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindHashtag is the node kind of inline tags.
var KindHashtag = ast.NewNodeKind("Hashtag")

// Hashtag is an inline "#tag" occurrence.
type Hashtag struct {
	ast.BaseInline
	// Segment covers the marker and the tag text.
	Segment text.Segment
}

// Kind implements ast.Node.
func (n *Hashtag) Kind() ast.NodeKind { return KindHashtag }

// Dump implements ast.Node.
func (n *Hashtag) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Tag": string(n.Tag(source))}, nil)
}

// Tag returns the tag text without its marker.
func (n *Hashtag) Tag(source []byte) []byte {
	v := n.Segment.Value(source)
	if len(v) == 0 {
		return nil
	}
	return v[1:]
}

type hashtagParser struct{}

func (hashtagParser) Trigger() []byte { return []byte{'#'} }

func (hashtagParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	if !unicode.IsSpace(block.PrecendingCharacter()) {
		return nil
	}
	line, seg := block.PeekLine()
	if len(line) < 2 || line[0] != '#' {
		return nil
	}
	n := scanTag(line[1:])
	if n == 0 {
		return nil
	}
	block.Advance(1 + n)
	return &Hashtag{Segment: text.NewSegment(seg.Start, seg.Start+1+n)}
}

// scanTag returns the byte length of the tag at the start of b, or 0 when b
// does not start a tag. Tags consisting only of digits are rejected.
func scanTag(b []byte) int {
	n := 0
	digitsOnly := true
	for n < len(b) {
		r, size := utf8.DecodeRune(b[n:])
		if !isTagRune(r) {
			break
		}
		if !unicode.IsDigit(r) {
			digitsOnly = false
		}
		n += size
	}
	if digitsOnly {
		return 0
	}
	return n
}

func isTagRune(r rune) bool {
	switch r {
	case '_', '-', '/':
		return true
	case utf8.RuneError:
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

type hashtagRenderer struct{}

func (r *hashtagRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindHashtag, r.render)
}

// render emits the host tag anchor: <a href="#x" class="tag" ...>#x</a>.
func (r *hashtagRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	raw := util.EscapeHTML(node.(*Hashtag).Segment.Value(source))
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(raw)
	_, _ = w.WriteString(`" class="tag" target="_blank" rel="noopener">`)
	_, _ = w.Write(raw)
	_, _ = w.WriteString("</a>")
	return ast.WalkSkipChildren, nil
}

type hashtagExtender struct{}

// Hashtags is a goldmark extension that parses and renders inline tags.
var Hashtags goldmark.Extender = hashtagExtender{}

func (hashtagExtender) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(hashtagParser{}, 999)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&hashtagRenderer{}, 999)))
}

var md = goldmark.New(goldmark.WithExtensions(Hashtags, Highlighting))

// FindHashtags returns the segments of all inline tags in source, in order.
// Tags inside code spans and code blocks are not reported.
func FindHashtags(source []byte) []text.Segment {
	doc := md.Parser().Parse(text.NewReader(source))
	var out []text.Segment
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*Hashtag); ok {
			out = append(out, h.Segment)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}
