package syntax

import (
	"bytes"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/starford/basetag/internal/markdown"
	"github.com/starford/basetag/internal/parser"
)

// Parse tokenizes a Markdown document: frontmatter keys, separators and
// values, and the inline tags of the body.
func Parse(src []byte) *Tree {
	var toks []Token
	bodyStart := 0

	if blk, ok := parser.Locate(src); ok {
		bodyStart = blk.BodyStart
		toks = append(toks,
			Token{Name: FrontmatterFence, From: blk.Open, To: blk.Open + 3},
			Token{Name: FrontmatterFence, From: blk.Close, To: blk.Close + 3},
		)
		toks = append(toks, frontmatterTokens(src[blk.YAMLStart:blk.YAMLEnd], blk.YAMLStart)...)
	}

	body := src[bodyStart:]
	for _, seg := range markdown.FindHashtags(body) {
		from, to := bodyStart+seg.Start, bodyStart+seg.Stop
		toks = append(toks,
			Token{Name: HashtagBegin, From: from, To: from + 1},
			Token{Name: HashtagEnd, From: from + 1, To: to},
		)
	}
	return NewTree(toks...)
}

// frontmatterTokens tokenizes the top-level entries of a YAML mapping. base
// is the offset of block within the document. Invalid YAML yields no tokens.
func frontmatterTokens(block []byte, base int) []Token {
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}

	pos := newPositions(block)
	var toks []Token
	add := func(name string, from, to int) {
		toks = append(toks, Token{Name: name, From: base + from, To: base + to})
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		kFrom, kTo, ok := pos.scalar(key)
		if !ok {
			continue
		}
		add(FrontmatterKey, kFrom, kTo)
		if colon := bytes.IndexByte(block[kTo:pos.lineEnd(kTo)], ':'); colon >= 0 {
			add(FrontmatterMeta, kTo+colon, kTo+colon+1)
		}

		switch val.Kind {
		case yaml.ScalarNode:
			if from, to, ok := pos.scalar(val); ok {
				add(FrontmatterContent, from, to)
			}
		case yaml.SequenceNode:
			for _, item := range val.Content {
				from, to, ok := pos.scalar(item)
				if !ok {
					continue
				}
				if val.Style&yaml.FlowStyle == 0 {
					if dash := pos.dashBefore(from); dash >= 0 {
						add(FrontmatterMeta, dash, from)
					}
				}
				add(FrontmatterContent, from, to)
			}
		}
	}
	return toks
}

type positions struct {
	src        []byte
	lineStarts []int
}

func newPositions(src []byte) positions {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return positions{src: src, lineStarts: starts}
}

func (p positions) lineEnd(off int) int {
	if i := bytes.IndexByte(p.src[off:], '\n'); i >= 0 {
		return off + i
	}
	return len(p.src)
}

// offset converts a 1-based line and rune column into a byte offset.
func (p positions) offset(line, col int) int {
	if line < 1 || line > len(p.lineStarts) || col < 1 {
		return -1
	}
	off := p.lineStarts[line-1]
	end := p.lineEnd(off)
	for c := 1; c < col && off < end; c++ {
		_, size := utf8.DecodeRune(p.src[off:end])
		off += size
	}
	return off
}

// scalar returns the byte range of a single-line scalar. Plain scalars cover
// exactly their value; quoted ones run through their closing quote, or to the
// end of the line when the quote is not closed on it.
func (p positions) scalar(n *yaml.Node) (int, int, bool) {
	if n == nil || n.Kind != yaml.ScalarNode || n.Value == "" {
		return 0, 0, false
	}
	if n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		return 0, 0, false
	}
	from := p.offset(n.Line, n.Column)
	if from < 0 {
		return 0, 0, false
	}
	end := p.lineEnd(from)
	if bytes.HasPrefix(p.src[from:end], []byte(n.Value)) {
		return from, from + len(n.Value), true
	}
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		if to := closingQuote(p.src[from:end]); to > 0 {
			return from, from + to, true
		}
	}
	to := from + len(bytes.TrimRight(p.src[from:end], " \t\r"))
	if to <= from {
		return 0, 0, false
	}
	return from, to, true
}

// closingQuote returns the length of the quoted scalar at the start of line,
// closing quote included, or 0 when it does not close on this line. Double
// quotes honour backslash escapes; single quotes are escaped by doubling.
func closingQuote(line []byte) int {
	if len(line) == 0 {
		return 0
	}
	q := line[0]
	if q != '"' && q != '\'' {
		return 0
	}
	for i := 1; i < len(line); i++ {
		switch {
		case q == '"' && line[i] == '\\':
			i++
		case line[i] != q:
		case q == '\'' && i+1 < len(line) && line[i+1] == '\'':
			i++
		default:
			return i + 1
		}
	}
	return 0
}

// dashBefore returns the offset of the "- " item marker preceding off on the
// same line, or -1.
func (p positions) dashBefore(off int) int {
	i := off - 1
	for i >= 0 && (p.src[i] == ' ' || p.src[i] == '\t') {
		i--
	}
	if i >= 0 && p.src[i] == '-' {
		return i
	}
	return -1
}
