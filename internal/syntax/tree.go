// Package syntax provides the token tree the live-preview engine walks.
//
// The tree is flat: every token is a sibling of the others, ordered by
// position. Token names follow the editor convention of joining style classes
// with underscores, so consumers match on substrings ("hashtag-end", "atom").
package syntax

import "sort"

// Token names.
const (
	HashtagBegin       = "formatting_formatting-hashtag_hashtag_hashtag-begin_meta"
	HashtagEnd         = "hashtag_hashtag-end_meta"
	FrontmatterFence   = "def_hmd-frontmatter"
	FrontmatterKey     = "atom_hmd-frontmatter"
	FrontmatterMeta    = "meta_hmd-frontmatter"
	FrontmatterContent = "hmd-frontmatter"
)

// Node is a token visited during iteration.
type Node interface {
	Name() string
	From() int
	To() int
	// PrevSibling returns the token immediately before this one.
	PrevSibling() (Node, bool)
}

// Walker iterates the tokens overlapping [from, to) in document order.
type Walker interface {
	Iterate(from, to int, enter func(Node))
}

// Token is a named half-open byte range.
type Token struct {
	Name string
	From int
	To   int
}

// Tree is an ordered list of non-overlapping tokens.
type Tree struct {
	tokens []Token
}

// NewTree builds a tree from tokens, sorting them by start offset. Empty
// tokens are dropped.
func NewTree(tokens ...Token) *Tree {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.From < t.To {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].From < out[j].From })
	return &Tree{tokens: out}
}

// Len returns the number of tokens.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.tokens)
}

// Tokens returns a copy of all tokens.
func (t *Tree) Tokens() []Token {
	if t == nil {
		return nil
	}
	return append([]Token(nil), t.tokens...)
}

// Iterate calls enter for every token overlapping [from, to).
func (t *Tree) Iterate(from, to int, enter func(Node)) {
	if t == nil || from >= to {
		return
	}
	i := sort.Search(len(t.tokens), func(i int) bool { return t.tokens[i].To > from })
	for ; i < len(t.tokens) && t.tokens[i].From < to; i++ {
		enter(ref{tree: t, i: i})
	}
}

type ref struct {
	tree *Tree
	i    int
}

func (r ref) Name() string { return r.tree.tokens[r.i].Name }
func (r ref) From() int    { return r.tree.tokens[r.i].From }
func (r ref) To() int      { return r.tree.tokens[r.i].To }

func (r ref) PrevSibling() (Node, bool) {
	if r.i == 0 {
		return nil, false
	}
	return ref{tree: r.tree, i: r.i - 1}, true
}
