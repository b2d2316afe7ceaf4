package dom

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Matcher tests a single node.
type Matcher interface {
	Match(n *html.Node) bool
}

type anyOf []cascadia.Selector

func (a anyOf) Match(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, s := range a {
		if s.Match(n) {
			return true
		}
	}
	return false
}

// Compile builds a matcher accepting nodes that match any of selectors.
func Compile(selectors ...string) (Matcher, error) {
	out := make(anyOf, 0, len(selectors))
	for _, s := range selectors {
		sel, err := cascadia.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("dom: selector %q: %w", s, err)
		}
		out = append(out, sel)
	}
	return out, nil
}

// CompileValid is Compile without errors: blank and malformed selectors are
// left out.
func CompileValid(selectors ...string) Matcher {
	out := make(anyOf, 0, len(selectors))
	for _, s := range selectors {
		if strings.TrimSpace(s) == "" {
			continue
		}
		sel, err := cascadia.Compile(s)
		if err != nil {
			continue
		}
		out = append(out, sel)
	}
	return out
}

// QueryAll returns the descendants of root matching m, in document order.
// root itself is not tested.
func QueryAll(root *html.Node, m Matcher) []*html.Node {
	if root == nil || m == nil {
		return nil
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if m.Match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// Without wraps m to reject nodes carrying class cls.
func Without(m Matcher, cls string) Matcher {
	return excluding{m: m, cls: cls}
}

type excluding struct {
	m   Matcher
	cls string
}

func (e excluding) Match(n *html.Node) bool {
	return e.m.Match(n) && !HasClass(n, e.cls)
}
