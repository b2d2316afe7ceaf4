package parser

import (
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - area/work\n---\n# Hello\nBody text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if len(r.Tags) < 2 || r.Tags[0] != "go" || r.Tags[1] != "area/work" {
		t.Errorf("tags = %v, want [go area/work]", r.Tags)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
	if r.BodyOffset != len(input)-len(r.Body) {
		t.Errorf("body offset = %d", r.BodyOffset)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil || r.HasFrontmatter {
		t.Errorf("expected no frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Invalid YAML falls back to treating everything as body.
	if r.Frontmatter != nil || r.Body != string(input) {
		t.Errorf("expected whole input as body on invalid YAML")
	}
}

func TestLocate_Offsets(t *testing.T) {
	input := []byte("\n---\na: 1\n...\nbody")
	b, ok := Locate(input)
	if !ok {
		t.Fatal("frontmatter not found")
	}
	if b.Open != 1 || b.YAMLStart != 5 || b.Close != 10 || b.BodyStart != 14 {
		t.Errorf("block = %+v", b)
	}
	if string(input[b.YAMLStart:b.YAMLEnd]) != "a: 1\n" {
		t.Errorf("yaml = %q", input[b.YAMLStart:b.YAMLEnd])
	}
}

func TestLocate_Unclosed(t *testing.T) {
	if _, ok := Locate([]byte("---\na: 1\n")); ok {
		t.Error("unclosed block must not be frontmatter")
	}
	if _, ok := Locate([]byte("----\na: 1\n---\n")); ok {
		t.Error("four dashes is not a fence")
	}
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	fm := map[string]any{
		"tags": []any{"alpha"},
	}
	body := []byte("Some text #beta and #alpha again. `#code` is not a tag, nor is a#b or #123.")
	tags := extractTags(body, fm)
	// alpha from FM, beta from body; alpha not duplicated.
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestExtractTags_SpaceSeparatedTagKey(t *testing.T) {
	tags := extractTags(nil, map[string]any{"Tag": "one two/three"})
	if len(tags) != 2 || tags[0] != "one" || tags[1] != "two/three" {
		t.Errorf("tags = %v", tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	fm := map[string]any{"title": "FM Title"}
	body := "# H1 Title\ntext"
	title := deriveTitle(fm, body)
	if title != "FM Title" {
		t.Errorf("title = %q, want %q", title, "FM Title")
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	title := deriveTitle(nil, "some text\n# My Heading\nmore")
	if title != "My Heading" {
		t.Errorf("title = %q, want %q", title, "My Heading")
	}
}
