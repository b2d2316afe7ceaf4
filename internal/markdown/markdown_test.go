package markdown

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

func TestFindHashtags(t *testing.T) {
	src := []byte("#start mid#no #a/b-c_d, `#code` #123 #x1\n\n```\n#fenced\n```\n")
	var got []string
	for _, seg := range FindHashtags(src) {
		got = append(got, string(seg.Value(src)))
	}
	want := []string{"#start", "#a/b-c_d", "#x1"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFindHashtags_Unicode(t *testing.T) {
	src := []byte("tagged #café/größe here")
	segs := FindHashtags(src)
	if len(segs) != 1 || string(segs[0].Value(src)) != "#café/größe" {
		t.Fatalf("segments = %v", segs)
	}
}

func TestRenderBody_TagAnchors(t *testing.T) {
	out, err := RenderBody([]byte("hello #a/b"))
	if err != nil {
		t.Fatalf("RenderBody: %v", err)
	}
	want := `<a href="#a/b" class="tag" target="_blank" rel="noopener">#a/b</a>`
	if !strings.Contains(string(out), want) {
		t.Errorf("missing anchor in %s", out)
	}
}

func TestRenderBody_HighlightsFencedCode(t *testing.T) {
	out, err := RenderBody([]byte("```go\npackage main\n```\n"))
	if err != nil {
		t.Fatalf("RenderBody: %v", err)
	}
	if !strings.Contains(string(out), "<pre") || !strings.Contains(string(out), "package") {
		t.Errorf("code block not rendered: %s", out)
	}
	if strings.Contains(string(out), `class="tag"`) {
		t.Errorf("code rendered as tags: %s", out)
	}
}

func yamlDoc(t *testing.T, s string) *yaml.Node {
	t.Helper()
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(s), &n); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	return &n
}

func TestProperties(t *testing.T) {
	props := Properties(yamlDoc(t, "title: Hi\nTag: a/b c\naliases:\n  - x\nnested:\n  k: v\n"))
	if len(props) != 3 {
		t.Fatalf("len = %d: %+v", len(props), props)
	}
	if p := props[0]; p.Key != "title" || p.List || len(p.Values) != 1 || p.Values[0] != "Hi" {
		t.Errorf("title = %+v", p)
	}
	if p := props[1]; p.PanelKey() != "tags" || !p.List || strings.Join(p.Values, ",") != "a/b,c" {
		t.Errorf("tags = %+v", p)
	}
	if p := props[2]; !p.List || p.Values[0] != "x" {
		t.Errorf("aliases = %+v", p)
	}
}

func TestProperties_NotMapping(t *testing.T) {
	if got := Properties(yamlDoc(t, "- a\n- b\n")); got != nil {
		t.Errorf("got %+v", got)
	}
	if got := Properties(nil); got != nil {
		t.Errorf("nil: %+v", got)
	}
}

func TestPropertyNodes(t *testing.T) {
	nodes := PropertyNodes([]Property{{Key: "tags", Values: []string{"area/work"}, List: true}, {Key: "title", Values: []string{"T"}}})
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			t.Fatal(err)
		}
	}
	want := `<div class="metadata-property" data-property-key="tags"><div class="metadata-property-key">tags</div>` +
		`<div class="metadata-property-value"><div class="multi-select-container"><div class="multi-select-pill">` +
		`<div class="multi-select-pill-content">area/work</div></div></div></div></div>` +
		`<div class="metadata-property" data-property-key="title"><div class="metadata-property-key">title</div>` +
		`<div class="metadata-property-value">T</div></div>`
	if buf.String() != want {
		t.Errorf("got  %s\nwant %s", buf.String(), want)
	}
}

func TestPage_Write(t *testing.T) {
	var buf bytes.Buffer
	p := Page{Title: "A <b>", Path: "a.md", Body: "<p>x</p>", Events: "/api/events"}
	if err := p.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>A &lt;b&gt;</title>",
		`<div class="metadata-container"></div>`,
		"<p>x</p>",
		"EventSource",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}

	buf.Reset()
	p.Events = ""
	_ = p.Write(&buf)
	if strings.Contains(buf.String(), "EventSource") {
		t.Error("live reload script without events URL")
	}
}
