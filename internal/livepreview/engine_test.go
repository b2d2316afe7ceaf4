package livepreview

import (
	"strings"
	"testing"

	"github.com/starford/basetag/internal/decoration"
	"github.com/starford/basetag/internal/syntax"
)

type testView struct {
	doc     string
	tree    *syntax.Tree
	sel     []decoration.Range
	visible []decoration.Range
}

func newView(doc string, sel ...decoration.Range) *testView {
	return &testView{
		doc:     doc,
		tree:    syntax.Parse([]byte(doc)),
		sel:     sel,
		visible: []decoration.Range{{From: 0, To: len(doc)}},
	}
}

func (v *testView) VisibleRanges() []decoration.Range { return v.visible }
func (v *testView) Tree() syntax.Walker               { return v.tree }
func (v *testView) Selection() []decoration.Range     { return v.sel }
func (v *testView) Slice(from, to int) string         { return v.doc[from:to] }

func cursor(pos int) decoration.Range { return decoration.Range{From: pos, To: pos} }

type got struct {
	from, to int
	tag      string
}

func decos(s decoration.Set) []got {
	var out []got
	for _, d := range s.All() {
		out = append(out, got{d.From, d.To, d.Widget.Tag})
	}
	return out
}

func TestBuild_InlineTag(t *testing.T) {
	v := newView("hi #a/b x", cursor(0))
	ds := decos(Build(v))
	if len(ds) != 1 || ds[0] != (got{3, 7, "a/b"}) {
		t.Fatalf("decorations = %+v", ds)
	}
}

func TestBuild_CursorSuppressesInlineTag(t *testing.T) {
	// "#a/b" occupies [3, 7); the marker is at 3.
	for _, sel := range []decoration.Range{
		cursor(3),
		cursor(5),
		cursor(7),
		{From: 7, To: 8},
		{From: 0, To: 3},
	} {
		if n := Build(newView("hi #a/b x", sel)).Len(); n != 0 {
			t.Errorf("selection %+v: %d decorations, want 0", sel, n)
		}
	}
	// The guard around the tag body [4, 7) is [3, 8): a cursor at 8, past the
	// character after the tag, leaves the pill in place.
	if n := Build(newView("hi #a/b x", cursor(8))).Len(); n != 1 {
		t.Errorf("cursor at to+1: %d decorations, want 1", n)
	}
	if n := Build(newView("hi #a/b x", cursor(9))).Len(); n != 1 {
		t.Errorf("distant cursor suppressed the tag")
	}
	if n := Build(newView("hi #a/b x", cursor(1))).Len(); n != 1 {
		t.Errorf("cursor left of the marker suppressed the tag")
	}
}

func TestBuild_MultipleSelectionRanges(t *testing.T) {
	v := newView("#a #b #c", cursor(8), cursor(3))
	ds := decos(Build(v))
	if len(ds) != 1 || ds[0].tag != "a" {
		t.Errorf("decorations = %+v", ds)
	}
}

func TestBuild_FrontmatterTags(t *testing.T) {
	doc := "---\ntags: foo bar\n---\n"
	v := newView(doc, cursor(len(doc)))
	ds := decos(Build(v))
	start := strings.Index(doc, "foo")
	want := []got{{start, start + 3, "foo"}, {start + 4, start + 7, "bar"}}
	if len(ds) != 2 || ds[0] != want[0] || ds[1] != want[1] {
		t.Fatalf("decorations = %+v, want %+v", ds, want)
	}
}

func TestBuild_FrontmatterKeyCaseInsensitive(t *testing.T) {
	for _, key := range []string{"Tags", "TAG", "tag"} {
		doc := "---\n" + key + ": one\n---\n"
		if n := Build(newView(doc)).Len(); n != 1 {
			t.Errorf("key %q: %d decorations, want 1", key, n)
		}
	}
}

func TestBuild_FrontmatterOtherKeySkipped(t *testing.T) {
	doc := "---\nauthor: foo bar\n---\n"
	if n := Build(newView(doc)).Len(); n != 0 {
		t.Errorf("author value decorated: %d", n)
	}
}

func TestBuild_FrontmatterQuotedValueIgnoresComment(t *testing.T) {
	doc := "---\ntags: \"a\" # note\n---\n"
	ds := decos(Build(newView(doc)))
	start := strings.Index(doc, `"a"`)
	if len(ds) != 1 || ds[0] != (got{start, start + 3, `"a"`}) {
		t.Errorf("decorations = %+v", ds)
	}
}

func TestBuild_FrontmatterListItems(t *testing.T) {
	doc := "---\ntags:\n  - area/work\n  - home\nother:\n  - x\n---\n"
	ds := decos(Build(newView(doc)))
	if len(ds) != 2 || ds[0].tag != "area/work" || ds[1].tag != "home" {
		t.Errorf("decorations = %+v", ds)
	}
}

func TestBuild_FrontmatterSelectionSuppressesWholeValue(t *testing.T) {
	doc := "---\ntags: foo bar\n---\n"
	end := strings.Index(doc, "bar") + 3
	if n := Build(newView(doc, cursor(end))).Len(); n != 0 {
		t.Errorf("cursor at value end: %d decorations", n)
	}
}

func TestBuild_OrderedAcrossVisibleRanges(t *testing.T) {
	doc := "---\ntags: a b\n---\n#x text #y\nmore #z"
	v := newView(doc)
	v.visible = []decoration.Range{{From: 0, To: 20}, {From: 20, To: len(doc)}}
	ds := Build(v).All()
	if len(ds) != 5 {
		t.Fatalf("len = %d, want 5: %+v", len(ds), ds)
	}
	for i := 1; i < len(ds); i++ {
		if ds[i].From < ds[i-1].From {
			t.Errorf("decoration %d starts before its predecessor", i)
		}
	}
}

func TestBuild_OnlyVisibleRanges(t *testing.T) {
	doc := "#a\n#b\n#c"
	v := newView(doc)
	v.visible = []decoration.Range{{From: 3, To: 5}}
	ds := decos(Build(v))
	if len(ds) != 1 || ds[0].tag != "b" {
		t.Errorf("decorations = %+v", ds)
	}
	v.visible = nil
	if Build(v).Len() != 0 {
		t.Error("no visible ranges must give no decorations")
	}
}

func keyedTree(items int) (string, *syntax.Tree) {
	var sb strings.Builder
	toks := []syntax.Token{{Name: syntax.FrontmatterKey, From: 0, To: 4}}
	sb.WriteString("tags")
	for i := 0; i < items; i++ {
		sb.WriteByte(' ')
		from := sb.Len()
		sb.WriteString("t")
		toks = append(toks, syntax.Token{Name: syntax.FrontmatterContent, From: from, To: from + 1})
	}
	return sb.String(), syntax.NewTree(toks...)
}

func TestBuild_KeyLookbackBound(t *testing.T) {
	doc, tree := keyedTree(25)
	v := &testView{doc: doc, tree: tree, visible: []decoration.Range{{From: 0, To: len(doc)}}}

	if n := New(v).Decorations().Len(); n != DefaultKeyLookback {
		t.Errorf("default lookback: %d decorations, want %d", n, DefaultKeyLookback)
	}
	if n := New(v, WithKeyLookback(50)).Decorations().Len(); n != 25 {
		t.Errorf("lookback 50: %d decorations, want 25", n)
	}
}

func TestBuild_KeyNotFoundSkipsValue(t *testing.T) {
	doc := "tags other"
	tree := syntax.NewTree(
		syntax.Token{Name: syntax.FrontmatterContent, From: 0, To: 4},
		syntax.Token{Name: syntax.FrontmatterContent, From: 5, To: 10},
	)
	v := &testView{doc: doc, tree: tree, visible: []decoration.Range{{From: 0, To: len(doc)}}}
	// Neither value has a key; a value reading "tags" is not its own key.
	if ds := decos(Build(v)); len(ds) != 0 {
		t.Errorf("decorations = %+v", ds)
	}
}

func TestBuild_ListItemBeyondLookbackSkipped(t *testing.T) {
	// The k-th item sits 2k+1 siblings after the key, so only the first
	// nine are within the default lookback. The last item reads "tag" and
	// must not be taken for its own key.
	doc := "---\ntags:\n"
	for i := 0; i < 10; i++ {
		doc += "  - t" + string(rune('a'+i)) + "\n"
	}
	doc += "  - tag\n---\n"

	ds := decos(Build(newView(doc)))
	if len(ds) != 9 {
		t.Fatalf("decorations = %+v, want the 9 items within reach", ds)
	}
	for _, d := range ds {
		if d.tag == "tag" {
			t.Errorf("item past the lookback decorated: %+v", d)
		}
	}
}

func TestUpdate_ComposingRemapsWithoutRecompute(t *testing.T) {
	v := newView("x #a #b", cursor(0))
	e := New(v)
	if e.State() != Initialized || e.Decorations().Len() != 2 {
		t.Fatalf("initial: state=%s len=%d", e.State(), e.Decorations().Len())
	}
	before := e.Decorations().All()

	// Move the cursor onto a tag without telling the engine about a
	// selection change: a remap must not consult the selection.
	v.doc = "yy" + v.doc
	v.tree = syntax.Parse([]byte(v.doc))
	v.sel = []decoration.Range{cursor(4)}
	changed := e.Update(Update{
		View:         v,
		Changes:      decoration.NewChangeSet(decoration.Change{From: 0, To: 0, Insert: "yy"}),
		Composing:    true,
		SelectionSet: true,
	})
	if !changed || e.State() != Remapped {
		t.Fatalf("state = %s, changed = %v", e.State(), changed)
	}
	after := e.Decorations().All()
	if len(after) != len(before) {
		t.Fatalf("len %d -> %d", len(before), len(after))
	}
	for i := range after {
		if after[i].From != before[i].From+2 || after[i].To != before[i].To+2 || after[i].Widget != before[i].Widget {
			t.Errorf("decoration %d: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestUpdate_PointerDragRemaps(t *testing.T) {
	v := newView("#a text", cursor(7))
	e := New(v)
	e.Update(Update{View: v, PointerDown: true, SelectionSet: true})
	if e.State() != Remapped || e.Decorations().Len() != 1 {
		t.Errorf("state = %s len = %d", e.State(), e.Decorations().Len())
	}
}

func TestUpdate_SelectionChangeRecomputes(t *testing.T) {
	v := newView("#a text", cursor(7))
	e := New(v)
	v.sel = []decoration.Range{cursor(1)}
	if !e.Update(Update{View: v, SelectionSet: true}) {
		t.Fatal("selection change ignored")
	}
	if e.State() != Recomputed || e.Decorations().Len() != 0 {
		t.Errorf("state = %s len = %d", e.State(), e.Decorations().Len())
	}

	v.sel = []decoration.Range{cursor(7)}
	e.Update(Update{View: v, ViewportChanged: true})
	if e.Decorations().Len() != 1 {
		t.Errorf("viewport change did not rebuild")
	}
}

func TestUpdate_PureEditShifts(t *testing.T) {
	v := newView("x #a #b", cursor(0))
	e := New(v)
	before := e.Decorations().All()

	changed := e.Update(Update{
		View:    v,
		Changes: decoration.NewChangeSet(decoration.Change{From: 1, To: 1, Insert: "abc"}),
	})
	if !changed || e.State() != Remapped {
		t.Fatalf("state = %s, changed = %v", e.State(), changed)
	}
	after := e.Decorations().All()
	if len(after) != len(before) {
		t.Fatalf("len %d -> %d", len(before), len(after))
	}
	for i := range after {
		if after[i].From != before[i].From+3 || after[i].To != before[i].To+3 {
			t.Errorf("decoration %d: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestUpdate_OtherTransactionsIgnored(t *testing.T) {
	v := newView("#a text", cursor(7))
	e := New(v)
	before := e.Decorations()
	v.sel = []decoration.Range{cursor(1)}
	if e.Update(Update{View: v}) {
		t.Error("plain update reported a change")
	}
	if !e.Decorations().Eq(before) || e.State() != Initialized {
		t.Error("plain update touched decorations")
	}
}

func TestNew_NilTree(t *testing.T) {
	v := &testView{visible: []decoration.Range{{From: 0, To: 10}}}
	if New(v).Decorations().Len() != 0 {
		t.Error("empty tree must give no decorations")
	}
}
