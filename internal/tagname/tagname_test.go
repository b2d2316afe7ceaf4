package tagname

import "testing"

func TestBasename_NoSlash(t *testing.T) {
	for _, s := range []string{"", "go", "#go", "kebab-case", "日本"} {
		if got := Basename(s); got != s {
			t.Errorf("Basename(%q) = %q, want unchanged", s, got)
		}
	}
}

func TestBasename_Nested(t *testing.T) {
	if got := Basename("a/b/c"); got != "c" {
		t.Errorf("Basename(a/b/c) = %q, want c", got)
	}
	if got := Basename("#project/x"); got != "x" {
		t.Errorf("Basename(#project/x) = %q, want x", got)
	}
}

func TestBasename_TrailingSlash(t *testing.T) {
	if got := Basename("a/"); got != "" {
		t.Errorf("Basename(a/) = %q, want empty", got)
	}
}

func TestLabel_StripsMarkers(t *testing.T) {
	cases := map[string]string{
		"#go":        "go",
		"#area/work": "work",
		"area/#x":    "x",
		"plain":      "plain",
	}
	for in, want := range cases {
		if got := Label(in); got != want {
			t.Errorf("Label(%q) = %q, want %q", in, got, want)
		}
	}
}
