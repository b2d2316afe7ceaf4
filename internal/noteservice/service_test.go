package noteservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/basetag/internal/apperr"
	"github.com/starford/basetag/internal/plugin"
	"github.com/starford/basetag/internal/settings"
	"github.com/starford/basetag/internal/testutil"
)

const note = `---
title: Weekly
tags:
  - area/work
  - home
author: me/you
---
# Weekly

Planning #project/alpha and ` + "`#not/a/tag`" + `.
`

func newService(t *testing.T, s settings.Settings, files map[string]string) (*Service, *plugin.Plugin) {
	t.Helper()
	dir, store := testutil.TestVault(t)
	testutil.WriteNotes(t, dir, files)
	p := plugin.New(settings.NewMemory(s), nil)
	return NewService(store, p, WithEventsURL("/api/events")), p
}

func TestRenderNote(t *testing.T) {
	svc, p := newService(t, settings.Default(), map[string]string{"weekly.md": note})
	got, err := svc.RenderNote(context.Background(), "weekly.md")
	if err != nil {
		t.Fatalf("RenderNote: %v", err)
	}
	html := got.HTML

	for _, want := range []string{
		`<a class="tag basetag" target="_blank" rel="noopener" href="##project/alpha">alpha</a>`,
		`<div class="multi-select-pill-content basetag" data-tag="area/work">work</div>`,
		`<div class="multi-select-pill-content basetag" data-tag="home">home</div>`,
		`<code>#not/a/tag</code>`,
		`<title>Weekly</title>`,
		`EventSource`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %s", want)
		}
	}
	if strings.Contains(html, `data-tag="me/you"`) {
		t.Error("non-tag property rewritten")
	}
	if got.Checksum == "" || got.Title != "Weekly" {
		t.Errorf("rendered = %+v", got)
	}
	if p.ObserverCount() != 1 {
		t.Errorf("observers = %d, want 1", p.ObserverCount())
	}
}

func TestRenderNote_RepeatedNavigationKeepsOneObserverSet(t *testing.T) {
	svc, p := newService(t, settings.Settings{CustomTagContainerSelectors: []string{".markdown-preview-section"}},
		map[string]string{"a.md": "#x", "b.md": "#y"})
	for i := 0; i < 3; i++ {
		for _, name := range []string{"a.md", "b.md"} {
			if _, err := svc.RenderNote(context.Background(), name); err != nil {
				t.Fatal(err)
			}
			if p.ObserverCount() != 2 {
				t.Fatalf("observers = %d after %s", p.ObserverCount(), name)
			}
		}
	}
}

func TestRenderNote_TitleFallsBackToFileName(t *testing.T) {
	svc, _ := newService(t, settings.Default(), map[string]string{"dir/plain.md": "text only"})
	got, err := svc.RenderNote(context.Background(), "dir/plain.md")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "plain" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestRenderNote_Errors(t *testing.T) {
	svc, _ := newService(t, settings.Default(), map[string]string{"a.md": "x"})
	if _, err := svc.RenderNote(context.Background(), "missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing: %v", err)
	}
	if _, err := svc.RenderNote(context.Background(), "image.png"); !errors.Is(err, apperr.ErrNotMarkdown) {
		t.Errorf("not markdown: %v", err)
	}
}

func TestNoteTags(t *testing.T) {
	svc, _ := newService(t, settings.Default(), map[string]string{"weekly.md": note})
	got, err := svc.NoteTags(context.Background(), "weekly.md")
	if err != nil {
		t.Fatal(err)
	}
	var pairs []string
	for _, tl := range got.Tags {
		pairs = append(pairs, tl.Tag+"="+tl.Label)
	}
	want := "area/work=work,home=home,project/alpha=alpha"
	if strings.Join(pairs, ",") != want {
		t.Errorf("tags = %v, want %s", pairs, want)
	}
}

func TestListNotes(t *testing.T) {
	svc, _ := newService(t, settings.Default(), map[string]string{"a.md": "#one", "sub/b.md": "#two/three", "c.txt": "#no"})
	got, err := svc.ListNotes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Path != "sub/b.md" || got[1].Tags[0].Label != "three" {
		t.Errorf("notes = %+v", got)
	}
}

func TestSaveAndSource(t *testing.T) {
	svc, _ := newService(t, settings.Default(), nil)
	ctx := context.Background()
	if err := svc.Save(ctx, "n.md", []byte("#t")); err != nil {
		t.Fatal(err)
	}
	data, err := svc.Source(ctx, "n.md")
	if err != nil || string(data) != "#t" {
		t.Errorf("source = %q, %v", data, err)
	}
	if err := svc.Save(ctx, "n.txt", nil); !errors.Is(err, apperr.ErrNotMarkdown) {
		t.Errorf("save txt: %v", err)
	}
}
