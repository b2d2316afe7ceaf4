// Package noteservice renders vault notes into reading-view pages with their
// tags shown as pills, and summarizes the tags of each note.
package noteservice

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/starford/basetag/internal/apperr"
	"github.com/starford/basetag/internal/checksum"
	"github.com/starford/basetag/internal/dom"
	"github.com/starford/basetag/internal/markdown"
	"github.com/starford/basetag/internal/models"
	"github.com/starford/basetag/internal/parser"
	"github.com/starford/basetag/internal/plugin"
	"github.com/starford/basetag/internal/postprocess"
	"github.com/starford/basetag/internal/storage"
	"github.com/starford/basetag/internal/tagname"
)

// Option configures a Service.
type Option func(*Service)

// WithEventsURL makes rendered pages reload from the event stream at url.
func WithEventsURL(url string) Option {
	return func(s *Service) { s.events = url }
}

// Service coordinates storage and the tag passes.
type Service struct {
	store  storage.Provider
	plugin *plugin.Plugin
	events string

	// mu serializes the reading-view pipeline: the plugin keeps the
	// observers of the note shown last.
	mu sync.Mutex
}

// NewService creates a new note service.
func NewService(store storage.Provider, p *plugin.Plugin, opts ...Option) *Service {
	s := &Service{store: store, plugin: p}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plugin returns the controller the service renders with.
func (s *Service) Plugin() *plugin.Plugin { return s.plugin }

// Source returns the raw Markdown of a note.
func (s *Service) Source(_ context.Context, notePath string) ([]byte, error) {
	if err := checkPath(notePath); err != nil {
		return nil, err
	}
	return s.store.Read(notePath)
}

// Save writes the raw Markdown of a note.
func (s *Service) Save(_ context.Context, notePath string, content []byte) error {
	if err := checkPath(notePath); err != nil {
		return err
	}
	return s.store.Write(notePath, content)
}

// RenderNote renders a note as a reading-view page. Tag anchors in the body
// are replaced by pills, then the page is shown: the property panel is
// watched, filled from the frontmatter, and its tag pills rewritten.
func (s *Service) RenderNote(ctx context.Context, notePath string) (*models.RenderedNote, error) {
	data, err := s.Source(ctx, notePath)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("noteservice: parse %s: %w", notePath, err)
	}
	body, err := markdown.RenderBody([]byte(res.Body))
	if err != nil {
		return nil, fmt.Errorf("noteservice: render %s: %w", notePath, err)
	}

	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(notePath), path.Ext(notePath))
	}
	var buf bytes.Buffer
	page := markdown.Page{Title: title, Path: notePath, Body: body, Events: s.events}
	if err := page.Write(&buf); err != nil {
		return nil, fmt.Errorf("noteservice: page %s: %w", notePath, err)
	}
	doc, err := dom.Parse(&buf)
	if err != nil {
		return nil, fmt.Errorf("noteservice: parse page %s: %w", notePath, err)
	}

	s.mu.Lock()
	s.plugin.PostProcess(doc, doc.Root())
	s.plugin.OnActiveLeafChange(doc)
	if panel := dom.QueryAll(doc.Root(), dom.CompileValid(postprocess.PropertyTagContainer)); len(panel) > 0 {
		for _, n := range markdown.PropertyNodes(markdown.Properties(res.Node)) {
			doc.AppendChild(panel[0], n)
		}
	}
	doc.Flush()
	out := doc.String()
	s.mu.Unlock()

	return &models.RenderedNote{
		Path:     notePath,
		Title:    title,
		HTML:     out,
		Checksum: checksum.Sum([]byte(out)),
	}, nil
}

// NoteTags returns the tags of a note with the labels their pills show.
func (s *Service) NoteTags(ctx context.Context, notePath string) (*models.NoteTags, error) {
	data, err := s.Source(ctx, notePath)
	if err != nil {
		return nil, err
	}
	return summarize(notePath, data)
}

// ListNotes returns the tag summary of every note in the vault.
func (s *Service) ListNotes(_ context.Context) ([]models.NoteTags, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	out := make([]models.NoteTags, 0, len(metas))
	for _, m := range metas {
		data, err := s.store.Read(m.Path)
		if err != nil {
			return nil, err
		}
		nt, err := summarize(m.Path, data)
		if err != nil {
			return nil, err
		}
		out = append(out, *nt)
	}
	return out, nil
}

func summarize(notePath string, data []byte) (*models.NoteTags, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("noteservice: parse %s: %w", notePath, err)
	}
	tags := make([]models.TagLabel, 0, len(res.Tags))
	for _, t := range res.Tags {
		tags = append(tags, models.TagLabel{Tag: t, Label: tagname.Label(t)})
	}
	return &models.NoteTags{Path: notePath, Title: res.Title, Tags: tags}, nil
}

func checkPath(notePath string) error {
	if notePath == "" {
		return apperr.ErrNotFound
	}
	if !storage.IsMarkdown(notePath) {
		return fmt.Errorf("%s: %w", notePath, apperr.ErrNotMarkdown)
	}
	return nil
}
