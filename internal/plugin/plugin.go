// Package plugin wires the tag passes to host lifecycle events.
//
// A Plugin is driven by one host: it hands out decoration engines for editor
// views, post-processes rendered fragments, and keeps property panels
// rewritten across navigation. It is not safe for concurrent use.
package plugin

import (
	"log/slog"

	"golang.org/x/net/html"

	"github.com/starford/basetag/internal/dom"
	"github.com/starford/basetag/internal/livepreview"
	"github.com/starford/basetag/internal/postprocess"
	"github.com/starford/basetag/internal/settings"
)

// Plugin is the top-level controller.
type Plugin struct {
	settings  *settings.Store
	log       *slog.Logger
	engine    []livepreview.Option
	observers []dom.Unsubscribe
}

// New creates a controller reading its selectors from store.
func New(store *settings.Store, logger *slog.Logger, opts ...livepreview.Option) *Plugin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plugin{settings: store, log: logger, engine: opts}
}

// Settings returns the store shared with the passes.
func (p *Plugin) Settings() *settings.Store { return p.settings }

// EditorExtension creates the decoration engine for a new editor view.
func (p *Plugin) EditorExtension(view livepreview.View) *livepreview.Engine {
	return livepreview.New(view, p.engine...)
}

// PostProcess rewrites the tag anchors of a rendered reading-view fragment.
func (p *Plugin) PostProcess(doc *dom.Document, fragment *html.Node) {
	postprocess.RewriteTags(doc, fragment)
}

// UpdateProperties runs the property-panel pass with the custom selectors.
func (p *Plugin) UpdateProperties(doc *dom.Document) {
	postprocess.UpdatePropertyTags(doc, p.settings.Get().CustomTagSelectors...)
}

// OnActiveLeafChange handles navigation to another note shown in doc. Every
// observer from earlier navigations is cancelled before the property
// containers of doc are observed again, then the panel is updated once.
func (p *Plugin) OnActiveLeafChange(doc *dom.Document) {
	p.cancelAll()

	s := p.settings.Get()
	containers := append([]string{postprocess.PropertyTagContainer}, s.CustomTagContainerSelectors...)
	extra := s.CustomTagSelectors

	for _, c := range dom.QueryAll(doc.Root(), dom.CompileValid(containers...)) {
		stop := doc.Observe(c, func([]dom.MutationRecord) {
			postprocess.UpdatePropertyTags(doc, extra...)
		}, dom.ObserveOptions{Subtree: true, ChildList: true})
		p.observers = append(p.observers, stop)
	}
	p.log.Debug("plugin: observers registered", slog.Int("count", len(p.observers)))

	postprocess.UpdatePropertyTags(doc, extra...)
}

// ObserverCount returns the number of live observations held.
func (p *Plugin) ObserverCount() int { return len(p.observers) }

// Unload cancels all observations.
func (p *Plugin) Unload() {
	p.cancelAll()
	p.log.Debug("plugin: unloaded")
}

func (p *Plugin) cancelAll() {
	for _, stop := range p.observers {
		stop()
	}
	p.observers = p.observers[:0]
}
