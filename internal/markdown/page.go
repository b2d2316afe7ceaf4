package markdown

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/starford/basetag/internal/dom"
)

//go:embed templates/page.html
var pageSource string

var pageTmpl = template.Must(template.New("page").Parse(pageSource))

// Page is the reading-view shell of one note. Its property panel starts
// empty; the host fills it after the page is loaded.
type Page struct {
	Title string
	Path  string
	Body  template.HTML
	// Events is the URL of an event stream the page reloads from when Path
	// is re-rendered. Empty disables live reload.
	Events string
}

// Write renders the page.
func (p Page) Write(w io.Writer) error {
	return pageTmpl.Execute(w, p)
}

// RenderBody converts Markdown to HTML. Inline tags become host tag anchors.
func RenderBody(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Property is one frontmatter entry as shown in the property panel.
type Property struct {
	Key    string
	Values []string
	// List is set for values rendered as pills.
	List bool
}

// PanelKey is the data-property-key the panel uses for key.
func (p Property) PanelKey() string {
	k := strings.ToLower(p.Key)
	if k == "tag" {
		return "tags"
	}
	return k
}

// Properties lists the top-level frontmatter entries of doc in source order.
// Tag values given as a single string are split on whitespace. Nested
// mappings are skipped.
func Properties(doc *yaml.Node) []Property {
	if doc == nil {
		return nil
	}
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil
	}

	var out []Property
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		p := Property{Key: key}
		tags := p.PanelKey() == "tags"
		switch val.Kind {
		case yaml.ScalarNode:
			if tags {
				p.Values, p.List = strings.Fields(val.Value), true
			} else if val.Value != "" {
				p.Values = []string{val.Value}
			}
		case yaml.SequenceNode:
			p.List = true
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode && item.Value != "" {
					p.Values = append(p.Values, item.Value)
				}
			}
		default:
			continue
		}
		out = append(out, p)
	}
	return out
}

// PropertyNodes builds detached property-panel rows for props.
func PropertyNodes(props []Property) []*html.Node {
	out := make([]*html.Node, 0, len(props))
	for _, p := range props {
		row := dom.NewElement("div",
			html.Attribute{Key: "class", Val: "metadata-property"},
			html.Attribute{Key: "data-property-key", Val: p.PanelKey()},
		)
		key := dom.NewElement("div", html.Attribute{Key: "class", Val: "metadata-property-key"})
		key.AppendChild(dom.NewText(p.Key))
		row.AppendChild(key)

		value := dom.NewElement("div", html.Attribute{Key: "class", Val: "metadata-property-value"})
		if p.List {
			pills := dom.NewElement("div", html.Attribute{Key: "class", Val: "multi-select-container"})
			for _, v := range p.Values {
				pill := dom.NewElement("div", html.Attribute{Key: "class", Val: "multi-select-pill"})
				content := dom.NewElement("div", html.Attribute{Key: "class", Val: "multi-select-pill-content"})
				content.AppendChild(dom.NewText(v))
				pill.AppendChild(content)
				pills.AppendChild(pill)
			}
			value.AppendChild(pills)
		} else {
			value.AppendChild(dom.NewText(strings.Join(p.Values, "")))
		}
		row.AppendChild(value)
		out = append(out, row)
	}
	return out
}
