// Package editor is a terminal Markdown editor that shows tags as pills
// while the cursor is elsewhere.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/basetag/internal/livepreview"
	"github.com/starford/basetag/internal/plugin"
)

// wheelLines is how far one wheel notch scrolls.
const wheelLines = 3

// SaveFunc persists the buffer.
type SaveFunc func(text string) error

// Option configures a Model.
type Option func(*Model)

// WithKeyMap replaces the default bindings.
func WithKeyMap(km KeyMap) Option {
	return func(m *Model) { m.keys = km }
}

// WithStyles replaces the default styles.
func WithStyles(st Styles) Option {
	return func(m *Model) { m.styles = st }
}

// WithSave sets the function called by the save binding.
func WithSave(fn SaveFunc) Option {
	return func(m *Model) { m.save = fn }
}

// Model is the Bubble Tea model of the editor.
type Model struct {
	name   string
	doc    *Document
	engine *livepreview.Engine
	keys   KeyMap
	styles Styles
	save   SaveFunc

	status   string
	dragging bool
}

// New creates an editor for text. name is shown in the status line.
func New(p *plugin.Plugin, name, text string, opts ...Option) Model {
	m := Model{
		name:   name,
		doc:    NewDocument(text),
		keys:   DefaultKeyMap(),
		styles: DefaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.engine = p.EditorExtension(m.doc)
	return m
}

// Document returns the edited buffer.
func (m Model) Document() *Document { return m.doc }

// Engine returns the decoration engine of the buffer.
func (m Model) Engine() *livepreview.Engine { return m.engine }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.apply(m.doc.Resize(msg.Height - 1))
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.doc
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Save):
		m.status = m.write()
	case key.Matches(msg, m.keys.Left):
		m.apply(d.Left(false))
	case key.Matches(msg, m.keys.Right):
		m.apply(d.Right(false))
	case key.Matches(msg, m.keys.Up):
		m.apply(d.Vertical(-1, false))
	case key.Matches(msg, m.keys.Down):
		m.apply(d.Vertical(1, false))
	case key.Matches(msg, m.keys.ShiftLeft):
		m.apply(d.Left(true))
	case key.Matches(msg, m.keys.ShiftRight):
		m.apply(d.Right(true))
	case key.Matches(msg, m.keys.ShiftUp):
		m.apply(d.Vertical(-1, true))
	case key.Matches(msg, m.keys.ShiftDown):
		m.apply(d.Vertical(1, true))
	case key.Matches(msg, m.keys.Home):
		m.apply(d.Home(false))
	case key.Matches(msg, m.keys.End):
		m.apply(d.End(false))
	case key.Matches(msg, m.keys.PageUp):
		m.apply(d.Scroll(-max(d.Height(), 1)))
	case key.Matches(msg, m.keys.PageDown):
		m.apply(d.Scroll(max(d.Height(), 1)))
	case key.Matches(msg, m.keys.Backspace):
		m.apply(d.Backspace())
	case key.Matches(msg, m.keys.Delete):
		m.apply(d.Delete())
	case key.Matches(msg, m.keys.Enter):
		m.apply(d.Insert("\n"))
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		// Bracketed paste arrives as one insertion and is treated like
		// composed input.
		if msg.Paste {
			m.apply(d.Compose(string(msg.Runes)))
		} else {
			m.apply(d.Insert(string(msg.Runes)))
		}
	}
	return m, nil
}

func (m *Model) updateMouse(msg tea.MouseMsg) {
	switch msg.Button { //nolint:exhaustive
	case tea.MouseButtonWheelUp:
		m.apply(m.doc.Scroll(-wheelLines))
		return
	case tea.MouseButtonWheelDown:
		m.apply(m.doc.Scroll(wheelLines))
		return
	}

	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.dragging = true
		m.apply(m.doc.Press(m.posAt(msg.X, msg.Y), msg.Shift))
	case tea.MouseActionMotion:
		if m.dragging {
			m.apply(m.doc.DragTo(m.posAt(msg.X, msg.Y)))
		}
	case tea.MouseActionRelease:
		if m.dragging {
			m.dragging = false
			m.apply(m.doc.Release())
		}
	}
}

// posAt maps a screen cell to a buffer offset. Columns count raw runes.
func (m Model) posAt(x, y int) int {
	return m.doc.PosAt(m.doc.Top()+y, x)
}

func (m *Model) apply(u livepreview.Update) {
	m.engine.Update(u)
}

func (m Model) write() string {
	if m.save == nil {
		return "read-only"
	}
	if err := m.save(m.doc.Text()); err != nil {
		return "save failed: " + err.Error()
	}
	return "saved"
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(Render(m.doc, m.engine.Decorations(), m.styles))
	sb.WriteByte('\n')

	line := m.doc.LineOf(m.doc.Cursor())
	from, _ := m.doc.Line(line)
	col := len([]rune(m.doc.Text()[from:m.doc.Cursor()]))
	status := fmt.Sprintf("%s  %d:%d  %s", m.name, line+1, col+1, m.engine.State())
	if m.status != "" {
		status += "  " + m.status
	}
	sb.WriteString(m.styles.Status.Render(status))

	var help []string
	for _, b := range m.keys.ShortHelp() {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}
	sb.WriteString("  " + m.styles.Help.Render(strings.Join(help, " · ")))
	return sb.String()
}

// Frame renders text once with the cursor at offset cursor, or without a
// cursor when cursor is negative. height limits the lines drawn; 0 draws
// all of them.
func Frame(p *plugin.Plugin, text string, cursor, height int, st Styles) string {
	doc := NewDocument(text)
	doc.Resize(height)
	if cursor < 0 {
		doc.Blur()
	} else {
		doc.SetCursor(cursor, false)
	}
	return Render(doc, p.EditorExtension(doc).Decorations(), st)
}
