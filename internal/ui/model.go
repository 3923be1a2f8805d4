// Package ui is the interactive terminal front end: the pretty and
// rough-schema views side by side, cross-highlighted on the cursor line,
// with an optional JSON editor that re-renders on every change.
package ui

import (
	"fmt"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/unpack/internal/dom"
	"github.com/oakwood-commons/unpack/internal/formatter"
	"github.com/oakwood-commons/unpack/internal/pathid"
	"github.com/oakwood-commons/unpack/pkg/core"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	editorRows    = 8
	prettyIndent  = "  "
)

// Options configures a Model.
type Options struct {
	Engine     *core.Engine
	Styles     formatter.Styles
	Expression string
	Width      int
	Height     int
}

// Model is the bubbletea model of the two-pane viewer.
type Model struct {
	engine *core.Engine
	styles formatter.Styles
	expr   string

	input  string
	result *core.Result
	err    error

	panes   [2]pane
	active  dom.Side
	hovered pathid.ID

	editor  textarea.Model
	editing bool

	width  int
	height int
}

// New renders input and returns a model showing it. It fails when input
// does not parse, since there is no earlier render to fall back on.
func New(input string, opts Options) (*Model, error) {
	engine := opts.Engine
	if engine == nil {
		var err error
		if engine, err = core.New(); err != nil {
			return nil, err
		}
	}
	res, err := engine.UnpackExpression(input, opts.Expression)
	if err != nil {
		return nil, err
	}

	ed := textarea.New()
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.MaxHeight = 0
	ed.Placeholder = "paste/edit your JSON content here"

	styles := opts.Styles
	if styles.Values == nil && !styles.NoColor {
		styles = formatter.NewStyles(formatter.DefaultPalette(), false)
	}

	m := &Model{
		engine:  engine,
		styles:  styles,
		expr:    opts.Expression,
		input:   input,
		editor:  ed,
		hovered: pathid.None,
		width:   opts.Width,
		height:  opts.Height,
		panes: [2]pane{
			newPane("parsed", prettyIndent),
			newPane("rough schema", formatter.DefaultIndent),
		},
	}
	if m.width <= 0 {
		m.width = defaultWidth
	}
	if m.height <= 0 {
		m.height = defaultHeight
	}
	m.apply(res)
	m.resize()
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.sync()
		return m, nil

	case tea.KeyPressMsg:
		if m.editing {
			return m.updateEditor(msg)
		}
		return m, m.handleKey(msg.String())

	case tea.PasteMsg:
		if m.editing {
			return m.updateEditor(msg)
		}
	}
	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	p := &m.panes[m.active]
	h := m.bodyHeight()
	switch ActionFor(key) {
	case ActionUp:
		p.move(-1, h)
	case ActionDown:
		p.move(1, h)
	case ActionPageUp:
		p.move(-h, h)
	case ActionPageDown:
		p.move(h, h)
	case ActionTop:
		p.top(h)
	case ActionBottom:
		p.bottom(h)
	case ActionSwitch:
		prev := m.hovered
		m.active = m.active.Other()
		next := &m.panes[m.active]
		if row := next.first(prev); prev != pathid.None && row >= 0 {
			next.cursor = row
			next.reveal(row, h)
		}
	case ActionEdit:
		return m.openEditor()
	case ActionQuit:
		return tea.Quit
	default:
		return nil
	}
	m.sync()
	return nil
}

func (m *Model) openEditor() tea.Cmd {
	m.editing = true
	m.editor.SetValue(m.input)
	m.resize()
	m.sync()
	return m.editor.Focus()
}

func (m *Model) closeEditor() {
	m.editing = false
	m.editor.Blur()
	m.resize()
	m.sync()
}

func (m *Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch k.String() {
		case "esc":
			m.closeEditor()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if v := m.editor.Value(); v != m.input {
		m.SetInput(v)
	}
	return m, cmd
}

// SetInput re-renders from text. When text does not parse the error is
// kept for display and both panes keep their last good render.
func (m *Model) SetInput(text string) {
	m.input = text
	res, err := m.engine.UnpackExpression(text, m.expr)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.apply(res)
	m.sync()
}

func (m *Model) apply(res *core.Result) {
	m.result = res
	m.panes[dom.Pretty].setLines(formatter.Lines(res.Pretty))
	m.panes[dom.Schema].setLines(formatter.Lines(res.Schema))
	m.sync()
}

// sync makes the cursor line of the active pane the hovered path and
// scrolls the other pane to the path's first line.
func (m *Model) sync() {
	m.hovered = m.panes[m.active].current()
	if m.hovered == pathid.None {
		return
	}
	other := &m.panes[m.active.Other()]
	if row := other.first(m.hovered); row >= 0 {
		other.reveal(row, m.bodyHeight())
	}
}

func (m *Model) resize() {
	w := max(m.width-2, 10)
	m.editor.SetWidth(w)
	m.editor.SetHeight(editorRows)
	h := m.bodyHeight()
	for i := range m.panes {
		m.panes[i].reveal(m.panes[i].cursor, h)
	}
}

// bodyHeight is the number of content rows per pane: the window minus the
// status line, the pane borders and title, and the editor when open.
func (m *Model) bodyHeight() int {
	h := m.height - 1 - 3
	if m.editing {
		h -= editorRows + 2
	}
	return max(h, 1)
}

// Hovered returns the path under the cursor of the active pane.
func (m *Model) Hovered() pathid.ID { return m.hovered }

// Active returns the pane with the cursor.
func (m *Model) Active() dom.Side { return m.active }

// Err returns the parse error of the current input, if any.
func (m *Model) Err() error { return m.err }

// Input returns the current input text.
func (m *Model) Input() string { return m.input }

// Editing reports whether the editor is open.
func (m *Model) Editing() bool { return m.editing }

// Result returns the last successful render.
func (m *Model) Result() *core.Result { return m.result }

func (m *Model) hoveredClass() string {
	if m.result == nil || m.hovered == pathid.None {
		return ""
	}
	if p, ok := m.result.Registry.Path(m.hovered); ok {
		return p.Class()
	}
	return fmt.Sprintf("#%d", m.hovered)
}
