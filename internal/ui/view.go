package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/unpack/internal/dom"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

// View renders the panes, the editor when open, and the status line.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	inner := max(m.width/2-3, 8)
	h := m.bodyHeight()
	left := m.renderPane(dom.Pretty, inner, h)
	right := m.renderPane(dom.Schema, inner, h)

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, left, right)}
	if m.editing {
		rows = append(rows, m.renderEditor())
	}
	rows = append(rows, m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderPane(side dom.Side, inner, height int) string {
	p := &m.panes[side]
	focused := side == m.active && !m.editing

	title := p.title
	if focused {
		title = m.styles.Key.Bold(true).Render(title)
	}
	out := make([]string, 0, height+1)
	out = append(out, pad(" "+title, inner+1))

	for i, l := range p.visible(height) {
		row := p.offset + i
		gutter := " "
		if focused && row == p.cursor {
			gutter = "›"
		}
		hl := m.hovered != pathid.None && l.ID == m.hovered
		text := m.styles.Line(truncate(l, p.indent, inner), p.indent, hl)
		out = append(out, pad(gutter+text, inner+1))
	}
	for len(out) < height+1 {
		out = append(out, strings.Repeat(" ", inner+1))
	}

	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	if !m.styles.NoColor {
		if focused {
			border = border.BorderForeground(m.styles.Key.GetForeground())
		} else {
			border = border.BorderForeground(m.styles.Punct.GetForeground())
		}
	}
	return border.Render(strings.Join(out, "\n"))
}

func (m *Model) renderEditor() string {
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	if !m.styles.NoColor {
		if m.err != nil {
			border = border.BorderForeground(m.styles.Error.GetForeground())
		} else {
			border = border.BorderForeground(m.styles.Key.GetForeground())
		}
	}
	return border.Render(m.editor.View())
}

func (m *Model) renderStatus() string {
	if m.err != nil {
		return m.styles.Error.Render(truncateText(m.err.Error(), m.width))
	}
	help := HelpLine
	if m.editing {
		help = EditorHelpLine
	}
	if cls := m.hoveredClass(); cls != "" {
		help = cls + " • " + help
	}
	return truncateText(help, m.width)
}

// pad right-fills s with spaces to width cells.
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
