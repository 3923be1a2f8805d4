package formatter

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/unpack/internal/outline"
)

// Palette holds the colors used for terminal output. Values are anything
// lipgloss.Color accepts: ANSI numbers ("81") or hex ("#ff8700").
type Palette struct {
	Key       string `yaml:"key" toml:"key"`
	Renamed   string `yaml:"renamed" toml:"renamed"`
	Punct     string `yaml:"punct" toml:"punct"`
	String    string `yaml:"string" toml:"string"`
	Number    string `yaml:"number" toml:"number"`
	Boolean   string `yaml:"boolean" toml:"boolean"`
	Null      string `yaml:"null" toml:"null"`
	Highlight string `yaml:"highlight" toml:"highlight"`
	Error     string `yaml:"error" toml:"error"`
}

// DefaultPalette mirrors the browser stylesheet.
func DefaultPalette() Palette {
	return Palette{
		Key:       "81",
		Renamed:   "213",
		Punct:     "246",
		String:    "114",
		Number:    "215",
		Boolean:   "141",
		Null:      "244",
		Highlight: "238",
		Error:     "196",
	}
}

// Styles renders outline segments for a terminal.
type Styles struct {
	Key       lipgloss.Style
	Renamed   lipgloss.Style
	Punct     lipgloss.Style
	Values    map[string]lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	NoColor   bool
}

// NewStyles builds styles from p. With noColor set every style is plain
// except Highlight, which falls back to reverse video so it stays visible.
func NewStyles(p Palette, noColor bool) Styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return Styles{
			Key:       plain,
			Renamed:   plain,
			Punct:     plain,
			Values:    map[string]lipgloss.Style{},
			Highlight: plain.Reverse(true),
			Error:     plain,
			NoColor:   true,
		}
	}
	fg := func(c string) lipgloss.Style {
		if c == "" {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	highlight := lipgloss.NewStyle().Bold(true)
	if p.Highlight != "" {
		highlight = highlight.Background(lipgloss.Color(p.Highlight))
	}
	return Styles{
		Key:     fg(p.Key),
		Renamed: fg(p.Renamed).Italic(true),
		Punct:   fg(p.Punct),
		Values: map[string]lipgloss.Style{
			"string":  fg(p.String),
			"number":  fg(p.Number),
			"boolean": fg(p.Boolean),
			"null":    fg(p.Null),
		},
		Highlight: highlight,
		Error:     fg(p.Error).Bold(true),
	}
}

// Segment renders one segment.
func (s Styles) Segment(seg outline.Segment) string {
	if s.NoColor {
		return seg.Text
	}
	switch seg.Kind {
	case outline.Key:
		return s.Key.Render(seg.Text)
	case outline.Renamed:
		return s.Renamed.Render(seg.Text)
	case outline.Value:
		if st, ok := s.Values[seg.Type]; ok {
			return st.Render(seg.Text)
		}
		return seg.Text
	default:
		return s.Punct.Render(seg.Text)
	}
}

// Line renders an indented line; highlighted lines get the Highlight style
// over their plain text.
func (s Styles) Line(l Line, indent string, highlighted bool) string {
	prefix := strings.Repeat(indent, l.Depth)
	if highlighted {
		return prefix + s.Highlight.Render(l.Text())
	}
	var b strings.Builder
	b.WriteString(prefix)
	for _, seg := range l.Segments {
		b.WriteString(s.Segment(seg))
	}
	return b.String()
}

// Render renders all lines, one per row, each ending in a newline.
func (s Styles) Render(lines []Line, indent string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(s.Line(l, indent, false))
		b.WriteByte('\n')
	}
	return b.String()
}
