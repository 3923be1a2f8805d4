// Package formatter lays outlines out as indented lines for terminals and
// plain-text output.
package formatter

import (
	"strings"

	"github.com/oakwood-commons/unpack/internal/outline"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

// DefaultIndent is the indentation used by the plain-text schema syntax.
const DefaultIndent = "    "

// Line is one display line. ID is the path of the node the line belongs to,
// pathid.None for the document's own braces. The closing line of a
// container carries the container's ID.
type Line struct {
	ID       pathid.ID
	Class    string
	Depth    int
	Segments []outline.Segment
}

// Text returns the line's text without indentation.
func (l Line) Text() string { return outline.SegmentsText(l.Segments) }

// Lines lays out t one node per line. A non-empty container spans an
// opening line, its children one level deeper, and a closing line.
func Lines(t *outline.Tree) []Line {
	var lines []Line
	base := 0
	if len(t.Open) > 0 {
		lines = append(lines, Line{ID: pathid.None, Segments: t.Open})
		base = 1
	}
	for _, n := range t.Nodes {
		lines = appendNode(lines, n, base)
	}
	if len(t.Close) > 0 {
		lines = append(lines, Line{ID: pathid.None, Segments: t.Close})
	}
	return lines
}

func appendNode(lines []Line, n *outline.Node, depth int) []Line {
	if !n.Container || len(n.Children) == 0 {
		segs := make([]outline.Segment, 0, len(n.Open)+len(n.Close))
		segs = append(segs, n.Open...)
		segs = append(segs, n.Close...)
		return append(lines, Line{ID: n.ID, Class: n.Class, Depth: depth, Segments: segs})
	}
	lines = append(lines, Line{ID: n.ID, Class: n.Class, Depth: depth, Segments: n.Open})
	for _, c := range n.Children {
		lines = appendNode(lines, c, depth+1)
	}
	return append(lines, Line{ID: n.ID, Class: n.Class, Depth: depth, Segments: n.Close})
}

// Text joins lines with indent repeated per depth. The result ends with a
// newline unless lines is empty.
func Text(lines []Line, indent string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.Repeat(indent, l.Depth))
		b.WriteString(l.Text())
		b.WriteByte('\n')
	}
	return b.String()
}

// SchemaText renders a schema outline in the plain-text schema syntax:
//
//	a: List(
//	    Int64
//	)
//	b: Struct(
//	    a=b_a: Boolean
//	)
func SchemaText(t *outline.Tree) string {
	return Text(Lines(t), DefaultIndent)
}

// PrettyText renders a pretty outline as indented JSON.
func PrettyText(t *outline.Tree) string {
	return Text(Lines(t), "  ")
}
