// Package outline is the renderer-neutral form shared by the pretty and the
// schema views: a tree of labeled nodes, each carrying the path ID of the
// structural position it renders and the text segments around its children.
package outline

import (
	"strings"

	"github.com/oakwood-commons/unpack/internal/pathid"
)

// SegmentKind tells renderers how to present a segment.
type SegmentKind int

const (
	Punct   SegmentKind = iota // braces, commas, separators, Struct( and List(
	Key                        // object key
	Renamed                    // disambiguated field name in the schema view
	Value                      // scalar literal or scalar type name
)

// Segment is a run of text. Type is the value class ("string", "number",
// "boolean", "null") for Value segments and empty otherwise.
type Segment struct {
	Kind SegmentKind
	Text string
	Type string
}

func PunctSeg(text string) Segment { return Segment{Kind: Punct, Text: text} }
func KeySeg(text string) Segment { return Segment{Kind: Key, Text: text} }
func RenamedSeg(text string) Segment { return Segment{Kind: Renamed, Text: text} }
func ValueSeg(text, typ string) Segment { return Segment{Kind: Value, Text: text, Type: typ} }

// Node is one labeled element. Open is rendered before the children and
// Close after them.
type Node struct {
	ID        pathid.ID
	Class     string
	Open      []Segment
	Children  []*Node
	Close     []Segment
	Container bool
}

// Tree is a rendered document. Open and Close wrap the top-level nodes and
// belong to no path.
type Tree struct {
	Open  []Segment
	Nodes []*Node
	Close []Segment
}

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(t.Nodes, 0)
}

// Find returns every node labeled id, in document order.
func (t *Tree) Find(id pathid.ID) []*Node {
	var out []*Node
	t.Walk(func(n *Node, _ int) bool {
		if n.ID == id {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Len counts all nodes.
func (t *Tree) Len() int {
	count := 0
	t.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Text concatenates all segment text with no markup or whitespace added.
// For a pretty tree this is valid JSON.
func (t *Tree) Text() string {
	var b strings.Builder
	writeSegments(&b, t.Open)
	for _, n := range t.Nodes {
		n.writeText(&b)
	}
	writeSegments(&b, t.Close)
	return b.String()
}

// Text concatenates the node's own and descendant segment text.
func (n *Node) Text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	writeSegments(b, n.Open)
	for _, c := range n.Children {
		c.writeText(b)
	}
	writeSegments(b, n.Close)
}

// SegmentsText joins the text of segs.
func SegmentsText(segs []Segment) string {
	var b strings.Builder
	writeSegments(&b, segs)
	return b.String()
}

func writeSegments(b *strings.Builder, segs []Segment) {
	for _, s := range segs {
		b.WriteString(s.Text)
	}
}
