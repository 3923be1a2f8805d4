// Package pretty renders a JSON value as an outline that reads back as the
// same JSON: keys and strings quoted, numbers as written, one labeled node
// per value, every element of every array included.
package pretty

import (
	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/outline"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

// Render builds the pretty outline of v. Node labels are interned in reg,
// starting from reg.Root(). A scalar root becomes a single node labeled with
// the root path; a container root is wrapped in its braces.
func Render(v jsonvalue.Value, reg *pathid.Registry) *outline.Tree {
	root := reg.Root()
	if !v.IsContainer() {
		return &outline.Tree{Nodes: []*outline.Node{{
			ID:    reg.Intern(root),
			Class: root.Class(),
			Open:  []outline.Segment{outline.ValueSeg(v.Literal(), v.TypeClass())},
		}}}
	}
	openTok, closeTok := brackets(v)
	return &outline.Tree{
		Open:  []outline.Segment{outline.PunctSeg(openTok)},
		Nodes: children(v, root, reg),
		Close: []outline.Segment{outline.PunctSeg(closeTok)},
	}
}

func children(v jsonvalue.Value, parent pathid.Path, reg *pathid.Registry) []*outline.Node {
	n := v.Len()
	nodes := make([]*outline.Node, 0, n)
	for i := 0; i < n; i++ {
		var (
			path  pathid.Path
			child jsonvalue.Value
			node  = &outline.Node{}
		)
		if v.Kind() == jsonvalue.KindArray {
			path, child = parent.Item(), v.Items()[i]
		} else {
			m := v.Members()[i]
			path, child = parent.Key(m.Key), m.Value
			node.Open = append(node.Open,
				outline.KeySeg(jsonvalue.Quote(m.Key)),
				outline.PunctSeg(": "),
			)
		}
		node.ID = reg.Intern(path)
		node.Class = path.Class()

		if child.IsContainer() {
			openTok, closeTok := brackets(child)
			node.Container = true
			node.Open = append(node.Open, outline.PunctSeg(openTok))
			node.Children = children(child, path, reg)
			node.Close = append(node.Close, outline.PunctSeg(closeTok))
		} else {
			node.Open = append(node.Open, outline.ValueSeg(child.Literal(), child.TypeClass()))
		}
		if i < n-1 {
			node.Close = append(node.Close, outline.PunctSeg(","))
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func brackets(v jsonvalue.Value) (string, string) {
	if v.Kind() == jsonvalue.KindArray {
		return "[", "]"
	}
	return "{", "}"
}
