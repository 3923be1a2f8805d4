package schema

import (
	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/outline"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

// Type names used in the rough schema.
const (
	TypeBoolean = "Boolean"
	TypeNull    = "Null"
	TypeInt64   = "Int64"
	TypeFloat64 = "Float64"
	TypeString  = "String"
	TypeUnknown = "Unknown"

	StructOpen = "Struct("
	ListOpen   = "List("
	Close      = ")"
)

// TypeName classifies a scalar. Numbers are Int64 when mathematically
// integral, so 1.0 and 789e5 are Int64 and 12.3 is Float64.
func TypeName(v jsonvalue.Value) string {
	switch v.Kind() {
	case jsonvalue.KindBool:
		return TypeBoolean
	case jsonvalue.KindNull:
		return TypeNull
	case jsonvalue.KindInt:
		return TypeInt64
	case jsonvalue.KindFloat:
		return TypeFloat64
	case jsonvalue.KindString:
		return TypeString
	default:
		return TypeUnknown
	}
}

type renderer struct {
	reg     *pathid.Registry
	renames RenameSet
	seen    pathid.Set
}

// Render builds the schema outline of v. Each path is rendered the first
// time it is reached and skipped, with everything below it, afterwards: the
// first element of an array stands for all of them. Keys in renames are
// shown as key=flattened when the flattened name differs from the key.
func Render(v jsonvalue.Value, renames RenameSet, reg *pathid.Registry) *outline.Tree {
	r := &renderer{reg: reg, renames: renames, seen: pathid.NewSet()}
	root := reg.Root()
	if !v.IsContainer() {
		id := reg.Intern(root)
		r.seen.Add(id)
		return &outline.Tree{Nodes: []*outline.Node{{
			ID:    id,
			Class: root.Class(),
			Open:  []outline.Segment{outline.ValueSeg(TypeName(v), v.TypeClass())},
		}}}
	}
	return &outline.Tree{Nodes: r.children(v, root)}
}

func (r *renderer) children(v jsonvalue.Value, parent pathid.Path) []*outline.Node {
	var nodes []*outline.Node
	emit := func(path pathid.Path, key string, isMember bool, child jsonvalue.Value) {
		id := r.reg.Intern(path)
		if !r.seen.Add(id) {
			return
		}
		node := &outline.Node{ID: id, Class: path.Class()}
		if isMember {
			node.Open = append(node.Open, outline.KeySeg(key))
			if renamed := path.Normalized(); r.renames.Has(key) && renamed != key {
				node.Open = append(node.Open, outline.PunctSeg("="), outline.RenamedSeg(renamed))
			}
			node.Open = append(node.Open, outline.PunctSeg(": "))
		}
		if child.IsContainer() {
			opener := StructOpen
			if child.Kind() == jsonvalue.KindArray {
				opener = ListOpen
			}
			node.Container = true
			node.Open = append(node.Open, outline.PunctSeg(opener))
			node.Children = r.children(child, path)
			node.Close = []outline.Segment{outline.PunctSeg(Close)}
		} else {
			node.Open = append(node.Open, outline.ValueSeg(TypeName(child), child.TypeClass()))
		}
		nodes = append(nodes, node)
	}

	switch v.Kind() {
	case jsonvalue.KindArray:
		path := parent.Item()
		for _, item := range v.Items() {
			emit(path, "", false, item)
		}
	case jsonvalue.KindObject:
		for _, m := range v.Members() {
			emit(parent.Key(m.Key), m.Key, true, m.Value)
		}
	}
	return nodes
}
