package dom

import (
	"golang.org/x/net/html"

	"github.com/oakwood-commons/unpack/internal/pathid"
)

// Side names one of the two trees a Highlighter joins.
type Side int

const (
	Pretty Side = iota
	Schema
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Pretty {
		return Schema
	}
	return Pretty
}

func (s Side) String() string {
	if s == Pretty {
		return "pretty"
	}
	return "schema"
}

// ScrollTarget is the element to bring into view after a hover, with the
// alignment a browser's scrollIntoView should use.
type ScrollTarget struct {
	Node   *html.Node
	Block  string
	Inline string
}

// Highlighter joins two rendered trees on path ID. It keeps no hover
// state: Enter marks every element sharing an ID and Leave clears them all
// by ID, so any sequence of calls leaves no stale marks behind.
type Highlighter struct {
	class string
	reg   *pathid.Registry
	index [2]map[pathid.ID][]*html.Node
}

// NewHighlighter indexes every labeled element below the two roots. reg is
// the registry both trees were labeled from; class names resolve through it
// rather than through the class attribute, which a key containing spaces
// splits. An empty class means DefaultHighlightClass.
func NewHighlighter(reg *pathid.Registry, pretty, schema *html.Node, class string) *Highlighter {
	if class == "" {
		class = DefaultHighlightClass
	}
	h := &Highlighter{class: class, reg: reg}
	for side, root := range []*html.Node{pretty, schema} {
		h.index[side] = make(map[pathid.ID][]*html.Node)
		h.collect(Side(side), root)
	}
	return h
}

func (h *Highlighter) collect(side Side, n *html.Node) {
	if n == nil {
		return
	}
	if n.Type == html.ElementNode {
		if id, ok := PathID(n); ok {
			h.index[side][id] = append(h.index[side][id], n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		h.collect(side, c)
	}
}

// Lookup resolves a path class (e.g. "json-path-a-item") to its ID. ok is
// false unless some element in either tree carries the ID.
func (h *Highlighter) Lookup(class string) (pathid.ID, bool) {
	if h.reg == nil {
		return 0, false
	}
	id, ok := h.reg.Lookup(class)
	if !ok || len(h.index[Pretty][id])+len(h.index[Schema][id]) == 0 {
		return 0, false
	}
	return id, true
}

// Nodes returns the elements labeled id on side, in document order.
func (h *Highlighter) Nodes(side Side, id pathid.ID) []*html.Node {
	return h.index[side][id]
}

// Enter highlights every element labeled id in both trees and returns the
// first such element in the tree opposite to from, to be scrolled into view
// at the nearest edge and centered inline. ok is false when the other tree
// has no element for id.
func (h *Highlighter) Enter(from Side, id pathid.ID) (ScrollTarget, bool) {
	for side := range h.index {
		for _, n := range h.index[side][id] {
			addClass(n, h.class)
		}
	}
	others := h.index[from.Other()][id]
	if len(others) == 0 {
		return ScrollTarget{}, false
	}
	return ScrollTarget{Node: others[0], Block: "nearest", Inline: "center"}, true
}

// Leave clears the highlight from every element labeled id in both trees.
func (h *Highlighter) Leave(id pathid.ID) {
	for side := range h.index {
		for _, n := range h.index[side][id] {
			removeClass(n, h.class)
		}
	}
}

// Highlighted returns how many elements currently carry the highlight class.
func (h *Highlighter) Highlighted() int {
	count := 0
	for side := range h.index {
		for _, nodes := range h.index[side] {
			for _, n := range nodes {
				if HasClass(n, h.class) {
					count++
				}
			}
		}
	}
	return count
}
