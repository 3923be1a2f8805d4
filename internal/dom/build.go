// Package dom turns outlines into HTML node trees and cross-highlights
// nodes that share a path between two such trees.
package dom

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/oakwood-commons/unpack/internal/outline"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

const (
	// AttrPathID carries the integer path ID on every labeled element.
	AttrPathID = "data-path-id"
	// DefaultHighlightClass marks highlighted elements.
	DefaultHighlightClass = "highlighted"
)

// Build renders t into a <div id=containerID> holding one <div> per node,
// classed with the node's path class and tagged with its path ID. Keys,
// renamed keys and values are wrapped in spans for styling; punctuation is
// plain text.
func Build(t *outline.Tree, containerID string) *html.Node {
	root := element(atom.Div)
	if containerID != "" {
		setAttr(root, "id", containerID)
	}
	appendSegments(root, t.Open)
	for _, n := range t.Nodes {
		root.AppendChild(buildNode(n))
	}
	appendSegments(root, t.Close)
	return root
}

func buildNode(n *outline.Node) *html.Node {
	el := element(atom.Div)
	setAttr(el, "class", n.Class)
	setAttr(el, AttrPathID, strconv.Itoa(int(n.ID)))
	appendSegments(el, n.Open)
	for _, c := range n.Children {
		el.AppendChild(buildNode(c))
	}
	appendSegments(el, n.Close)
	return el
}

func appendSegments(parent *html.Node, segs []outline.Segment) {
	for _, s := range segs {
		switch s.Kind {
		case outline.Key:
			parent.AppendChild(span("key", s.Text))
		case outline.Renamed:
			parent.AppendChild(span("renamed-key", s.Text))
		case outline.Value:
			parent.AppendChild(span("value "+s.Type, s.Text))
		default:
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: s.Text})
		}
	}
}

func span(class, text string) *html.Node {
	el := element(atom.Span)
	setAttr(el, "class", strings.TrimSpace(class))
	el.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return el
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

// Render serializes n, including n itself.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// RenderChildren serializes the children of n, for replacing the content of
// an existing container.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return buf.String(), nil
}

// TextContent concatenates all text below n, i.e. the markup-free rendering.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// PathID returns the path ID an element is labeled with.
func PathID(n *html.Node) (pathid.ID, bool) {
	v, ok := getAttr(n, AttrPathID)
	if !ok {
		return pathid.None, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return pathid.None, false
	}
	return pathid.ID(id), true
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	v, _ := getAttr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	setAttr(n, "class", strings.Join(append(Classes(n), class), " "))
}

func removeClass(n *html.Node, class string) {
	classes := Classes(n)
	kept := classes[:0]
	for _, c := range classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
