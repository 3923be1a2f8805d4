package formatter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/unpack/internal/outline"
)

// MermaidOptions controls Mermaid diagram output.
type MermaidOptions struct {
	// Direction is TD, LR, BT or RL. Default TD.
	Direction string
	// NoValues hides values and types at leaves.
	NoValues bool
	// MaxDepth limits depth (0 = unlimited).
	MaxDepth int
}

type mermaidBuilder struct {
	lines  []string
	nodeID int
	opts   MermaidOptions
}

// FormatAsMermaid renders an outline as a Mermaid flowchart: a root node
// with one node per outline node, labeled like the tree output.
func FormatAsMermaid(t *outline.Tree, opts MermaidOptions) string {
	if opts.Direction == "" {
		opts.Direction = "TD"
	}
	b := &mermaidBuilder{
		lines: []string{"graph " + opts.Direction},
		opts:  opts,
	}
	root := b.nextID()
	b.addNode(root, "root")
	b.build(root, t.Nodes, 0)
	return strings.Join(b.lines, "\n") + "\n"
}

func (b *mermaidBuilder) nextID() string {
	id := fmt.Sprintf("n%d", b.nodeID)
	b.nodeID++
	return id
}

func (b *mermaidBuilder) addNode(id, label string) {
	b.lines = append(b.lines, fmt.Sprintf("    %s[%q]", id, escapeMermaid(label)))
}

func (b *mermaidBuilder) addEdge(from, to string) {
	b.lines = append(b.lines, fmt.Sprintf("    %s --> %s", from, to))
}

func (b *mermaidBuilder) build(parent string, nodes []*outline.Node, depth int) {
	if len(nodes) == 0 {
		return
	}
	if b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth {
		id := b.nextID()
		b.addNode(id, "...")
		b.addEdge(parent, id)
		return
	}
	for _, n := range nodes {
		id := b.nextID()
		b.addNode(id, treeLabel(n, TreeOptions{NoValues: b.opts.NoValues}))
		b.addEdge(parent, id)
		if n.Container {
			b.build(id, n.Children, depth+1)
		}
	}
}

// escapeMermaid keeps labels on one line and free of double quotes, which
// end a Mermaid label.
func escapeMermaid(label string) string {
	label = strings.ReplaceAll(label, `"`, `'`)
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.ReplaceAll(label, "\r", "")
}
