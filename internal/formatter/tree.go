package formatter

import (
	"strings"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/unpack/internal/outline"
)

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// NoValues hides values and types at leaf nodes (structure only).
	NoValues bool
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
}

// FormatAsTree renders an outline as an ASCII tree. Containers become
// branches labeled with their key and kind; scalars are leaves.
func FormatAsTree(t *outline.Tree, opts TreeOptions) string {
	tree := treeprint.New()
	buildTree(tree, t.Nodes, opts, 0)
	return tree.String()
}

func buildTree(branch treeprint.Tree, nodes []*outline.Node, opts TreeOptions, depth int) {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		if len(nodes) > 0 {
			branch.AddNode("...")
		}
		return
	}
	for _, n := range nodes {
		if n.Container {
			child := branch.AddBranch(treeLabel(n, opts))
			buildTree(child, n.Children, opts, depth+1)
			continue
		}
		branch.AddNode(treeLabel(n, opts))
	}
}

// treeLabel returns the node's own text without the container opener and
// without the trailing comma of pretty output.
func treeLabel(n *outline.Node, opts TreeOptions) string {
	var b strings.Builder
	for _, s := range n.Open {
		if opts.NoValues && s.Kind == outline.Value {
			continue
		}
		b.WriteString(s.Text)
	}
	label := b.String()
	if n.Container {
		label = strings.TrimRight(label, "([{")
	}
	label = strings.TrimSuffix(label, ": ")
	if label == "" {
		return "(item)"
	}
	return label
}
