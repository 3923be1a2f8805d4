package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAsMermaidSchema(t *testing.T) {
	_, sch := buildTrees(t, `{"user": {"name": "bob"}, "tags": ["x"]}`)
	out := FormatAsMermaid(sch, MermaidOptions{})

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `n0["root"]`)
	assert.Contains(t, out, `"user: Struct"`)
	assert.Contains(t, out, `"name: String"`)
	assert.Contains(t, out, `"tags: List"`)
	assert.NotContains(t, out, `\"`)
	// root->user, user->name, root->tags, tags->String
	assert.Equal(t, 4, strings.Count(out, "-->"))
}

func TestFormatAsMermaidOptions(t *testing.T) {
	prettyTree, _ := buildTrees(t, `{"a": {"b": {"c": 1}}}`)

	lr := FormatAsMermaid(prettyTree, MermaidOptions{Direction: "LR"})
	assert.True(t, strings.HasPrefix(lr, "graph LR\n"))
	assert.Contains(t, lr, `'c': 1`)

	shallow := FormatAsMermaid(prettyTree, MermaidOptions{MaxDepth: 1})
	assert.Contains(t, shallow, `"..."`)
	assert.NotContains(t, shallow, `'b'`)
}

func TestEscapeMermaid(t *testing.T) {
	assert.Equal(t, `'a' b`, escapeMermaid("\"a\"\n\rb"))
}
