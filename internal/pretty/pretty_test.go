package pretty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/outline"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

func TestRenderRoundTrips(t *testing.T) {
	inputs := []string{
		`{}`,
		`[]`,
		`null`,
		`"a \"quoted\" <tag> & é"`,
		`-12.5e3`,
		`{"a": [1, 2], "b": {"a": true}}`,
		`[[], {}, [null, false], {"x_y": {"z": [1.0, "s"]}}]`,
		`{"dup": 1, "dup": 2}`,
		`{"simple_float": 1.23, "nested_struct": {"list_in_struct": {"floats": [12.3, 45600, 789e5]}}}`,
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v, err := jsonvalue.ParseString(input)
			require.NoError(t, err)

			tree := Render(v, pathid.NewRegistry(""))
			back, err := jsonvalue.ParseString(tree.Text())
			require.NoError(t, err, "rendered text: %s", tree.Text())
			assert.Equal(t, v, back)
		})
	}
}

func TestRenderLabelsAndCommas(t *testing.T) {
	v, err := jsonvalue.ParseString(`{"nested_struct": {"integers": [1, 2, 3]}, "s": "x"}`)
	require.NoError(t, err)
	reg := pathid.NewRegistry("")
	tree := Render(v, reg)

	assert.Equal(t, `{"nested_struct": {"integers": [1,2,3]},"s": "x"}`, tree.Text())
	require.Len(t, tree.Nodes, 2)

	nested := tree.Nodes[0]
	assert.Equal(t, "json-path-nested-struct", nested.Class)
	assert.True(t, nested.Container)
	assert.Equal(t, "},", outline.SegmentsText(nested.Close))
	assert.Equal(t, "", outline.SegmentsText(tree.Nodes[1].Close), "last sibling has no comma")

	id, ok := reg.Lookup("json-path-nested-struct-integers-item")
	require.True(t, ok)
	items := tree.Find(id)
	assert.Len(t, items, 3, "every array element is rendered")
	for _, item := range items {
		assert.Equal(t, "number", item.Open[0].Type)
	}
}

func TestRenderSegments(t *testing.T) {
	v, err := jsonvalue.ParseString(`{"k": "v"}`)
	require.NoError(t, err)
	tree := Render(v, pathid.NewRegistry("root"))
	require.Len(t, tree.Nodes, 1)
	n := tree.Nodes[0]
	assert.Equal(t, "root-k", n.Class)
	assert.Equal(t, []outline.Segment{
		{Kind: outline.Key, Text: `"k"`},
		{Kind: outline.Punct, Text: ": "},
		{Kind: outline.Value, Text: `"v"`, Type: "string"},
	}, n.Open)
}

func TestRenderScalarRoot(t *testing.T) {
	tree := Render(jsonvalue.NewBool(true), pathid.NewRegistry(""))
	assert.Empty(t, tree.Open)
	require.Len(t, tree.Nodes, 1)
	assert.Equal(t, "json-path", tree.Nodes[0].Class)
	assert.Equal(t, "true", tree.Text())
}
