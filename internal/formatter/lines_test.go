package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/internal/pathid"
)

func TestSchemaText(t *testing.T) {
	_, sch := buildTrees(t, `{"a":[1,2],"b":{"a":true},"e":[]}`)
	want := strings.Join([]string{
		"a: List(",
		"    Int64",
		")",
		"b: Struct(",
		"    a=b_a: Boolean",
		")",
		"e: List()",
		"",
	}, "\n")
	assert.Equal(t, want, SchemaText(sch))
}

func TestPrettyTextIsJSON(t *testing.T) {
	input := `{"a":[1,2],"b":{"c":null,"d":"x"},"e":{}}`
	prettyTree, _ := buildTrees(t, input)
	want := strings.Join([]string{
		"{",
		`  "a": [`,
		"    1,",
		"    2",
		"  ],",
		`  "b": {`,
		`    "c": null,`,
		`    "d": "x"`,
		"  },",
		`  "e": {}`,
		"}",
		"",
	}, "\n")
	got := PrettyText(prettyTree)
	assert.Equal(t, want, got)

	back, err := jsonvalue.ParseString(got)
	require.NoError(t, err)
	orig, err := jsonvalue.ParseString(input)
	require.NoError(t, err)
	assert.Equal(t, orig, back)
}

func TestLinesCarryIDs(t *testing.T) {
	prettyTree, sch := buildTrees(t, `{"b":{"a":true}}`)

	pl := Lines(prettyTree)
	require.Len(t, pl, 5)
	assert.Equal(t, pathid.None, pl[0].ID)
	assert.Equal(t, "json-path-b", pl[1].Class)
	assert.Equal(t, "json-path-b-a", pl[2].Class)
	assert.Equal(t, pl[1].ID, pl[3].ID, "closing line belongs to its container")
	assert.Equal(t, pathid.None, pl[4].ID)

	sl := Lines(sch)
	require.Len(t, sl, 3)
	assert.Equal(t, pl[2].ID, sl[1].ID, "both views share IDs through one registry")
	assert.Equal(t, 1, sl[1].Depth)
}

func TestStylesNoColor(t *testing.T) {
	_, sch := buildTrees(t, `{"b":{"a":true}}`)
	st := NewStyles(DefaultPalette(), true)
	assert.Equal(t, SchemaText(sch), st.Render(Lines(sch), DefaultIndent))

	line := Lines(sch)[1]
	assert.Contains(t, st.Line(line, DefaultIndent, true), "a: Boolean")
}

func TestStylesColorKeepsText(t *testing.T) {
	prettyTree, _ := buildTrees(t, `{"k": "v"}`)
	st := NewStyles(DefaultPalette(), false)
	out := st.Render(Lines(prettyTree), "  ")
	for _, want := range []string{`"k"`, `"v"`, "{", "}"} {
		assert.Contains(t, out, want)
	}
}
