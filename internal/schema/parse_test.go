package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/unpack/internal/formatter"
)

func TestParseRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"demo":              demo,
		"nested collision":  `{"a":[1,2],"b":{"a":true},"e":[]}`,
		"container renamed": `{"a":{"x":1},"b":{"a":{"y":2}}}`,
		"records":           `[{"id":1,"owner":{"id":"u-1"}},{"id":2}]`,
		"scalar":            `3.5`,
		"empty containers":  `{"o":{},"l":[[1],[2]]}`,
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, tree, _ := build(t, input)
			text := formatter.SchemaText(tree)
			s, err := Parse(text)
			require.NoError(t, err, text)
			assert.Equal(t, text, s.Text())
		})
	}
}

func TestParseDemoColumns(t *testing.T) {
	_, tree, _ := build(t, demo)
	s, err := Parse(formatter.SchemaText(tree))
	require.NoError(t, err)

	var names, types []string
	for _, c := range s.Columns {
		names = append(names, c.Name)
		types = append(types, c.Type)
	}
	assert.Equal(t, []string{
		"simple_float", "simple_boolean", "nested_struct_string", "null", "floats",
		"integers", "integer", "list_of_structs_string", "boolean", "string",
	}, names)
	assert.Equal(t, []string{
		"Float64", "Boolean", "String", "Null", "Float64",
		"Int64", "Int64", "String", "Boolean", "String",
	}, types)
	assert.Equal(t, ".nested_struct.list_in_struct.floats[]", s.Columns[4].Selector())
	assert.Equal(t, ".list_of_structs[].string", s.Columns[7].Selector())
}

func TestParseSyntaxVariants(t *testing.T) {
	s, err := Parse("a: List[Struct{ x: int, y: STRING }], b: array<float>")
	require.NoError(t, err)
	want := strings.Join([]string{
		"a: List(",
		"    Struct(",
		"        x: Int64",
		"        y: String",
		"    )",
		")",
		"b: List(",
		"    Float64",
		")",
		"",
	}, "\n")
	assert.Equal(t, want, s.Text())
	require.Len(t, s.Columns, 3)
	assert.Equal(t, "b", s.Columns[2].Name)
	assert.Equal(t, "Float64", s.Columns[2].Type)
	assert.Same(t, s.Fields[1].Elem, s.Columns[2].Field)
}

func TestParseColumnNames(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		columns  []string
		selector []string
	}{
		{
			name:     "lone scalar",
			input:    "Int64",
			columns:  []string{"value"},
			selector: []string{"."},
		},
		{
			name:     "lone list",
			input:    "List(Utf8)",
			columns:  []string{"value"},
			selector: []string{".[]"},
		},
		{
			name:     "lone struct applies to each record",
			input:    "Struct(id: Int64, tags: List(String))",
			columns:  []string{"id", "tags"},
			selector: []string{".id", ".tags[]"},
		},
		{
			name:     "nested lists take the key",
			input:    "json: List(List(Int8))",
			columns:  []string{"json"},
			selector: []string{".json[][]"},
		},
		{
			name:     "leaf rename",
			input:    "attr2=renamed: UInt8",
			columns:  []string{"renamed"},
			selector: []string{".attr2"},
		},
		{
			name:     "renamed list names its elements",
			input:    "b: Struct(a=b_a: List(Int64))",
			columns:  []string{"b_a"},
			selector: []string{".b.a[]"},
		},
		{
			name:     "keys that are not identifiers are quoted",
			input:    "x-y: Boolean",
			columns:  []string{"x-y"},
			selector: []string{`."x-y"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.input)
			require.NoError(t, err)
			var columns, selectors []string
			for _, c := range s.Columns {
				columns = append(columns, c.Name)
				selectors = append(selectors, c.Selector())
			}
			assert.Equal(t, tt.columns, columns)
			assert.Equal(t, tt.selector, selectors)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   error
		line   int
		column int
		token  string
	}{
		{name: "symbols", input: "!@#$%^&*", want: ErrSyntax, line: 1, column: 1, token: "!@#$%^&*"},
		{name: "nameless member", input: "Struct(!@#$%^&*)", want: ErrSyntax, line: 1, column: 8, token: "!@#$%^&*"},
		{name: "unknown type", input: "Foo", want: ErrUnknownDataType, line: 1, column: 1, token: "Foo"},
		{name: "unknown member type", input: "Struct(foo: Bar)", want: ErrUnknownDataType, line: 1, column: 13, token: "Bar"},
		{name: "unknown renamed type", input: "Struct(foo=fox: Bar)", want: ErrUnknownDataType, line: 1, column: 17, token: "Bar"},
		{name: "duplicate column", input: "Struct(foo: Int8, foo: Float32)", want: ErrDuplicateColumn, line: 1, column: 19, token: "foo"},
		{name: "rename onto a column", input: "Struct(foo: Int8, bar=foo: Float32)", want: ErrDuplicateColumn, line: 1, column: 23, token: "foo"},
		{name: "struct renamed", input: "this=that:Struct(foo:Int8)", want: ErrPathRenaming, line: 1, column: 6, token: "that"},
		{name: "missing close", input: "a: Struct(b: Int64", want: ErrSyntax, line: 1, column: 19},
		{name: "unmatched close", input: "a: Int64)", want: ErrSyntax, line: 1, column: 9, token: ")"},
		{name: "two list elements", input: "List(Int64, String)", want: ErrSyntax, line: 1, column: 13, token: "String"},
		{name: "named list element", input: "List(a: Int64)", want: ErrSyntax, line: 1, column: 6, token: "a"},
		{name: "missing open", input: "a: Struct\nb: Int64", want: ErrSyntax, line: 2, column: 1, token: "b"},
		{name: "lone type then field", input: "Int64\nb: Int64", want: ErrSyntax, line: 2, column: 1, token: "b"},
		{name: "field then lone type", input: "a: Int64 Int64", want: ErrSyntax, line: 1, column: 10, token: "Int64"},
		{name: "empty rename", input: "a=: Int64", want: ErrSyntax, line: 1, column: 3, token: ":"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.column, perr.Column)
			assert.Equal(t, tt.token, perr.Token)
		})
	}
}

func TestParseErrorExcerpt(t *testing.T) {
	_, err := Parse("headers: Struct(\n    timestamp: Foo\n)")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))

	assert.Equal(t, `schema line 2, column 16: unknown data type: "Foo"`, perr.Error())
	want := strings.Join([]string{
		"   1 │ headers: Struct(",
		"   2 │     timestamp: Foo",
		"     │                ^^^",
		"",
	}, "\n")
	assert.Equal(t, want, perr.Excerpt())
}

func TestParseErrorExcerptAtEnd(t *testing.T) {
	_, err := Parse("a: List(\n    Int64\n")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))

	assert.Equal(t, 3, perr.Line)
	assert.Contains(t, perr.Error(), "missing closing delimiter")
	assert.True(t, strings.HasSuffix(perr.Excerpt(), "   3 │ \n     │ ^\n"), perr.Excerpt())
}
