package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/unpack/internal/jsonvalue"
)

type fakeEvaluator struct {
	expr string
	out  jsonvalue.Value
	err  error
}

func (f *fakeEvaluator) Evaluate(expr string, _ jsonvalue.Value) (jsonvalue.Value, error) {
	f.expr = expr
	return f.out, f.err
}

func TestUnpack(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	res, err := engine.Unpack(`{"a":[1,2],"b":{"a":true}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.Renames.Keys())
	assert.Equal(t, `{"a":[1,2],"b":{"a":true}}`, strings.Join(strings.Fields(res.Pretty.Text()), ""))

	id, ok := res.Registry.Lookup("json-path-b-a")
	require.True(t, ok)
	assert.NotEmpty(t, res.Pretty.Find(id))
	assert.NotEmpty(t, res.Schema.Find(id))
}

func TestUnpackRootToken(t *testing.T) {
	engine, err := New(WithRootToken("doc"))
	require.NoError(t, err)
	res, err := engine.Unpack(`{"x_y": 1}`)
	require.NoError(t, err)
	_, ok := res.Registry.Lookup("doc-x-y")
	assert.True(t, ok)
}

func TestUnpackParseError(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	_, err = engine.Unpack("{\"a\": }")
	var perr *jsonvalue.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
}

func TestUnpackExpression(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	res, err := engine.UnpackExpression(`{"items":[{"id":1},{"id":2}]}`, "_.items.map(i, i.id)")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", res.Value.Marshal())
}

func TestUnpackExpressionKeepsOrderAndLiterals(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)
	res, err := engine.UnpackExpression(`{"n":{"z":1.0,"b":789e5,"a":{"z":true}}}`, "_.n")
	require.NoError(t, err)
	assert.Equal(t, `{"z":1.0,"b":789e5,"a":{"z":true}}`, res.Value.Marshal())

	keys := make([]string, 0, 3)
	for _, m := range res.Value.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"z", "b", "a"}, keys)
	assert.Equal(t, []string{"z"}, res.Renames.Keys(), "collisions follow source order")

	text := res.Pretty.Text()
	assert.Contains(t, text, "1.0")
	assert.Contains(t, text, "789e5")
	assert.Less(t, strings.Index(text, `"z"`), strings.Index(text, `"b"`))
	assert.Less(t, strings.Index(text, `"b"`), strings.Index(text, `"a"`))
}

func TestEngineUsesInjectedEvaluator(t *testing.T) {
	fake := &fakeEvaluator{out: jsonvalue.NewString("x")}
	engine, err := New(WithEvaluator(fake))
	require.NoError(t, err)

	res, err := engine.UnpackReader(strings.NewReader(`{}`), "anything")
	require.NoError(t, err)
	assert.Equal(t, "anything", fake.expr)
	assert.Equal(t, `"x"`, res.Value.Marshal())

	fake.err = errors.New("boom")
	_, err = engine.UnpackExpression(`{}`, "anything")
	assert.ErrorContains(t, err, "boom")
}

func TestFocusEmptyExpression(t *testing.T) {
	fake := &fakeEvaluator{}
	engine, err := New(WithEvaluator(fake))
	require.NoError(t, err)
	doc := jsonvalue.NewBool(true)
	out, err := engine.Focus("", doc)
	require.NoError(t, err)
	assert.Equal(t, doc, out)
	assert.Empty(t, fake.expr)
}

func TestInferSchema(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	recs := []jsonvalue.Value{}
	for _, text := range []string{`{"id":1,"owner":{"id":"u-1"}}`, `{"id":2,"tags":["x"]}`} {
		v, err := jsonvalue.ParseString(text)
		require.NoError(t, err)
		recs = append(recs, v)
	}

	sch, text, err := engine.InferSchema(recs...)
	require.NoError(t, err)
	want := strings.Join([]string{
		"Struct(",
		"    id: Int64",
		"    owner: Struct(",
		"        id=owner_id: String",
		"    )",
		"    tags: List(",
		"        String",
		"    )",
		")",
		"",
	}, "\n")
	assert.Equal(t, want, text)
	assert.Equal(t, want, sch.Text())

	var names []string
	for _, c := range sch.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "owner_id", "tags"}, names)
}

func TestInferSchemaUnparsableKey(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	v, err := jsonvalue.ParseString(`{"a b":1}`)
	require.NoError(t, err)
	_, text, err := engine.InferSchema(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inferred schema:")
	assert.Contains(t, text, "a b: Int64")
}
