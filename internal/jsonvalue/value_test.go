package jsonvalue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIntegral(t *testing.T) {
	tests := []struct {
		literal string
		want    bool
	}{
		{"1", true},
		{"-1", true},
		{"0", true},
		{"1.0", true},
		{"45600", true},
		{"789e5", true},
		{"789E+5", true},
		{"1.5e1", true},
		{"100e-2", true},
		{"0.0e-7", true},
		{"12.3", false},
		{"1.23", false},
		{"0.5", false},
		{"1e-1", false},
		{"-2.25", false},
		{"1e99999999999999999999", true},
		{"1e-99999999999999999999", false},
		{"1e-9223372036854775808", false},
		{"0.1e-9223372036854775807", false},
		{"12.3e-9223372036854775807", false},
		{"1.0e9223372036854775807", true},
	}
	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIntegral(tt.literal))
		})
	}
}

func TestParsePreservesOrderAndLiterals(t *testing.T) {
	v, err := ParseString(`{"z": 1, "a": [789e5, 12.3, "x"], "m": {"k": null, "b": true}}`)
	require.NoError(t, err)
	require.Equal(t, KindObject, v.Kind())

	keys := []string{}
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)

	arr, ok := v.Get("a")
	require.True(t, ok)
	require.Equal(t, 3, arr.Len())
	assert.Equal(t, KindInt, arr.Items()[0].Kind())
	assert.Equal(t, "789e5", arr.Items()[0].Literal())
	assert.Equal(t, KindFloat, arr.Items()[1].Kind())
	assert.Equal(t, KindString, arr.Items()[2].Kind())

	assert.Equal(t, `{"z":1,"a":[789e5,12.3,"x"],"m":{"k":null,"b":true}}`, v.Marshal())
}

func TestParseScalarRoot(t *testing.T) {
	v, err := ParseString(`  "hi"  `)
	require.NoError(t, err)
	assert.Equal(t, KindString, v.Kind())
	assert.Equal(t, "hi", v.Str())
	assert.False(t, v.IsContainer())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		line    int
	}{
		{name: "empty", input: "   \n ", wantErr: ErrEmptyInput, line: 1},
		{name: "trailing value", input: "{} {}", wantErr: ErrTrailingData, line: 1},
		{name: "truncated", input: "{\"a\": [1,", wantErr: ErrTruncated, line: 1},
		{name: "syntax on second line", input: "{\n\"a\": tru}", line: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			require.Error(t, err)
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.Positive(t, perr.Column)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestQuoteLeavesHTMLAlone(t *testing.T) {
	assert.Equal(t, `"<b>&\"</b>"`, Quote(`<b>&"</b>`))
}

func TestNativeRoundTrip(t *testing.T) {
	v, err := ParseString(`{"b": [1, 2.5, "s", null, false], "a": {"x": 1e2}}`)
	require.NoError(t, err)

	native := ToNative(v)
	m, ok := native.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), 2.5, "s", nil, false}, m["b"])
	assert.Equal(t, map[string]any{"x": int64(100)}, m["a"])

	back := FromNative(native)
	assert.Equal(t, `{"a":{"x":100},"b":[1,2.5,"s",null,false]}`, back.Marshal())
}

func TestRepair(t *testing.T) {
	repaired, err := Repair(`{"a": 1,}`)
	require.NoError(t, err)
	_, err = ParseString(repaired)
	assert.NoError(t, err)

	_, err = Repair("  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
