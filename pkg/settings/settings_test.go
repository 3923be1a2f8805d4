package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	assert.Equal(t, &Run{Input: Input{Source: InputStdin}, Output: "schema"}, got)
}

func TestInputSourceString(t *testing.T) {
	assert.Equal(t, "stdin", InputStdin.String())
	assert.Equal(t, "file", InputFile.String())
	assert.Equal(t, "demo", InputDemo.String())
}

func TestContextRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		settings *Run
	}{
		{name: "empty", settings: &Run{}},
		{name: "with_values", settings: &Run{NoColor: true, Output: "tree", Input: Input{Source: InputFile, Path: "a.json"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := IntoContext(context.Background(), tt.settings)
			got, ok := FromContext(ctx)
			require.True(t, ok)
			assert.Same(t, tt.settings, got)
		})
	}
}

func TestFromContextMissing(t *testing.T) {
	got, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)

	ctx := context.WithValue(context.Background(), settingsContextKey, "wrong type")
	got, ok = FromContext(ctx)
	assert.False(t, ok)
	assert.Nil(t, got)
}
