package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const infoLevel int8 = 0

func TestGetReturnsSameInstance(t *testing.T) {
	l1 := Get(infoLevel)
	l2 := Get(-1)
	require.NotNil(t, l1)
	assert.Same(t, l1, l2)
}

func TestGetReturnsNoopWhenGlobalUnset(t *testing.T) {
	Get(infoLevel)
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &defaultNoopLogger, Get(infoLevel))
	assert.Same(t, &defaultNoopLogger, GetGlobalLogger())
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(&buf, infoLevel)
	lgr.Info("rendered", PathKey, "/api/render", StatusKey, 200)
	lgr.V(1).Info("hidden at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rendered", entry[MessageKey])
	assert.Equal(t, "/api/render", entry[PathKey])
	assert.InDelta(t, 200, entry[StatusKey], 0)
	assert.Contains(t, entry, TimeStampKey)
	assert.Contains(t, entry, VersionKey)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(&buf, -1)
	lgr.V(1).Info("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	lgr := Get(infoLevel)
	ctx1 := WithLogger(ctx, lgr)
	assert.Same(t, lgr, FromContext(ctx1))
	assert.Equal(t, ctx1, WithLogger(ctx1, lgr), "same logger keeps the context")

	other := logr.Discard()
	ctx2 := WithLogger(ctx1, &other)
	assert.Same(t, &other, FromContext(ctx2))
}

func TestFromContextFallbacks(t *testing.T) {
	global := Get(infoLevel)
	assert.Same(t, global, FromContext(context.Background()))

	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()
	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))
}

func TestSyncWithoutLogger(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()
	assert.NotPanics(t, Sync)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(syscall.ENOTTY))
	assert.True(t, isIgnorableSyncError(errors.New("sync /dev/stderr: The handle is invalid.")))
	assert.False(t, isIgnorableSyncError(errors.New("disk full")))
}

func TestWithValues(t *testing.T) {
	lgr := Get(infoLevel)
	n := WithValues(lgr, RootCommandKey, "unpack")
	require.NotNil(t, n)
	assert.NotSame(t, lgr, n)
	assert.Same(t, &defaultNoopLogger, GetNoopLogger())
}
