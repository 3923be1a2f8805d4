// Package logger provides the process-wide structured logger: zap's JSON
// encoder behind a logr.Logger, carried through contexts.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/oakwood-commons/unpack/pkg/settings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerContextKey struct{}

const (
	RootCommandKey = "root_command"
	SubCommandKey  = "sub_command"
	CommitKey      = "commit"
	VersionKey     = "version"
	BuildTimeKey   = "build_time"
	GoVersionKey   = "go_version"
	TimeStampKey   = "timestamp"
	MessageKey     = "message"

	RequestIDKey = "request_id"
	MethodKey    = "method"
	PathKey      = "path"
	StatusKey    = "status"
	LatencyKey   = "latency"
	ClientIPKey  = "client_ip"
)

var (
	once sync.Once

	// globalZapLogger backs Sync().
	globalZapLogger *zap.Logger

	// globalLogrLogger is returned by Get and used when a context carries no
	// logger.
	globalLogrLogger *logr.Logger

	defaultNoopLogger logr.Logger = logr.Discard()
)

// Get initializes the global logger writing JSON to stderr at logLevel
// (zap levels: -1 debug, 0 info). Only the first call configures it.
func Get(logLevel int8) *logr.Logger {
	once.Do(func() {
		globalZapLogger = newZap(zapcore.Lock(os.Stderr), logLevel)
		gl := zapr.NewLogger(globalZapLogger)
		globalLogrLogger = &gl
	})
	if globalLogrLogger == nil {
		return &defaultNoopLogger
	}
	return globalLogrLogger
}

// New builds a standalone logger writing JSON to w. It does not touch the
// global logger.
func New(w io.Writer, logLevel int8) logr.Logger {
	return zapr.NewLogger(newZap(zapcore.AddSync(w), logLevel))
}

func newZap(sink zapcore.WriteSyncer, logLevel int8) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	goVersion := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		sink,
		zap.NewAtomicLevelAt(zapcore.Level(logLevel)),
	).With([]zapcore.Field{
		zap.String(CommitKey, settings.VersionInformation.Commit),
		zap.String(VersionKey, settings.VersionInformation.BuildVersion),
		zap.String(BuildTimeKey, settings.VersionInformation.BuildTime),
		zap.String(GoVersionKey, goVersion),
	})
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.WithFatalHook(zapcore.WriteThenPanic),
	)
}

// WithLogger returns ctx carrying log. A context already carrying the same
// logger is returned unchanged.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && lp == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the context's logger, else the global logger, else a
// no-op logger.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	}
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// Sync flushes buffered entries. Call it before exiting.
func Sync() {
	if globalZapLogger == nil {
		return
	}
	if err := globalZapLogger.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
	}
}

// isIgnorableSyncError reports the errors Sync returns on pipes and TTYs.
// Windows consoles wrap ERROR_INVALID_HANDLE in *os.PathError, hence the
// string match.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}

// GetGlobalLogger returns the global logger, or a no-op logger before Get.
func GetGlobalLogger() *logr.Logger {
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

func GetNoopLogger() *logr.Logger {
	return &defaultNoopLogger
}

// WithValues returns a new logger with keysAndValues attached.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	nlgr := lgr.WithValues(keysAndValues...)
	return &nlgr
}
