// Package logging builds the zap loggers of the binaries and reports error chains.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// FileName is the active log file inside the log directory
	FileName = "keymaze.log"
	// DefaultMaxSize is the size above which the log file is rotated at startup
	DefaultMaxSize int64 = 10 << 20
)

// Options selects where and how much to log
type Options struct {
	Quiet     bool   // Discard everything
	Verbosity int    // Count of -v flags
	Level     string // Overrides Verbosity when set
	Format    string // "json" or "console"
	Dir       string // Log to Dir/FileName; empty logs to stderr
	MaxSize   int64
}

// LevelFor maps a -v count to a level: 0 error, 1 warn, 2 info, 3+ debug
func LevelFor(verbosity int) zapcore.Level {
	switch {
	case verbosity <= 0:
		return zapcore.ErrorLevel
	case verbosity == 1:
		return zapcore.WarnLevel
	case verbosity == 2:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New builds a logger; the returned function flushes and closes its output
func New(opts Options) (*zap.Logger, func(), error) {
	if opts.Quiet {
		return zap.NewNop(), func() {}, nil
	}

	level := LevelFor(opts.Verbosity)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, errors.Wrapf(err, "invalid log level %q", opts.Level)
		}
	}

	var encoder zapcore.Encoder
	if opts.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encCfg.ConsoleSeparator = "  "
		if opts.Dir == "" {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	if opts.Dir == "" {
		core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
		logger := zap.New(core)
		return logger, func() { _ = logger.Sync() }, nil
	}

	file, err := openLogFile(opts.Dir, opts.MaxSize)
	if err != nil {
		return nil, nil, err
	}
	logger := zap.New(zapcore.NewCore(encoder, zapcore.AddSync(file), level))
	return logger, func() {
		_ = logger.Sync()
		_ = file.Close()
	}, nil
}

// openLogFile creates dir if needed and rotates an oversized log before opening it
func openLogFile(dir string, maxSize int64) (*os.File, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "couldn't create log directory %s", dir)
	}

	path := filepath.Join(dir, FileName)
	if info, err := os.Stat(path); err == nil && info.Size() > maxSize {
		ext := filepath.Ext(FileName)
		rotated := filepath.Join(dir, fmt.Sprintf("%s-%s%s",
			strings.TrimSuffix(FileName, ext), time.Now().Format("20060102-150405"), ext))
		if err := os.Rename(path, rotated); err != nil {
			return nil, errors.Wrapf(err, "couldn't rotate %s", path)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open log file %s", path)
	}
	return file, nil
}

// Chain splits an error into its messages, innermost cause first
// Layers that add no text of their own, such as stack annotations, are skipped
func Chain(err error) []string {
	var layers []error
	for e := err; e != nil; e = errors.Unwrap(e) {
		layers = append(layers, e)
	}

	msgs := make([]string, 0, len(layers))
	for i := len(layers) - 1; i >= 0; i-- {
		msg := layers[i].Error()
		if i+1 < len(layers) {
			inner := layers[i+1].Error()
			if msg == inner {
				continue
			}
			msg = strings.TrimSuffix(msg, ": "+inner)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Stack returns the deepest stack trace recorded in the chain, or ""
func Stack(err error) string {
	var st errors.StackTrace
	for e := err; e != nil; e = errors.Unwrap(e) {
		if tracer, ok := e.(stackTracer); ok {
			st = tracer.StackTrace()
		}
	}
	if st == nil {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprintf("%+v", st), "\n")
}

// LogError logs the chain innermost cause first, each outer layer as context, then the stack
func LogError(logger *zap.Logger, err error) {
	if err == nil {
		return
	}
	msgs := Chain(err)
	for i, msg := range msgs {
		if i == 0 {
			logger.Error(msg)
			continue
		}
		logger.Error("context: " + msg)
	}
	if st := Stack(err); st != "" {
		logger.Error("stack trace:\n" + st)
	}
}
