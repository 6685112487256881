package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logging facility. One Logger is built at
// startup and handed to every component; components derive their own named
// child with Named.
//
// Every entry goes to two sinks with the same content: a per-run log file and
// the console (stderr). The file carries full timestamps and the component
// name, the console a shorter form.
type Logger struct {
	sugar     *zap.SugaredLogger
	base      *zap.Logger
	runID     string
	logPath   string
	file      *os.File
	closeOnce sync.Once
}

// Options configures New.
type Options struct {
	// Level is one of DEBUG, INFO, WARNING, ERROR, CRITICAL
	Level string

	// Dir is the directory the per-run log file is created in
	Dir string

	// Name is the root logger name
	Name string
}

// New creates the run logger. The log file is named
// <Dir>/<timestamp>-<run-id>-<Name>.log.
//
// If the log directory cannot be created or the file cannot be opened it
// returns a console-only logger together with the error, so callers can
// warn and carry on.
func New(opts Options) (*Logger, error) {
	if opts.Name == "" {
		opts.Name = "viewbot"
	}
	level := ParseLevel(opts.Level)
	runID := uuid.New().String()
	console := consoleCore(os.Stderr, level)

	if err := os.MkdirAll(opts.Dir, 0750); err != nil {
		l := newLogger(console, opts.Name, runID, "", nil)
		l.Warnf("Failed to initialize file logging: %v", err)
		l.Warnf("Falling back to console logging")
		return l, fmt.Errorf("failed to create log directory: %w", err)
	}

	fileName := fmt.Sprintf("%s-%s-%s.log", time.Now().Format("20060102_150405"), runID[:8], opts.Name)
	logPath := filepath.Join(opts.Dir, fileName)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		l := newLogger(console, opts.Name, runID, "", nil)
		l.Warnf("Failed to initialize file logging: %v", err)
		l.Warnf("Falling back to console logging")
		return l, fmt.Errorf("failed to open log file: %w", err)
	}

	core := zapcore.NewTee(
		fileCore(zapcore.AddSync(file), level),
		console,
	)
	l := newLogger(core, opts.Name, runID, logPath, file)
	l.Infof("Logger initialized. Log file: %s", logPath)
	return l, nil
}

// NewWithCore wraps an existing zap core. Used by tests with an observer core.
func NewWithCore(core zapcore.Core) *Logger {
	return newLogger(core, "viewbot", uuid.New().String(), "", nil)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return NewWithCore(zapcore.NewNopCore())
}

func newLogger(core zapcore.Core, name, runID, logPath string, file *os.File) *Logger {
	base := zap.New(core).Named(name)
	return &Logger{
		sugar:   base.Sugar(),
		base:    base,
		runID:   runID,
		logPath: logPath,
		file:    file,
	}
}

func fileCore(w zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " - ",
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), w, level)
}

func consoleCore(w zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(w), level)
}

// ParseLevel maps a configured level name to a zap level. Unknown names map
// to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARNING", "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "CRITICAL":
		// DPanic panics only in development loggers
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// Named returns a child logger for a component. It shares sinks and run id
// with its parent.
func (l *Logger) Named(component string) *Logger {
	child := l.base.Named(component)
	return &Logger{
		sugar:   child.Sugar(),
		base:    child,
		runID:   l.runID,
		logPath: l.logPath,
	}
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// RunID returns the id shared by every logger of this run.
func (l *Logger) RunID() string {
	return l.runID
}

// LogPath returns the path to the log file, or "" when logging to the
// console only.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes and closes the log file. Safe to call multiple times; only
// the root logger owns the file.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		_ = l.base.Sync()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
