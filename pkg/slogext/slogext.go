// Package slogext is a small wrapper around [log/slog] that gives the
// engine one consistent logging story. It implements the "logger
// collaborator" design note from spec §9: a capability set
// {log(level, message)} passed as an explicit parameter, with three
// concrete variants (silent, stream, structured) rather than a
// thread-local/global singleton.
package slogext

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the capability every engine component depends on. Nothing
// in internal/ ever imports charmlog or slog directly; they go through
// this interface so a caller embedding the engine can supply their own
// implementation.
type Logger interface {
	Info(string, ...any)
	Infof(string, ...any)
	Debug(string, ...any)
	Debugf(string, ...any)
	Error(string, ...any)
	Errorf(string, ...any)
	Warn(string, ...any)
	Warnf(string, ...any)
	With(...any) Logger
	WithError(error) Logger
	SetLevel(Level)
}

// Level is a logging level, aliased from charmlog so callers of New
// can set it without importing charmlog themselves.
type Level = charmlog.Level

const (
	DebugLevel = charmlog.DebugLevel
	InfoLevel  = charmlog.InfoLevel
	WarnLevel  = charmlog.WarnLevel
	ErrorLevel = charmlog.ErrorLevel
	FatalLevel = charmlog.FatalLevel
)

var _ Logger = &logger{}

// New returns the structured variant: a [charmlog] handler fronted by
// [log/slog], writing to stdout. This is the default for the CLI.
func New() Logger {
	handler := charmlog.New(os.Stdout)
	return &logger{slog.New(handler), handler}
}

// NewWriter returns the structured variant writing to an arbitrary
// io.Writer, used by tests and by NewCapturedLogger.
func NewWriter(w io.Writer) Logger {
	handler := charmlog.New(w)
	handler.SetReportTimestamp(false)
	return &logger{slog.New(handler), handler}
}

// NewCapturedLogger returns a structured logger writing to an
// in-memory buffer, along with that buffer, so tests can assert on
// emitted log lines without capturing stdout.
func NewCapturedLogger() (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWriter(&buf), &buf
}

// NewSilent returns the silent variant: every call is a no-op. Used
// where a component requires a Logger but the caller (e.g. a library
// consumer that wants total quiet) has no sink to offer.
func NewSilent() Logger {
	return silent{}
}

// NewStream returns the stream variant: unstructured, line-oriented
// output with no colorization (each line starts with its level name and
// lines below the set level are dropped), used by simple CLI tools that
// just want plain lines on a writer (e.g. piping into another
// process).
func NewStream(w io.Writer) Logger {
	return &stream{w: w}
}

// logger is the structured variant, wrapping slog.Logger.
type logger struct {
	*slog.Logger
	handler *charmlog.Logger
}

func (l *logger) With(args ...any) Logger {
	return &logger{l.Logger.With(args...), l.handler}
}

func (l *logger) WithError(err error) Logger {
	return &logger{l.Logger.With("error", err), l.handler}
}

func (l *logger) SetLevel(level Level) {
	l.handler.SetLevel(level)
}

func (l *logger) Infof(format string, args ...any)  { l.Info(fmt.Sprintf(format, args...)) }
func (l *logger) Debugf(format string, args ...any) { l.Debug(fmt.Sprintf(format, args...)) }
func (l *logger) Errorf(format string, args ...any) { l.Error(fmt.Sprintf(format, args...)) }
func (l *logger) Warnf(format string, args ...any)  { l.Warn(fmt.Sprintf(format, args...)) }

// silent discards everything. All methods are no-ops except With/
// WithError, which must return a Logger that is still silent.
type silent struct{}

func (silent) Info(string, ...any)    {}
func (silent) Infof(string, ...any)   {}
func (silent) Debug(string, ...any)   {}
func (silent) Debugf(string, ...any)  {}
func (silent) Error(string, ...any)   {}
func (silent) Errorf(string, ...any)  {}
func (silent) Warn(string, ...any)    {}
func (silent) Warnf(string, ...any)   {}
func (silent) With(...any) Logger     { return silent{} }
func (silent) WithError(error) Logger { return silent{} }
func (silent) SetLevel(Level)         {}

// stream is the unstructured line variant: "LEVEL message key=value ...".
type stream struct {
	w      io.Writer
	prefix string
	level  Level
}

func (s *stream) line(level, msg string, args ...any) {
	if levelRank(level) < levelRank(levelName(s.level)) {
		return
	}
	fmt.Fprintf(s.w, "%s %s%s%s\n", level, msg, formatArgs(args), s.prefix)
}

func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var b bytes.Buffer
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	return b.String()
}

func levelName(l Level) string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "INFO"
	}
}

func levelRank(name string) int {
	switch name {
	case "DEBUG":
		return 0
	case "INFO":
		return 1
	case "WARN":
		return 2
	case "ERROR":
		return 3
	case "FATAL":
		return 4
	default:
		return 1
	}
}

func (s *stream) Info(msg string, args ...any)  { s.line("INFO", msg, args...) }
func (s *stream) Debug(msg string, args ...any) { s.line("DEBUG", msg, args...) }
func (s *stream) Error(msg string, args ...any) { s.line("ERROR", msg, args...) }
func (s *stream) Warn(msg string, args ...any)  { s.line("WARN", msg, args...) }

func (s *stream) Infof(format string, args ...any)  { s.Info(fmt.Sprintf(format, args...)) }
func (s *stream) Debugf(format string, args ...any) { s.Debug(fmt.Sprintf(format, args...)) }
func (s *stream) Errorf(format string, args ...any) { s.Error(fmt.Sprintf(format, args...)) }
func (s *stream) Warnf(format string, args ...any)  { s.Warn(fmt.Sprintf(format, args...)) }

func (s *stream) With(args ...any) Logger {
	return &stream{w: s.w, prefix: s.prefix + formatArgs(args), level: s.level}
}

func (s *stream) WithError(err error) Logger {
	return s.With("error", err)
}

func (s *stream) SetLevel(level Level) { s.level = level }
