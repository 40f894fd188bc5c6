// Package logger provides verbose logging for the Thorr CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace each stage of the question pipeline.
// Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	base              = newBase(os.Stderr, false)
)

func newBase(w io.Writer, v bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "thorr",
		ReportTimestamp: v,
		TimeFormat:      "15:04:05.000",
	})
	if v {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.ErrorLevel)
	}
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = newBase(output, v)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newBase(w, verbose)
}

// L returns the underlying structured logger.
func L() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// With returns a logger that adds keyvals to every entry, e.g. a question trace ID.
func With(keyvals ...any) *log.Logger {
	return L().With(keyvals...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	L().Debugf(format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	L().Infof(format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	L().Warnf(format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	L().Errorf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
