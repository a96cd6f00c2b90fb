// Package logging provides the Logger interface the ingestion engine and
// CLI write diagnostics through.
package logging

import (
	"fmt"
	logpkg "log"
	"os"
)

// Logger is an interface so callers can swap in their own implementation.
type Logger interface {
	// Printf is like fmt.Printf.
	Printf(format string, v ...any)

	// Verbose reports whether verbose output was requested.
	Verbose() bool
}

// StderrLogger writes to os.Stderr normally, or through the standard
// log package (with timestamps) when verbose is set.
type StderrLogger struct {
	verbose bool
}

// New returns a StderrLogger with the given verbosity.
func New(verbose bool) *StderrLogger {
	return &StderrLogger{verbose: verbose}
}

func (l *StderrLogger) Printf(format string, v ...any) {
	if l.verbose {
		logpkg.Printf(format, v...)
		return
	}
	fmt.Fprintf(os.Stderr, format, v...)
}

func (l *StderrLogger) Verbose() bool {
	return l.verbose
}
