// Package logging configures the global zerolog logger for hook processes.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where diagnostics are written.
type Options struct {
	Verbose bool
	// File, when set, receives JSON log lines in addition to stderr.
	File string
	// Console defaults to os.Stderr.
	Console io.Writer
}

// Rotation limits for the diagnostic log file.
const (
	MaxSizeMB  = 5
	MaxBackups = 3
	MaxAgeDays = 14
)

// Setup installs the global logger and returns a closer for the log file.
// Hooks must not fail because diagnostics cannot be written, so a log file
// that cannot be created is skipped.
func Setup(opts Options) io.Closer {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console}}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err == nil {
			rotating := &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    MaxSizeMB,
				MaxBackups: MaxBackups,
				MaxAge:     MaxAgeDays,
			}
			writers = append(writers, rotating)
			closer = rotating
		}
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()

	SetVerbose(opts.Verbose)
	return closer
}

// SetVerbose switches the global level between debug and info.
func SetVerbose(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Quiet raises the global level to warn unless debug logging was requested.
// Hook commands call this so normal output does not reach the host tool.
func Quiet() {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
