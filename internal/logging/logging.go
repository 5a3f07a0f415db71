package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the rotating log file kept in the configured log directory.
const LogFileName = "sprint-health.log"

// Logger sinks. Init sets the console; AttachFile adds the file once the
// configuration is known.
var (
	console io.Writer = os.Stderr
	file    *lumberjack.Logger
)

// Init sets the global level and a console-only logger on stderr.
func Init(verbose bool) {
	InitWithWriter(verbose, os.Stderr)
}

// InitWithWriter is Init with a caller-chosen console sink. A file sink
// attached earlier is closed and dropped.
func InitWithWriter(verbose bool, out *os.File) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	console = zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}
	if file != nil {
		_ = file.Close()
		file = nil
	}
	rebuild()
}

// AttachFile adds a rotating file sink in dir alongside the console. Calling
// it again moves the sink to the new directory.
func AttachFile(dir string) error {
	if dir == "" {
		return fmt.Errorf("log directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log directory %q: %w", dir, err)
	}
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return fmt.Errorf("log directory %q is not writable: %w", dir, err)
	}
	_ = os.Remove(testFile)

	if file != nil {
		_ = file.Close()
	}
	file = &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    8, // megabytes
		MaxBackups: 10,
		MaxAge:     90, // days
		Compress:   true,
	}
	rebuild()
	return nil
}

// Close flushes and closes the file sink, if any.
func Close() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	rebuild()
	return err
}

func rebuild() {
	var w io.Writer = console
	if file != nil {
		w = zerolog.MultiLevelWriter(console, file)
	}
	log.Logger = zerolog.New(w).
		With().
		Timestamp().
		Str("service", "sprint-health").
		Logger()
}
