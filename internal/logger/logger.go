package logger

import (
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level string
	File  string
	JSON  bool
}

// Init builds the process logger, installs it as the charmbracelet default and
// redirects the standard library logger into it. The returned func flushes the
// rotating file, if any.
func Init(cfg Config) (*log.Logger, func() error, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	var writer io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, err
		}
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		writer = io.MultiWriter(os.Stderr, fileWriter)
		closeFn = fileWriter.Close
	}

	opts := log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "unlonely",
	}
	if cfg.JSON {
		opts.Formatter = log.JSONFormatter
	}

	l := log.NewWithOptions(writer, opts)
	log.SetDefault(l)

	std := l.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
	stdlog.SetFlags(0)
	stdlog.SetOutput(std.Writer())

	return l, closeFn, nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
