package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/habitlens/internal/constants"
)

// Logger is the process-wide logger. It stays nil until Init runs, and
// every helper below is a no-op until then.
var Logger *log.Logger

var rotator *lumberjack.Logger

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	// Dir holds the logs/ directory.
	Dir string
	// Level is a charmbracelet/log level name. Empty means warn.
	Level string
	// Format is text or json.
	Format string
	// Debug forces debug level, caller reporting and a stderr mirror.
	Debug bool
}

// FilePath is where Init writes logs for dir
func FilePath(dir string) string {
	return filepath.Join(dir, "logs", constants.AppName+".log")
}

func Init(cfg Config) error {
	level := log.WarnLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if cfg.Debug {
		level = log.DebugLevel
	}

	formatter := log.TextFormatter
	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
	case FormatJSON:
		formatter = log.JSONFormatter
	default:
		return fmt.Errorf("invalid log format %q", cfg.Format)
	}

	path := FilePath(cfg.Dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := Close(); err != nil {
		return err
	}
	rotator = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	var w io.Writer = rotator
	if cfg.Debug {
		w = io.MultiWriter(os.Stderr, rotator)
	}

	Logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
	})
	return nil
}

// Close releases the log file. Logging after Close reopens it.
func Close() error {
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

// With returns a sub-logger carrying keyvals, or a discarding logger
// before Init.
func With(keyvals ...interface{}) *log.Logger {
	if Logger == nil {
		return log.New(io.Discard)
	}
	return Logger.With(keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs msg and exits with status 1
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	_ = Close()
	os.Exit(1)
}
