package logger

import (
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/adstrace/internal/common"
	"github.com/aleister1102/adstrace/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFormat represents available log formats
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	FormatText
)

// LoggerConfig holds resolved configuration for logger setup
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
}

// New creates a zerolog logger from the application log configuration.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	lc := convertConfig(cfg)

	if lc.EnableFile && lc.FilePath == "" {
		return zerolog.Logger{}, common.NewValidationError("log_file", lc.FilePath, "file path required when file logging enabled")
	}

	writers := createWriters(lc)
	if len(writers) == 0 {
		return zerolog.Logger{}, common.NewError("no log output writers configured")
	}

	multiWriter := zerolog.MultiLevelWriter(writers...)
	instance := zerolog.New(multiWriter).
		Level(lc.Level).
		With().
		Timestamp().
		Logger()

	zerolog.SetGlobalLevel(lc.Level)
	stdlog.SetFlags(0)
	stdlog.SetOutput(instance)

	return instance, nil
}

func convertConfig(cfg config.LogConfig) LoggerConfig {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	maxSize := cfg.MaxLogSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	maxBackups := cfg.MaxLogBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}

	return LoggerConfig{
		Level:         level,
		Format:        parseFormat(cfg.LogFormat),
		EnableConsole: true,
		EnableFile:    cfg.LogFile != "",
		FilePath:      cfg.LogFile,
		MaxSizeMB:     maxSize,
		MaxBackups:    maxBackups,
	}
}

func parseFormat(formatStr string) LogFormat {
	switch strings.ToLower(formatStr) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatConsole
	}
}

func createWriters(lc LoggerConfig) []io.Writer {
	var writers []io.Writer

	if lc.EnableConsole {
		writers = append(writers, consoleWriter(lc.Format, os.Stderr, false))
	}

	if lc.EnableFile {
		if err := os.MkdirAll(filepath.Dir(lc.FilePath), 0755); err == nil {
			fileSink := &lumberjack.Logger{
				Filename:   lc.FilePath,
				MaxSize:    lc.MaxSizeMB,
				LocalTime:  true,
				MaxBackups: lc.MaxBackups,
			}
			if lc.Format == FormatJSON {
				writers = append(writers, fileSink)
			} else {
				writers = append(writers, consoleWriter(lc.Format, fileSink, true))
			}
		}
	}

	return writers
}

func consoleWriter(format LogFormat, sink io.Writer, noColor bool) io.Writer {
	if format == FormatJSON {
		return sink
	}
	return zerolog.ConsoleWriter{
		Out:     sink,
		NoColor: noColor || format == FormatText,
	}
}
