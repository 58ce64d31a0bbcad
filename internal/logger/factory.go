package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterStrategy defines interface for creating log writers
type WriterStrategy interface {
	CreateWriter(output io.Writer) io.Writer
}

// JSONWriterStrategy writes raw zerolog JSON
type JSONWriterStrategy struct{}

func (jws *JSONWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return output
}

// ConsoleWriterStrategy creates human readable writers
type ConsoleWriterStrategy struct {
	NoColor bool
}

func (cws *ConsoleWriterStrategy) CreateWriter(output io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
		NoColor:    cws.NoColor,
	}
}

// WriterFactory creates writers based on format
type WriterFactory struct {
	strategies map[LogFormat]WriterStrategy
	console    io.Writer
}

// NewWriterFactory creates a new writer factory
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{
		strategies: map[LogFormat]WriterStrategy{
			FormatJSON:    &JSONWriterStrategy{},
			FormatConsole: &ConsoleWriterStrategy{NoColor: false},
			FormatText:    &ConsoleWriterStrategy{NoColor: true},
		},
		console: os.Stderr,
	}
}

// CreateConsoleWriter creates a console writer
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	strategy, exists := wf.strategies[format]
	if !exists {
		strategy = &ConsoleWriterStrategy{}
	}
	return strategy.CreateWriter(wf.console)
}

// CreateFileWriter creates a rotating file writer
func (wf *WriterFactory) CreateFileWriter(cfg LoggerConfig) io.Writer {
	finalPath := buildLogPath(cfg)

	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		finalPath = cfg.FilePath
	}

	rotating := &lumberjack.Logger{
		Filename:   finalPath,
		MaxSize:    cfg.MaxSizeMB,
		LocalTime:  true,
		MaxBackups: cfg.MaxBackups,
	}

	// files never get ANSI colors
	if cfg.Format == FormatConsole || cfg.Format == FormatText {
		return (&ConsoleWriterStrategy{NoColor: true}).CreateWriter(rotating)
	}
	return (&JSONWriterStrategy{}).CreateWriter(rotating)
}

func buildLogPath(cfg LoggerConfig) string {
	if cfg.SessionID == "" {
		return cfg.FilePath
	}
	return filepath.Join(filepath.Dir(cfg.FilePath), "sessions", cfg.SessionID, filepath.Base(cfg.FilePath))
}
