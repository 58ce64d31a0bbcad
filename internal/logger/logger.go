package logger

import (
	"github.com/aleister1102/motosearch/internal/config"
	"github.com/rs/zerolog"
)

// New creates the application logger from config
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}

// NewWithSessionID creates a logger whose file output is grouped by search session
func NewWithSessionID(cfg config.LogConfig, sessionID string) (zerolog.Logger, error) {
	return NewLoggerBuilder().
		WithConfig(cfg).
		WithSessionID(sessionID).
		Build()
}
