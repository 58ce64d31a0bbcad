package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/aleister1102/motosearch/internal/config"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteCredentialStore keeps named credentials in a SQLite table
type SQLiteCredentialStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteCredentialStore opens (creating if needed) the database at cfg.SQLiteDBPath
func NewSQLiteCredentialStore(cfg config.CredentialConfig, logger zerolog.Logger) (*SQLiteCredentialStore, error) {
	logger = logger.With().Str("component", "SQLiteCredentialStore").Logger()
	dataSourceName := cfg.SQLiteDBPath
	if dataSourceName == "" {
		return nil, common.NewConfigurationError("credential_config", "sqlite_db_path", "path is empty")
	}

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create credential database directory")
		return nil, fmt.Errorf("failed to create credential database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		logger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open credential database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// SQLite allows a single writer
	dbInstance.SetMaxOpenConns(1)

	store := &SQLiteCredentialStore{
		db:     dbInstance,
		logger: logger,
	}

	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().Str("path", dataSourceName).Msg("Credential database ready")
	return store, nil
}

// InitSchema creates the credentials table if it doesn't already exist
func (s *SQLiteCredentialStore) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS credentials (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize credentials schema")
		return err
	}
	return nil
}

// Get returns the value stored under name
func (s *SQLiteCredentialStore) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value == "") {
		return "", common.WrapError(common.ErrNotFound, "credential "+name)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("Failed to read credential")
		return "", fmt.Errorf("failed to read credential %s: %w", name, err)
	}
	return value, nil
}

// Put upserts value under name
func (s *SQLiteCredentialStore) Put(ctx context.Context, name, value string) error {
	query := `
	INSERT INTO credentials (name, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, name, value, time.Now().UTC()); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("Failed to store credential")
		return fmt.Errorf("failed to store credential %s: %w", name, err)
	}
	s.logger.Info().Str("name", name).Msg("Credential stored")
	return nil
}

// GetAPIKey implements CredentialStore
func (s *SQLiteCredentialStore) GetAPIKey(ctx context.Context) (string, error) {
	return s.Get(ctx, FirecrawlAPIKeySlot)
}

// SaveAPIKey implements CredentialStore
func (s *SQLiteCredentialStore) SaveAPIKey(ctx context.Context, key string) error {
	trimmed, err := validateAPIKey(key)
	if err != nil {
		return err
	}
	return s.Put(ctx, FirecrawlAPIKeySlot, trimmed)
}

// Close closes the database connection
func (s *SQLiteCredentialStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
