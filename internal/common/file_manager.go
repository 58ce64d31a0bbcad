package common

import (
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
)

// FileReadOptions controls how FileManager.ReadFile reads a file
type FileReadOptions struct {
	// MaxSize caps the number of bytes read; 0 means no limit
	MaxSize int64
}

// FileManager provides file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// ReadFile reads a file with the given options
func (fm *FileManager) ReadFile(path string, opts FileReadOptions) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, WrapError(err, "failed to open file: "+path)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, WrapError(err, "failed to stat file: "+path)
	}
	if info.IsDir() {
		return nil, NewValidationError("path", path, "is a directory")
	}
	if opts.MaxSize > 0 && info.Size() > opts.MaxSize {
		return nil, NewValidationError("path", path, "file exceeds maximum size")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, WrapError(err, "failed to read file: "+path)
	}

	fm.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("Read file")
	return data, nil
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return WrapError(err, "failed to create directory: "+path)
	}

	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}
