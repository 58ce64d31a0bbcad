package datastore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/aleister1102/motosearch/internal/config"
	"github.com/aleister1102/motosearch/internal/models"
	"github.com/aleister1102/motosearch/internal/urlhandler"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

const searchesDir = "searches"

// ListingArchive writes one parquet file per search batch under ParquetBasePath/searches
type ListingArchive struct {
	config      config.StorageConfig
	logger      zerolog.Logger
	fileManager *common.FileManager
}

// NewListingArchive creates an archive; it fails when no base path is configured
func NewListingArchive(cfg config.StorageConfig, logger zerolog.Logger) (*ListingArchive, error) {
	if cfg.ParquetBasePath == "" {
		return nil, common.NewValidationError("parquet_base_path", cfg.ParquetBasePath, "ParquetBasePath is not configured for the listing archive")
	}
	return &ListingArchive{
		config:      cfg,
		logger:      logger.With().Str("component", "ListingArchive").Logger(),
		fileManager: common.NewFileManager(logger),
	}, nil
}

// BatchPath returns the file path used for sessionID
func (la *ListingArchive) BatchPath(sessionID string) string {
	return filepath.Join(la.config.ParquetBasePath, searchesDir, urlhandler.SanitizeFilename(sessionID)+".parquet")
}

// compressionOption maps the configured codec name to a writer option
func (la *ListingArchive) compressionOption() parquet.WriterOption {
	switch strings.ToLower(la.config.CompressionCodec) {
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "none", "uncompressed", "":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		la.logger.Warn().Str("codec", la.config.CompressionCodec).Msg("Unsupported compression codec string, defaulting to Uncompressed")
		return parquet.Compression(&parquet.Uncompressed)
	}
}

// ArchiveSearch writes the listings of a report, overwriting any previous file for
// the same session. Empty batches are skipped and return "".
func (la *ListingArchive) ArchiveSearch(ctx context.Context, report models.SearchReport) (string, error) {
	if len(report.Listings) == 0 {
		return "", nil
	}
	if report.SessionID == "" {
		return "", common.NewValidationError("session_id", report.SessionID, "session ID is required to archive a search")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filePath := la.BatchPath(report.SessionID)
	if err := la.fileManager.EnsureDirectory(filepath.Dir(filePath), 0755); err != nil {
		return "", err
	}

	searchedAt := report.StartedAt
	if searchedAt.IsZero() {
		searchedAt = time.Now()
	}
	rows := make([]models.ParquetListingRecord, 0, len(report.Listings))
	for i, r := range report.Listings {
		rows = append(rows, ToParquetListing(r, report.SessionID, i, searchedAt))
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", common.WrapError(err, "failed to create listing archive file: "+filePath)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[models.ParquetListingRecord](file, la.compressionOption())
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return "", common.WrapError(err, "failed to write listings to parquet file")
	}
	if err := writer.Close(); err != nil {
		return "", common.WrapError(err, "failed to close parquet writer")
	}

	la.logger.Info().
		Str("session_id", report.SessionID).
		Str("file_path", filePath).
		Int("records_written", len(rows)).
		Msg("Archived search listings")
	return filePath, nil
}

// LoadSearch reads back the listings archived for sessionID, in their original order.
// A missing batch returns an error wrapping common.ErrNotFound.
func (la *ListingArchive) LoadSearch(ctx context.Context, sessionID string) ([]models.ListingRecord, error) {
	filePath := la.BatchPath(sessionID)

	osFile, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.WrapError(common.ErrNotFound, "archived search "+sessionID)
		}
		return nil, common.WrapError(err, "failed to open listing archive: "+filePath)
	}
	defer osFile.Close()

	reader := parquet.NewGenericReader[models.ParquetListingRecord](osFile)
	defer reader.Close()

	rows := make([]models.ParquetListingRecord, 0, reader.NumRows())
	for {
		if result := CheckCancellationWithLog(ctx, la.logger, "load archived search"); result.Cancelled {
			return nil, result.Error
		}

		batch := make([]models.ParquetListingRecord, 64)
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, common.WrapError(err, "error reading listings from parquet file: "+filePath)
		}
		if n == 0 {
			break
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position < rows[j].Position
	})

	listings := make([]models.ListingRecord, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, FromParquetListing(row))
	}

	la.logger.Debug().Int("count", len(listings)).Str("file", filePath).Msg("Loaded archived search")
	return listings, nil
}
