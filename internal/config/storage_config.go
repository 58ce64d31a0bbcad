package config

// StorageConfig defines configuration for the search archive
type StorageConfig struct {
	ArchiveEnabled   bool   `json:"archive_enabled" yaml:"archive_enabled"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=zstd snappy gzip none uncompressed"`
	ParquetBasePath  string `json:"parquet_base_path,omitempty" yaml:"parquet_base_path,omitempty"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		ArchiveEnabled:   DefaultStorageArchiveEnabled,
		CompressionCodec: DefaultStorageCompressionCodec,
		ParquetBasePath:  DefaultStorageParquetBasePath,
	}
}
