package config

const (
	// Fetcher Defaults
	DefaultFetcherEngine             = EngineFirecrawl
	DefaultFetcherAPIBaseURL         = "https://api.firecrawl.dev"
	DefaultFetcherTimeoutSecs        = 60
	DefaultFetcherMaxRetries         = 2
	DefaultFetcherRateLimitPerSecond = 2
	DefaultFetcherUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultFetcherMaxContentSize     = 10 * 1024 * 1024
	DefaultFetcherRetryBaseDelayMs   = 500
	DefaultFetcherMaxRedirects       = 10

	// Headless Defaults
	DefaultHeadlessPageLoadTimeoutSecs = 30

	// Credential Defaults
	DefaultCredentialSQLiteDBPath = "database/credentials/credentials.db"

	// Search Defaults
	DefaultSearchMaxResults = 50

	// Storage Defaults
	DefaultStorageArchiveEnabled   = false
	DefaultStorageParquetBasePath  = "database"
	DefaultStorageCompressionCodec = "zstd"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// ConfigPathEnvVar overrides the config file lookup
	ConfigPathEnvVar = "MOTOSEARCH_CONFIG_PATH"
)

// Fetch engines
const (
	EngineFirecrawl = "firecrawl"
	EngineStatic    = "static"
	EngineHeadless  = "headless"
)
