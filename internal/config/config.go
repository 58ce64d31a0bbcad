package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// maxConfigFileSize bounds config file reads
const maxConfigFileSize = 10 * 1024 * 1024

type GlobalConfig struct {
	CredentialConfig CredentialConfig `json:"credential_config,omitempty" yaml:"credential_config,omitempty"`
	FetcherConfig    FetcherConfig    `json:"fetcher_config,omitempty" yaml:"fetcher_config,omitempty"`
	LogConfig        LogConfig        `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	SearchConfig     SearchConfig     `json:"search_config,omitempty" yaml:"search_config,omitempty"`
	StorageConfig    StorageConfig    `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		CredentialConfig: NewDefaultCredentialConfig(),
		FetcherConfig:    NewDefaultFetcherConfig(),
		LogConfig:        NewDefaultLogConfig(),
		SearchConfig:     NewDefaultSearchConfig(),
		StorageConfig:    NewDefaultStorageConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is used if the file extension is .yaml or .yml. Values absent from the
// file keep their defaults.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
		}
		logger.Debug().Msg("No config file found, using defaults")
		return cfg, nil
	}

	fileManager := common.NewFileManager(logger)
	data, err := fileManager.ReadFile(filePath, common.FileReadOptions{MaxSize: maxConfigFileSize})
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Msg("Loaded config file")
	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}
