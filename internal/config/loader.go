package config

import (
	"os"
	"path/filepath"
)

// GetConfigPath determines the configuration file path.
// Priority:
// 1. the path passed in (from the -config flag), if it exists
// 2. MOTOSEARCH_CONFIG_PATH environment variable
// 3. config.yaml / config.json in the current working directory
// 4. config.yaml / config.json in the executable's directory
// An explicitly provided path that does not exist yields "".
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" {
		if fileExists(configFilePathFlag) {
			return configFilePathFlag
		}
		return ""
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" && fileExists(envPath) {
		return envPath
	}

	var locations []string
	cwd, errCwd := os.Getwd()
	if errCwd == nil {
		locations = append(locations, cwd)
	}
	if exePath, err := os.Executable(); err == nil {
		if exeDir := filepath.Dir(exePath); exeDir != cwd {
			locations = append(locations, exeDir)
		}
	}

	for _, loc := range locations {
		for _, file := range []string{"config.yaml", "config.json"} {
			path := filepath.Join(loc, file)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
