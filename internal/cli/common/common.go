package common

import (
	"os"
	"path/filepath"

	"github.com/xxxsen/s3browse/internal/config"
)

const (
	// ConfigFlag is the CLI flag name used to specify an explicit config path.
	ConfigFlag = "config"

	defaultConfigName = "config.json"
	systemConfigPath  = "/etc/s3browse.json"
)

// LoadConfig resolves the configuration file respecting precedence rules:
// the explicit path, then ./config.json, then the system path.
func LoadConfig(explicit string) (*config.Config, error) {
	return config.LoadFirst(SearchPaths(explicit)...)
}

// SearchPaths lists candidate config files in lookup order.
func SearchPaths(explicit string) []string {
	paths := make([]string, 0, 3)
	if explicit != "" {
		paths = append(paths, explicit)
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, defaultConfigName))
	}
	return append(paths, systemConfigPath)
}
