package config

import (
	"os"
	"path/filepath"
)

func loadProductionConfig(cfg *Config) {
	configDir := os.Getenv("CONFIG_DIRECTORY")
	if configDir == "" {
		configDir = "/config"
	}

	cfg.DatabaseDebug = false
	cfg.DatabaseFilePath = filepath.Join(configDir, "library.sqlite")
	cfg.ServerHost = "0.0.0.0"
	cfg.UserConfigFilePath = filepath.Join(configDir, "config.yaml")
}
