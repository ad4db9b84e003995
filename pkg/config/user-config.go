package config

import (
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// UserConfig holds the user-editable settings: which interpreter to launch
// per story format, and how to talk to IFDB.
type UserConfig struct {
	// Launchers maps a canonical format name (e.g. "zcode", "glulx") to the
	// interpreter command used to launch releases of that format.
	Launchers map[string]string `koanf:"launchers"`
	// ResourceOpener is the command used to open auxiliary story resources
	// (hint maps, notes, ...).
	ResourceOpener string `koanf:"resource_opener"`
	IFDB           IFDB   `koanf:"ifdb"`
}

type IFDB struct {
	BaseURL           string `koanf:"base_url"`
	FetchMetadata     bool   `koanf:"fetch_metadata"`
	FetchCoverArt     bool   `koanf:"fetch_cover_art"`
	RequestsPerMinute int    `koanf:"requests_per_minute"`
}

func defaultUserConfig() *UserConfig {
	return &UserConfig{
		Launchers: map[string]string{},
		IFDB: IFDB{
			BaseURL:           "https://ifdb.tads.org",
			FetchMetadata:     true,
			FetchCoverArt:     true,
			RequestsPerMinute: 6,
		},
	}
}

// LoadUserConfig reads the user config file (yaml), overlaying GROTESQUE_*
// environment variables. A missing file just yields the defaults.
func LoadUserConfig(path string) (*UserConfig, error) {
	k := koanf.New(".")

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.WithStack(err)
		}
	}

	err := k.Load(env.Provider("GROTESQUE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "GROTESQUE_")), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := defaultUserConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	return cfg, nil
}

// SaveUserConfig writes the user config back out as yaml.
func SaveUserConfig(cfg *UserConfig, path string) error {
	data, err := yaml.Parser().Marshal(flatten(cfg))
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, data, 0644)) //nolint:gosec
}

func flatten(cfg *UserConfig) map[string]interface{} {
	return map[string]interface{}{
		"launchers":       cfg.Launchers,
		"resource_opener": cfg.ResourceOpener,
		"ifdb": map[string]interface{}{
			"base_url":            cfg.IFDB.BaseURL,
			"fetch_metadata":      cfg.IFDB.FetchMetadata,
			"fetch_cover_art":     cfg.IFDB.FetchCoverArt,
			"requests_per_minute": cfg.IFDB.RequestsPerMinute,
		},
	}
}

// Launcher returns the configured interpreter command for a format, or the
// empty string when none is set.
func (uc *UserConfig) Launcher(format string) string {
	if uc == nil || uc.Launchers == nil {
		return ""
	}
	return uc.Launchers[format]
}
