package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/cpanmeta/pkg/errors"
	"github.com/matzehuels/cpanmeta/pkg/integrations/cpanmeta"
	"github.com/matzehuels/cpanmeta/pkg/navsync"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// Config is the on-disk configuration. Every field is optional.
//
//	base_url = "https://cpanmeta.grinnz.com"
//	api_version = 2
//	cache_ttl = "1h"
//	redis_addr = "redis://localhost:6379/0"
//	policy = "latest"
//	default_match_mode = "prefix"
//	timeout = "30s"
type Config struct {
	BaseURL          string        `toml:"base_url"`
	APIVersion       int           `toml:"api_version"`
	CacheTTL         time.Duration `toml:"cache_ttl"`
	RedisAddr        string        `toml:"redis_addr"`
	Policy           string        `toml:"policy"`
	DefaultMatchMode string        `toml:"default_match_mode"`
	Timeout          time.Duration `toml:"timeout"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		BaseURL:          cpanmeta.DefaultBaseURL,
		APIVersion:       cpanmeta.DefaultAPIVersion,
		CacheTTL:         time.Hour,
		Policy:           navsync.LatestWins.String(),
		DefaultMatchMode: string(search.DefaultMatchMode),
		Timeout:          30 * time.Second,
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, keys[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks field values.
func (c Config) Validate() error {
	if err := apperrors.ValidateURL(c.BaseURL); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "base_url")
	}
	if err := apperrors.ValidateAPIVersion(c.APIVersion); err != nil {
		return err
	}
	if c.CacheTTL < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "cache_ttl must not be negative")
	}
	if c.Timeout < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "timeout must not be negative")
	}
	if _, ok := navsync.ParsePolicy(c.Policy); !ok {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown policy %q (want latest or last-resolved)", c.Policy)
	}
	if _, ok := search.ParseMatchMode(c.DefaultMatchMode); !ok {
		return apperrors.New(apperrors.ErrCodeInvalidMatchMode, "unknown default_match_mode %q", c.DefaultMatchMode)
	}
	return nil
}

// ResponsePolicy returns the parsed policy. Call after Validate.
func (c Config) ResponsePolicy() navsync.Policy {
	p, _ := navsync.ParsePolicy(c.Policy)
	return p
}

// MatchMode returns the parsed default match mode, or prefix if unset.
func (c Config) MatchMode() search.MatchMode {
	if m, ok := search.ParseMatchMode(c.DefaultMatchMode); ok {
		return m
	}
	return search.DefaultMatchMode
}

// loadConfig reads the config selected by --config.
func (c *CLI) loadConfig() (Config, error) {
	path, err := c.resolveConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// writeDefaultConfig creates path with the default values. It refuses to
// overwrite an existing file.
func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configInitCommand())
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}

func (c *CLI) configInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolveConfigPath()
			if err != nil {
				return err
			}
			if err := writeDefaultConfig(path); err != nil {
				if errors.Is(err, fs.ErrExist) {
					printWarning("Config already exists")
					printDetail("%s", path)
					return nil
				}
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Wrote default config")
			printFile(path)
			return nil
		},
	}
}
