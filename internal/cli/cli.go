package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cpanmeta/pkg/buildinfo"
	"github.com/matzehuels/cpanmeta/pkg/cache"
	"github.com/matzehuels/cpanmeta/pkg/integrations"
	"github.com/matzehuels/cpanmeta/pkg/integrations/cpanmeta"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cpanmeta"

	// configFile is the name of the config file inside the config directory.
	configFile = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath overrides the default config location when set by --config.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cpanmeta searches CPAN package, permission and author metadata",
		Long: `cpanmeta is a terminal client for the CPAN meta API. It searches the 02packages index,
module permissions and author records, and understands the page locations of the
web interface, including the old fragment-style links.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/cpanmeta/config.toml)")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.urlCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}

// =============================================================================
// Client Factory
// =============================================================================

// clientFlags are the flags shared by every command that talks to the API.
type clientFlags struct {
	baseURL    string
	apiVersion int
	noCache    bool
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "API host (overrides config)")
	cmd.Flags().IntVar(&f.apiVersion, "api-version", 0, "API version, 1 or 2 (overrides config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the response cache")
}

// apply overlays flag values on cfg and validates the result.
func (f *clientFlags) apply(cfg *Config) error {
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.apiVersion != 0 {
		cfg.APIVersion = f.apiVersion
	}
	return cfg.Validate()
}

// newClient builds an API client backed by the configured cache. The caller
// must close the returned cache.
func (c *CLI) newClient(ctx context.Context, cfg Config, noCache bool) (*cpanmeta.Client, cache.Cache, error) {
	backend, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, nil, err
	}
	client := cpanmeta.NewClient(backend, cfg.CacheTTL, cpanmeta.Options{
		BaseURL:    cfg.BaseURL,
		APIVersion: cfg.APIVersion,
	})
	if cfg.Timeout > 0 {
		client.SetHTTPClient(integrations.NewHTTPClientWithTimeout(cfg.Timeout))
	}
	// Cache keys are host-relative, so mirrors get their own scope.
	if client.BaseURL() != cpanmeta.DefaultBaseURL {
		client.SetKeyer(cache.NewScopedKeyer(nil, cacheScope(client.BaseURL())))
	}
	c.Logger.Debug("api client", "base_url", client.BaseURL(), "version", client.APIVersion(), "cache_ttl", cfg.CacheTTL)
	return client, backend, nil
}

// newCache selects the cache backend: Redis when configured, otherwise the
// XDG file cache. Cache setup failures degrade to no caching.
func (c *CLI) newCache(ctx context.Context, cfg Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "addr", cfg.RedisAddr)
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cannot create cache directory, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheScope is the key prefix for responses from a non-default API host.
func cacheScope(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host + ":"
	}
	return cache.Hash([]byte(baseURL))[:12] + ":"
}

// cacheDir returns the cache directory using XDG standard (~/.cache/cpanmeta/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/cpanmeta/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// resolveConfigPath returns the --config value or the default location.
func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, configFile), nil
}
