package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Grid     GridConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// GridConfig holds the ledger view defaults.
type GridConfig struct {
	PageSize       int           `mapstructure:"page_size"`
	PageSizes      []int         `mapstructure:"page_sizes"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat     string `mapstructure:"date_format"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string
}

const maxDebounce = 5 * time.Second

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "jaskgrid", "jaskgrid.db"))
	v.SetDefault("grid.page_size", 10)
	v.SetDefault("grid.page_sizes", []int{10, 25, 50, 100})
	v.SetDefault("grid.search_debounce", "300ms")
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.timezone", "Local")
}

// Path returns the config file location: $JASKGRID_CONFIG or ~/.config/jaskgrid/config.toml.
func Path() string {
	if p := os.Getenv("JASKGRID_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "jaskgrid", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix JASKGRID_.
// An explicit path takes precedence over JASKGRID_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv("JASKGRID_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "jaskgrid"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("JASKGRID")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects grid settings the engine cannot run with.
func (c Config) Validate() error {
	if c.Grid.PageSize <= 0 {
		return fmt.Errorf("grid.page_size must be positive, got %d", c.Grid.PageSize)
	}
	for _, n := range c.Grid.PageSizes {
		if n <= 0 {
			return fmt.Errorf("grid.page_sizes must be positive, got %d", n)
		}
	}
	if c.Grid.SearchDebounce < 0 || c.Grid.SearchDebounce > maxDebounce {
		return fmt.Errorf("grid.search_debounce must be within 0..%s, got %s", maxDebounce, c.Grid.SearchDebounce)
	}
	return nil
}

// Location resolves UI.Timezone, falling back to the local zone.
func (c Config) Location() (*time.Location, error) {
	switch c.UI.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("load timezone %q: %w", c.UI.Timezone, err)
	}
	return loc, nil
}

// Save writes the provided config to path (or Path() when empty), creating
// the config directory if needed. The ledger browser uses it to persist the
// preferred page size.
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("grid.page_size", cfg.Grid.PageSize)
	v.Set("grid.page_sizes", cfg.Grid.PageSizes)
	v.Set("grid.search_debounce", cfg.Grid.SearchDebounce.String())
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
