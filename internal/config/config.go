// -- internal/config/config.go --
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Ghost    GhostConfig    `mapstructure:"ghost" yaml:"ghost"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// DatabaseConfig holds the database connection details. The database is
// optional; persistence is skipped when URL is empty.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ProviderConfig selects and configures the raw-bundle provider.
type ProviderConfig struct {
	// Mode is "file" for on-disk loader dumps or "http" for a remote
	// loader sidecar.
	Mode string `mapstructure:"mode" yaml:"mode"`
	// Dumps are the loader dump files to load in file mode. JSON and XML
	// dumps are both accepted.
	Dumps []string `mapstructure:"dumps" yaml:"dumps"`
	// BaseURL is the loader sidecar address in http mode.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// RateLimit caps outbound fetches per second in http mode.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	// Burst is the rate limiter burst size.
	Burst int `mapstructure:"burst" yaml:"burst"`
	// Timeout bounds a single fetch.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ResolverConfig configures the selection engine.
type ResolverConfig struct {
	// Concurrency bounds in-flight bundle fetches per selection batch.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// ServerConfig configures the HTTP sidecar.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// AuthSecret enables bearer-token auth on the API when non-empty.
	AuthSecret string `mapstructure:"auth_secret" yaml:"-"`
}

// GhostConfig tunes the ghosted appearance. Unset fields fall back to the
// ghost engine's defaults.
type GhostConfig struct {
	Opacity float64 `mapstructure:"opacity" yaml:"opacity"`
	Color   string  `mapstructure:"color" yaml:"color"`
}

// ColorHex parses the configured ghost color ("#909496", "0x909496" or
// "909496") into a packed RGB value. An unset color yields zero with no
// error.
func (g GhostConfig) ColorHex() (uint32, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(g.Color, "#"), "0x")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > 0xFFFFFF {
		return 0, fmt.Errorf("ghost.color must be an RGB hex value, got %q", g.Color)
	}
	return uint32(v), nil
}

// SetDefaults registers defaults for every section on the given viper
// instance. Call before unmarshalling.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "ifcpanel")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)

	v.SetDefault("provider.mode", "file")
	v.SetDefault("provider.rate_limit", 20.0)
	v.SetDefault("provider.burst", 5)
	v.SetDefault("provider.timeout", 10*time.Second)

	v.SetDefault("resolver.concurrency", 8)

	v.SetDefault("server.addr", ":8087")
}

// Validate rejects configurations the process cannot run with.
func (c *Config) Validate() error {
	switch c.Provider.Mode {
	case "file", "http":
	default:
		return fmt.Errorf("provider.mode must be \"file\" or \"http\", got %q", c.Provider.Mode)
	}
	if c.Provider.Mode == "http" && c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required in http mode")
	}
	if c.Resolver.Concurrency < 0 {
		return fmt.Errorf("resolver.concurrency must not be negative")
	}
	if c.Ghost.Opacity < 0 || c.Ghost.Opacity > 1 {
		return fmt.Errorf("ghost.opacity must be within [0, 1], got %v", c.Ghost.Opacity)
	}
	if _, err := c.Ghost.ColorHex(); err != nil {
		return err
	}
	return nil
}
