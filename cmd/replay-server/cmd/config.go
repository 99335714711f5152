package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	replay "github.com/swordfishtr/replay-server"
)

// Config is the resolved server configuration.
type Config struct {
	Port            int    `mapstructure:"port"`
	ReplaysDir      string `mapstructure:"replays_dir"`
	PortalDir       string `mapstructure:"portal_dir"`
	MaxCache        int    `mapstructure:"max_cache"`
	ScanConcurrency int    `mapstructure:"scan_concurrency"`
	Template        string `mapstructure:"template"`
	AccessURL       string `mapstructure:"access_url"`
	LogLevel        string `mapstructure:"log_level"`
	LogFormat       string `mapstructure:"log_format"`

	Compression struct {
		Enabled bool `mapstructure:"enabled"`
		Level   int  `mapstructure:"level"`
	} `mapstructure:"compression"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 3000)
	v.SetDefault("replays_dir", "")
	v.SetDefault("portal_dir", "")
	v.SetDefault("max_cache", replay.DefaultCacheSize)
	v.SetDefault("scan_concurrency", replay.DefaultScanConcurrency)
	v.SetDefault("template", "")
	v.SetDefault("access_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("compression.enabled", true)
	v.SetDefault("compression.level", replay.DefaultCompression)
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.ReplaysDir == "" {
		errs = append(errs, errors.New("replays_dir is required"))
	} else if info, err := os.Stat(c.ReplaysDir); err != nil {
		errs = append(errs, fmt.Errorf("replays_dir: %w", err))
	} else if !info.IsDir() {
		errs = append(errs, fmt.Errorf("replays_dir: %s is not a directory", c.ReplaysDir))
	}

	if c.MaxCache < 1 {
		errs = append(errs, fmt.Errorf("max_cache must be at least 1, got %d", c.MaxCache))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if c.Compression.Enabled && (c.Compression.Level < 1 || c.Compression.Level > 3) {
		errs = append(errs, fmt.Errorf("compression.level must be 1-3, got %d", c.Compression.Level))
	}

	return errors.Join(errs...)
}

// openOptions maps the configuration onto server options.
func (c *Config) openOptions() []replay.OpenOption {
	return []replay.OpenOption{
		replay.WithCacheSize(c.MaxCache),
		replay.WithScanConcurrency(c.ScanConcurrency),
		replay.WithPortalDir(c.PortalDir),
		replay.WithTemplate(c.Template),
		replay.WithAccessURL(c.AccessURL),
		replay.WithCompression(c.Compression.Enabled, c.Compression.Level),
	}
}
