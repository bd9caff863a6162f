package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/newthinker/sigtrail/internal/collector/binance"
	"github.com/newthinker/sigtrail/internal/collector/coingecko"
	"github.com/newthinker/sigtrail/internal/core"
	"github.com/newthinker/sigtrail/internal/export"
	"github.com/newthinker/sigtrail/internal/notifier/webhook"
	"github.com/newthinker/sigtrail/internal/signals"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Provider ProviderConfig `mapstructure:"provider"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Signals  SignalsConfig  `mapstructure:"signals"`
	Export   export.Config  `mapstructure:"export"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type ServerConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	JobTTLHours int           `mapstructure:"job_ttl_hours"`
	MaxJobs     int           `mapstructure:"max_jobs"`
	JobTimeout  time.Duration `mapstructure:"job_timeout"`
	MaxBodyMB   int           `mapstructure:"max_body_mb"`
}

// LogConfig selects the zap level; empty keeps the logger default.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ProviderConfig lists price collectors in fallback order.
type ProviderConfig struct {
	Order     []string         `mapstructure:"order"`
	CoinGecko coingecko.Config `mapstructure:"coingecko"`
	Binance   binance.Config   `mapstructure:"binance"`
}

type BacktestConfig struct {
	FetchConcurrency int `mapstructure:"fetch_concurrency"`
}

type SignalsConfig struct {
	CTxbt signals.CTxbtConfig `mapstructure:"ctxbt"`
}

// NotifyConfig configures job completion callbacks; an empty webhook url
// disables them.
type NotifyConfig struct {
	Webhook webhook.Config `mapstructure:"webhook"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix("SIGTRAIL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("reading config: %w", err))
	}

	// Expand ${VAR} string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unmarshaling config: %w", err))
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
			JobTimeout:  5 * time.Minute,
			MaxBodyMB:   10,
		},
		Log: LogConfig{
			Level: "info",
		},
		Provider: ProviderConfig{
			Order:     []string{"coingecko"},
			CoinGecko: coingecko.DefaultConfig(),
			Binance:   binance.DefaultConfig(),
		},
		Backtest: BacktestConfig{
			FetchConcurrency: 8,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

var knownProviders = map[string]bool{
	"coingecko": true,
	"binance":   true,
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxJobs < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_jobs must be positive, got %d", c.Server.MaxJobs))
	}
	if c.Server.JobTTLHours < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("job_ttl_hours cannot be negative, got %d", c.Server.JobTTLHours))
	}

	// Provider validation
	if len(c.Provider.Order) == 0 {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("provider.order must name at least one collector"))
	}
	for _, name := range c.Provider.Order {
		if !knownProviders[name] {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown provider %q", name))
		}
	}

	if c.Backtest.FetchConcurrency < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fetch_concurrency cannot be negative, got %d", c.Backtest.FetchConcurrency))
	}

	// Export validation - if type set, check its settings exist
	switch c.Export.Type {
	case "":
	case export.TypeLocalFS:
		if c.Export.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("export.path required when type is localfs"))
		}
	case export.TypeS3:
		if c.Export.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("export.s3.bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown export type %q", c.Export.Type))
	}

	if u := c.Notify.Webhook.URL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("notify.webhook.url must be http(s), got %q", u))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}

	return nil
}

// JobTTL returns the job retention as a duration.
func (c *Config) JobTTL() time.Duration {
	return time.Duration(c.Server.JobTTLHours) * time.Hour
}
