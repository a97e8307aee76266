// Package config loads the backtester configuration from YAML, with .env
// and environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration of a backtest invocation.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	Data     DataConfig     `yaml:"data"`
	Log      LogConfig      `yaml:"log"`
}

// BacktestConfig bounds the replay window and parameterizes the simulation.
type BacktestConfig struct {
	StartTS        int64   `yaml:"start_ts"` // unix ms, inclusive
	EndTS          int64   `yaml:"end_ts"`   // unix ms, inclusive
	SeedCash       float64 `yaml:"seed_cash"`
	FeeRate        float64 `yaml:"fee_rate"`          // proportional, fixed per run
	MaxVolumeRatio float64 `yaml:"max_volume_ratio"`  // per-order fill cap vs bar volume; 0 = uncapped
	AssetID        int     `yaml:"asset_id"`          // 0 = BTCUSDT
	PaceBarsPerSec float64 `yaml:"pace_bars_per_sec"` // 0 = replay at full speed
}

// DataConfig selects and locates the market-data source.
type DataConfig struct {
	Source string `yaml:"source"` // sqlite | parquet | csv
	DSN    string `yaml:"dsn"`    // sqlite file path, or ":memory:"
	Table  string `yaml:"table"`  // sqlite kline table
	Path   string `yaml:"path"`   // parquet file/dir or csv fixture
}

// LogConfig controls format, level, and the optional rotating log file.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
	File   string `yaml:"file"`   // when set, logs also rotate into this file
}

// Load reads the YAML config at path, after loading .env if present.
// Environment variables override matching YAML keys.
func Load(path string) (*Config, error) {
	// Load .env if present (missing file is not an error).
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Validate rejects configurations the engine would refuse anyway, with a
// clearer message at startup.
func (c *Config) Validate() error {
	if c.Backtest.EndTS < c.Backtest.StartTS {
		return fmt.Errorf("config.Validate: end_ts %d before start_ts %d", c.Backtest.EndTS, c.Backtest.StartTS)
	}
	if c.Backtest.FeeRate < 0 {
		return fmt.Errorf("config.Validate: negative fee_rate %.6f", c.Backtest.FeeRate)
	}
	if c.Backtest.SeedCash < 0 {
		return fmt.Errorf("config.Validate: negative seed_cash %.2f", c.Backtest.SeedCash)
	}
	switch c.Data.Source {
	case "sqlite", "parquet", "csv":
	default:
		return fmt.Errorf("config.Validate: unknown data source %q", c.Data.Source)
	}
	return nil
}

// applyEnvOverrides overrides fields from well-known environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CTRADE_DSN"); v != "" {
		cfg.Data.DSN = v
	}
	if v := os.Getenv("CTRADE_DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
}

// setDefaults fills required values with sensible defaults.
func setDefaults(cfg *Config) {
	if cfg.Backtest.SeedCash == 0 {
		cfg.Backtest.SeedCash = 10000
	}
	if cfg.Backtest.FeeRate == 0 {
		cfg.Backtest.FeeRate = 0.001 // 10 bps taker fee
	}
	if cfg.Data.Source == "" {
		cfg.Data.Source = "sqlite"
	}
	if cfg.Data.DSN == "" {
		cfg.Data.DSN = "ctrade.db"
	}
	if cfg.Data.Table == "" {
		cfg.Data.Table = "btcusdt_1m"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
