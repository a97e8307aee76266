package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
backtest:
  start_ts: 1000
  end_ts: 2000
  seed_cash: 50000
  fee_rate: 0.0005
  max_volume_ratio: 0.1
data:
  source: parquet
  path: ./klines
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), cfg.Backtest.StartTS)
	assert.Equal(t, int64(2000), cfg.Backtest.EndTS)
	assert.Equal(t, 50000.0, cfg.Backtest.SeedCash)
	assert.Equal(t, 0.0005, cfg.Backtest.FeeRate)
	assert.Equal(t, 0.1, cfg.Backtest.MaxVolumeRatio)
	assert.Equal(t, "parquet", cfg.Data.Source)
	assert.Equal(t, "./klines", cfg.Data.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "backtest:\n  end_ts: 100\n"))
	require.NoError(t, err)

	assert.Equal(t, 10000.0, cfg.Backtest.SeedCash)
	assert.Equal(t, 0.001, cfg.Backtest.FeeRate)
	assert.Equal(t, "sqlite", cfg.Data.Source)
	assert.Equal(t, "ctrade.db", cfg.Data.DSN)
	assert.Equal(t, "btcusdt_1m", cfg.Data.Table)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CTRADE_DSN", "/tmp/other.db")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\ndata:\n  dsn: original.db\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/other.db", cfg.Data.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "backtest: [not a map"))
	assert.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		setDefaults(cfg)
		return cfg
	}

	cfg := base()
	cfg.Backtest.StartTS = 100
	cfg.Backtest.EndTS = 50
	assert.ErrorContains(t, cfg.Validate(), "end_ts")

	cfg = base()
	cfg.Backtest.FeeRate = -0.1
	assert.ErrorContains(t, cfg.Validate(), "fee_rate")

	cfg = base()
	cfg.Backtest.SeedCash = -1
	assert.ErrorContains(t, cfg.Validate(), "seed_cash")

	cfg = base()
	cfg.Data.Source = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "data source")
}
