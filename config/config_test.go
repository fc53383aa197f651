package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hgreenfield1/Kalshi/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Kalshi.Env)
	assert.Equal(t, 100*time.Millisecond, cfg.KalshiSpacing())
	assert.Equal(t, 100*time.Millisecond, cfg.MLBSpacing())
	assert.Equal(t, "https://statsapi.mlb.com", cfg.MLB.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.ReconnectBackoff())
	assert.Equal(t, 6.0, cfg.Model.AlphaT)
	assert.Equal(t, 12.0, cfg.Model.AlphaProb)
	assert.Equal(t, "simple", cfg.Strategy.Name)
	assert.Equal(t, 100.0, cfg.Strategy.InitialCash)
	assert.Equal(t, []string{"KXMLBGAME"}, cfg.Live.Series)
	assert.Equal(t, 10*time.Second, cfg.GameRefresh())
	assert.Equal(t, time.Minute, cfg.PregameWindow())
	assert.Equal(t, time.Minute, cfg.TickInterval())
	assert.Equal(t, "kalshi.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_YAMLValues(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
kalshi:
  env: demo
  min_request_spacing_ms: 250
strategy:
  name: conservative
  initial_cash: 500
  min_position: -3
  max_position: 3
live:
  tickers: [KXMLBGAME-25JUN13ATHKC-KC]
backtest:
  workers: 4
  tick_seconds: 30
metrics:
  addr: ":9100"
`))
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Kalshi.Env)
	assert.Equal(t, 250*time.Millisecond, cfg.KalshiSpacing())
	assert.Equal(t, "conservative", cfg.Strategy.Name)
	assert.Equal(t, -3, cfg.Strategy.MinPosition)
	assert.Empty(t, cfg.Live.Series)
	assert.Equal(t, []string{"KXMLBGAME-25JUN13ATHKC-KC"}, cfg.Live.Tickers)
	assert.Equal(t, 4, cfg.Backtest.Workers)
	assert.Equal(t, 30*time.Second, cfg.TickInterval())
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KALSHI_KEY_ID", "key-123")
	t.Setenv("KALSHI_KEY_FILE", "/secrets/kalshi.pem")
	t.Setenv("STORAGE_DSN", ":memory:")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load(writeConfig(t, "kalshi:\n  key_id: from-yaml\n"))
	require.NoError(t, err)

	assert.Equal(t, "key-123", cfg.Kalshi.KeyID)
	assert.Equal(t, "/secrets/kalshi.pem", cfg.Kalshi.KeyFile)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "kalshi: [unclosed\n"))
	assert.Error(t, err)
}
