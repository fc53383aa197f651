package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del trader.
type Config struct {
	Kalshi   KalshiConfig   `yaml:"kalshi"`
	MLB      MLBConfig      `yaml:"mlb"`
	Feed     FeedConfig     `yaml:"feed"`
	Model    ModelConfig    `yaml:"model"`
	Strategy StrategyConfig `yaml:"strategy"`
	Live     LiveConfig     `yaml:"live"`
	Backtest BacktestConfig `yaml:"backtest"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// KalshiConfig contiene el entorno, los hosts y las credenciales de Kalshi.
// HTTPBase y WSURL vacíos usan los hosts del entorno.
type KalshiConfig struct {
	Env                 string `yaml:"env"` // prod | demo
	HTTPBase            string `yaml:"http_base"`
	WSURL               string `yaml:"ws_url"`
	KeyID               string `yaml:"key_id"`
	KeyFile             string `yaml:"key_file"` // PEM RSA
	MinRequestSpacingMS int    `yaml:"min_request_spacing_ms"`
}

// MLBConfig controla el cliente de MLB Stats API y la tabla de win expectancy.
type MLBConfig struct {
	BaseURL             string `yaml:"base_url"`
	MinRequestSpacingMS int    `yaml:"min_request_spacing_ms"`
	WinProbTable        string `yaml:"win_prob_table"` // CSV
}

// FeedConfig controla la reconexión del websocket.
type FeedConfig struct {
	ReconnectBackoffSeconds int `yaml:"reconnect_backoff_seconds"`
	MaxDialFailures         int `yaml:"max_dial_failures"` // 0 = reintentar siempre
}

// ModelConfig son los parámetros del blend pregame/live.
type ModelConfig struct {
	AlphaT    float64 `yaml:"alpha_t"`
	AlphaProb float64 `yaml:"alpha_prob"`
}

// StrategyConfig elige la estrategia y el ledger simulado.
type StrategyConfig struct {
	Name        string  `yaml:"name"` // simple | conservative | aggressive_value | all
	InitialCash float64 `yaml:"initial_cash"`
	MinPosition int     `yaml:"min_position"` // 0 y 0 = límites del preset
	MaxPosition int     `yaml:"max_position"`
}

// LiveConfig controla qué mercados se operan en vivo.
type LiveConfig struct {
	Series               []string `yaml:"series"`
	Tickers              []string `yaml:"tickers"` // si no está vacío, ignora series
	GameRefreshSeconds   int      `yaml:"game_refresh_seconds"`
	PregameWindowMinutes int      `yaml:"pregame_window_minutes"`
}

// BacktestConfig controla el replay histórico.
type BacktestConfig struct {
	Workers     int `yaml:"workers"` // 0 = NumCPU
	TickSeconds int `yaml:"tick_seconds"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// MetricsConfig controla el endpoint de Prometheus en modo live.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // vacío = deshabilitado
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
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

// KalshiSpacing devuelve el espaciado mínimo entre llamadas a Kalshi.
func (c *Config) KalshiSpacing() time.Duration {
	return time.Duration(c.Kalshi.MinRequestSpacingMS) * time.Millisecond
}

// MLBSpacing devuelve el espaciado mínimo entre llamadas a MLB Stats API.
func (c *Config) MLBSpacing() time.Duration {
	return time.Duration(c.MLB.MinRequestSpacingMS) * time.Millisecond
}

// ReconnectBackoff devuelve la espera fija antes de cada reconexión.
func (c *Config) ReconnectBackoff() time.Duration {
	return time.Duration(c.Feed.ReconnectBackoffSeconds) * time.Second
}

// GameRefresh devuelve el intervalo mínimo entre lecturas del estado del partido.
func (c *Config) GameRefresh() time.Duration {
	return time.Duration(c.Live.GameRefreshSeconds) * time.Second
}

// PregameWindow devuelve la ventana de velas tras el inicio del partido.
func (c *Config) PregameWindow() time.Duration {
	return time.Duration(c.Live.PregameWindowMinutes) * time.Minute
}

// TickInterval devuelve el paso del replay de backtest.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Backtest.TickSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KALSHI_KEY_ID"); v != "" {
		cfg.Kalshi.KeyID = v
	}
	if v := os.Getenv("KALSHI_KEY_FILE"); v != "" {
		cfg.Kalshi.KeyFile = v
	}
	if v := os.Getenv("KALSHI_ENV"); v != "" {
		cfg.Kalshi.Env = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Kalshi.Env == "" {
		cfg.Kalshi.Env = "prod"
	}
	if cfg.Kalshi.MinRequestSpacingMS <= 0 {
		cfg.Kalshi.MinRequestSpacingMS = 100
	}
	if cfg.MLB.BaseURL == "" {
		cfg.MLB.BaseURL = "https://statsapi.mlb.com"
	}
	if cfg.MLB.MinRequestSpacingMS <= 0 {
		cfg.MLB.MinRequestSpacingMS = 100
	}
	if cfg.MLB.WinProbTable == "" {
		cfg.MLB.WinProbTable = "data/win_probability.csv"
	}
	if cfg.Feed.ReconnectBackoffSeconds <= 0 {
		cfg.Feed.ReconnectBackoffSeconds = 5
	}
	if cfg.Model.AlphaT <= 0 {
		cfg.Model.AlphaT = 6
	}
	if cfg.Model.AlphaProb <= 0 {
		cfg.Model.AlphaProb = 12
	}
	if cfg.Strategy.Name == "" {
		cfg.Strategy.Name = "simple"
	}
	if cfg.Strategy.InitialCash <= 0 {
		cfg.Strategy.InitialCash = 100
	}
	if len(cfg.Live.Series) == 0 && len(cfg.Live.Tickers) == 0 {
		cfg.Live.Series = []string{"KXMLBGAME"}
	}
	if cfg.Live.GameRefreshSeconds <= 0 {
		cfg.Live.GameRefreshSeconds = 10
	}
	if cfg.Live.PregameWindowMinutes <= 0 {
		cfg.Live.PregameWindowMinutes = 1
	}
	if cfg.Backtest.TickSeconds <= 0 {
		cfg.Backtest.TickSeconds = 60
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "kalshi.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
