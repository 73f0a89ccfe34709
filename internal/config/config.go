// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Market configures the tracked universe and the snapshot update cadence.
type Market struct {
	Symbols          []string           `yaml:"symbols"`
	SeedPrices       map[string]float64 `yaml:"seed_prices"`
	UpdateIntervalMs int                `yaml:"update_interval_ms"`
	DetectIntervalMs int                `yaml:"detect_interval_ms"`
	Provider         string             `yaml:"provider"`   // sim | stream
	StreamURL        string             `yaml:"stream_url"` // websocket endpoint for the stream provider
}

// UpdateInterval returns the snapshot update cadence as a duration.
func (m Market) UpdateInterval() time.Duration {
	return time.Duration(m.UpdateIntervalMs) * time.Millisecond
}

// DetectInterval returns the detector cadence as a duration.
func (m Market) DetectInterval() time.Duration {
	return time.Duration(m.DetectIntervalMs) * time.Millisecond
}

// Risk encodes the admission guard-rails applied before capital is committed.
type Risk struct {
	MinConfidence        float64 `yaml:"min_confidence"`
	MaxPositionFraction  float64 `yaml:"max_position_fraction"`
	MaxDailyLossFraction float64 `yaml:"max_daily_loss_fraction"`
}

// Portfolio captures ledger settings such as starting cash and the execution journal path.
type Portfolio struct {
	StartingCash float64 `yaml:"starting_cash"`
	JournalPath  string  `yaml:"journal_path"`
}

// Analytics holds constants used by the statistics and tax modules.
type Analytics struct {
	RiskFreeRate     float64 `yaml:"risk_free_rate"`
	TaxRate          float64 `yaml:"tax_rate"`
	HarvestThreshold float64 `yaml:"harvest_threshold"`
}

// Engine groups runtime toggles for the execution controller.
type Engine struct {
	AutoTrading   bool `yaml:"auto_trading"`
	RegistryDepth int  `yaml:"registry_depth"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App       App       `yaml:"app"`
	Market    Market    `yaml:"market"`
	Risk      Risk      `yaml:"risk"`
	Portfolio Portfolio `yaml:"portfolio"`
	Analytics Analytics `yaml:"analytics"`
	Engine    Engine    `yaml:"engine"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		App: App{Name: "quantdesk", Env: "dev", MetricsAddr: ":9109", LogLevel: "info"},
		Market: Market{
			Symbols: []string{"BTC", "ETH", "SOL"},
			SeedPrices: map[string]float64{
				"BTC": 43000,
				"ETH": 2300,
				"SOL": 98,
			},
			UpdateIntervalMs: 5000,
			DetectIntervalMs: 10000,
			Provider:         "sim",
		},
		Risk: Risk{
			MinConfidence:        70,
			MaxPositionFraction:  0.10,
			MaxDailyLossFraction: 0.02,
		},
		Portfolio: Portfolio{StartingCash: 100000},
		Analytics: Analytics{
			RiskFreeRate:     0.02,
			TaxRate:          0.25,
			HarvestThreshold: 1000,
		},
		Engine: Engine{AutoTrading: false, RegistryDepth: 100},
	}
}

// Load reads a YAML file from disk and hydrates a Config struct on top of the defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
