package infra

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds every application setting. Loaded from YAML, then sensitive
// values are overridden from the environment.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Bithumb struct {
			RestURL    string `yaml:"rest_url"`
			GatewayURL string `yaml:"gateway_url"`
			WSURL      string `yaml:"ws_url"`
		} `yaml:"bithumb"`
		GateIO struct {
			RestURL string `yaml:"rest_url"`
		} `yaml:"gateio"`
		Rate struct {
			Source          string          `yaml:"source"` // fx_usd_krw | fx_plus_usdt_premium | bithumb_usdt | upbit_usdt | custom
			PollIntervalSec int             `yaml:"poll_interval_sec"`
			Override        decimal.Decimal `yaml:"override"` // only for source=custom
		} `yaml:"rate"`
	} `yaml:"api"`

	Scan struct {
		ReverseThresholdPct    decimal.Decimal `yaml:"reverse_threshold_pct"`
		KimchiThresholdPct     decimal.Decimal `yaml:"kimchi_threshold_pct"`
		BasisThresholdPct      decimal.Decimal `yaml:"basis_threshold_pct"`
		BasisThresholdCeilPct  decimal.Decimal `yaml:"basis_threshold_ceil_pct"`
		ChunkNotionalUSDT      decimal.Decimal `yaml:"chunk_notional_usdt"`
		OrderbookDepth         int             `yaml:"orderbook_depth"`
		PollIntervalSec        int             `yaml:"poll_interval_sec"`
		BithumbTakerFeeRate    decimal.Decimal `yaml:"bithumb_taker_fee_rate"`
		GateIOSpotTakerFeeRate decimal.Decimal `yaml:"gateio_spot_taker_fee_rate"`
		GateIOPerpTakerFeeRate decimal.Decimal `yaml:"gateio_perp_taker_fee_rate"`
	} `yaml:"scan"`

	Cache struct {
		Path      string `yaml:"path"`
		MaxAgeSec int    `yaml:"max_age_sec"`
	} `yaml:"cache"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.Bithumb.RestURL == "" {
		cfg.API.Bithumb.RestURL = "https://api.bithumb.com"
	}
	if cfg.API.Bithumb.GatewayURL == "" {
		cfg.API.Bithumb.GatewayURL = "https://gw.bithumb.com"
	}
	if cfg.API.GateIO.RestURL == "" {
		cfg.API.GateIO.RestURL = "https://api.gateio.ws"
	}
	if cfg.API.Rate.Source == "" {
		cfg.API.Rate.Source = "bithumb_usdt"
	}
	if cfg.API.Rate.PollIntervalSec <= 0 {
		cfg.API.Rate.PollIntervalSec = 60
	}
	if cfg.Scan.ReverseThresholdPct.IsZero() {
		cfg.Scan.ReverseThresholdPct = decimal.RequireFromString("-0.1")
	}
	if cfg.Scan.BasisThresholdPct.IsZero() {
		cfg.Scan.BasisThresholdPct = decimal.RequireFromString("0.5")
	}
	if cfg.Scan.BasisThresholdCeilPct.IsZero() {
		cfg.Scan.BasisThresholdCeilPct = decimal.RequireFromString("2.0")
	}
	if cfg.Scan.ChunkNotionalUSDT.IsZero() {
		cfg.Scan.ChunkNotionalUSDT = decimal.NewFromInt(1000)
	}
	if cfg.Scan.OrderbookDepth <= 0 {
		cfg.Scan.OrderbookDepth = 20
	}
	if cfg.Scan.PollIntervalSec <= 0 {
		cfg.Scan.PollIntervalSec = 30
	}
	if cfg.Scan.BithumbTakerFeeRate.IsZero() {
		cfg.Scan.BithumbTakerFeeRate = decimal.RequireFromString("0.0004")
	}
	if cfg.Scan.GateIOSpotTakerFeeRate.IsZero() {
		cfg.Scan.GateIOSpotTakerFeeRate = decimal.RequireFromString("0.001")
	}
	if cfg.Scan.GateIOPerpTakerFeeRate.IsZero() {
		cfg.Scan.GateIOPerpTakerFeeRate = decimal.RequireFromString("0.0005")
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "runtime/cache/arbitrage_symbols.json"
	}
	if cfg.Cache.MaxAgeSec == 0 {
		cfg.Cache.MaxAgeSec = 60 * 60 * 24
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "runtime/data/kimp_radar.db"
	}
}

// Validate checks configuration validity and clamps soft limits.
func (c *Config) Validate() error {
	switch c.API.Rate.Source {
	case "fx_usd_krw", "fx_plus_usdt_premium", "bithumb_usdt", "upbit_usdt", "custom":
	default:
		return fmt.Errorf("unsupported rate source: %s", c.API.Rate.Source)
	}
	if c.API.Rate.Source == "custom" && !c.API.Rate.Override.IsPositive() {
		return fmt.Errorf("rate override must be positive for custom source")
	}
	if !c.Scan.ChunkNotionalUSDT.IsPositive() {
		return fmt.Errorf("chunk notional must be positive")
	}
	if c.Scan.BasisThresholdPct.IsNegative() {
		return fmt.Errorf("basis threshold must not be negative")
	}

	// The basis threshold ceiling is a soft safety rail: out-of-range values
	// are clamped with a warning, not rejected.
	if c.Scan.BasisThresholdPct.GreaterThan(c.Scan.BasisThresholdCeilPct) {
		slog.Warn("basis threshold clamped to ceiling",
			slog.String("requested", c.Scan.BasisThresholdPct.String()),
			slog.String("ceiling", c.Scan.BasisThresholdCeilPct.String()),
		)
		c.Scan.BasisThresholdPct = c.Scan.BasisThresholdCeilPct
	}

	return nil
}
