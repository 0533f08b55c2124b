package app

import (
	"log/slog"

	"kimp_radar/internal/infra"
	"kimp_radar/internal/infra/storage"
	"kimp_radar/internal/service"
	"kimp_radar/internal/universe"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config   *infra.Config
	Storage  *storage.Storage
	Metrics  *infra.Metrics
	Bithumb  *infra.BithumbClient
	GateIO   *infra.GateIOClient
	Rate     *infra.RateClient
	Universe *universe.Cache
	Scanner  *service.Scanner
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, clients)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Kimp Radar...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.Storage.Path))

	// 4. Venue clients and rate feed
	b.Metrics = &infra.Metrics{}
	b.Bithumb = infra.NewBithumbClient(cfg)
	b.GateIO = infra.NewGateIOClient(cfg)
	b.Rate = infra.NewRateClient(cfg)
	b.Universe = universe.NewCache(cfg.Cache.Path, logger)

	// 5. Scanner service
	b.Scanner = service.NewScanner(cfg, logger, b.Metrics, b.Universe, b.Bithumb, b.GateIO, b.Rate, store)
	slog.Info("✅ Scanner ready",
		slog.String("rate_source", cfg.API.Rate.Source),
		slog.String("reverse_threshold_pct", cfg.Scan.ReverseThresholdPct.String()),
		slog.String("basis_threshold_pct", cfg.Scan.BasisThresholdPct.String()),
	)

	return nil
}
