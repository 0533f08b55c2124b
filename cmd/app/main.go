package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kimp_radar/internal/app"
	"kimp_radar/internal/infra"

	_ "net/http/pprof" // For pprof profiling
)

// wsSymbolLimit caps how many domestic markets the live feed subscribes to.
const wsSymbolLimit = 10

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Conversion rate feed
	if err := bootstrap.Rate.Start(ctx); err != nil {
		slog.Error("Failed to start rate client", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Rate.Stop()

	// 5. Warm the symbol universe and attach the live domestic feed to the
	// current reverse candidates.
	cfg := bootstrap.Config
	maxAge := time.Duration(cfg.Cache.MaxAgeSec) * time.Second
	u, err := bootstrap.Universe.Get(ctx, bootstrap.Bithumb, bootstrap.GateIO, maxAge, false)
	if err != nil {
		slog.Error("❌ Symbol universe fetch failed", slog.Any("error", err))
		os.Exit(1)
	}

	wsSymbols := make([]string, 0, wsSymbolLimit)
	for _, asset := range u.ReverseCandidates {
		if len(wsSymbols) >= wsSymbolLimit {
			break
		}
		if symbol, ok := u.DomesticSymbols[asset]; ok {
			wsSymbols = append(wsSymbols, symbol)
		}
	}

	if len(wsSymbols) > 0 {
		tickChan := make(chan infra.Tick, 256)
		worker := infra.NewBithumbWSWorker(cfg, wsSymbols, tickChan)
		if err := worker.Connect(ctx); err != nil {
			slog.Error("Failed to connect Bithumb WS", slog.Any("error", err))
		}
		defer worker.Disconnect()

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case tick := <-tickChan:
					if pct, ok := bootstrap.Scanner.ObserveTick(tick); ok {
						slog.Debug("tick",
							slog.String("symbol", tick.Symbol),
							slog.Float64("price", tick.Price),
							slog.Float64("indicative_premium_pct", pct),
						)
					}
				}
			}
		}()
		slog.InfoContext(ctx, "✅ Bithumb live feed started", slog.Int("symbols", len(wsSymbols)))
	}

	// 6. Scan loop
	go func() {
		if err := bootstrap.Scanner.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Scanner stopped", slog.Any("error", err))
		}
	}()

	slog.InfoContext(ctx, "✨ Kimp Radar fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	snapshot := bootstrap.Metrics.Snapshot()
	slog.Info("👋 Shutting down gracefully...",
		slog.Uint64("scans", snapshot.ScansTotal),
		slog.Uint64("opportunities", snapshot.OpportunitiesFound),
		slog.Uint64("selections", snapshot.CandidatesSelected),
	)
}
