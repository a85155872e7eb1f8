// Package maintenance runs periodic background checks as Go tickers. The
// API server is already a persistent process, so consistency monitoring
// lives here instead of an external scheduler.
//
// The sweep is report-only: it counts reconciliation candidates and logs
// them. Deleting anything remains an explicit operator action through the
// ingest CLI.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectares/aresdata/internal/cleanup"
	"github.com/projectares/aresdata/internal/config"
)

// Config controls sweep intervals. Zero duration disables a task.
type Config struct {
	ConsistencyInterval time.Duration
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{ConsistencyInterval: 1 * time.Hour}
}

// Start launches the configured tickers. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, pool *pgxpool.Pool, appCfg *config.Config, cfg Config, logger *slog.Logger) {
	if cfg.ConsistencyInterval <= 0 {
		return
	}
	logger.Info("Maintenance ticker started", "consistency", cfg.ConsistencyInterval)

	ticker := time.NewTicker(cfg.ConsistencyInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			consistencySweep(ctx, pool, appCfg, logger)
		case <-ctx.Done():
			logger.Info("Maintenance ticker stopped")
			return
		}
	}
}

// consistencySweep counts stale teams and out-of-vocabulary roles without
// touching anything.
func consistencySweep(ctx context.Context, pool *pgxpool.Pool, appCfg *config.Config, logger *slog.Logger) {
	stale, err := cleanup.FindStaleTeams(ctx, pool, appCfg.StaleAuthority)
	if err != nil {
		logger.Warn("Sweep: stale team check failed", "error", err)
	} else if len(stale) > 0 {
		blocked := 0
		for _, st := range stale {
			if st.SeriesRefs > 0 {
				blocked++
			}
		}
		logger.Info("Sweep: stale teams pending cleanup",
			"count", len(stale), "with_series_refs", blocked,
			"authority", appCfg.StaleAuthority)
	}

	invalid, err := cleanup.FindInvalidRolePlayers(ctx, pool, appCfg.RoleVocabulary)
	if err != nil {
		logger.Warn("Sweep: role check failed", "error", err)
	} else if len(invalid) > 0 {
		logger.Info("Sweep: players with out-of-vocabulary roles", "count", len(invalid))
	}
}
