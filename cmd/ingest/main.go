// Command ingest is the AresData ingestion CLI.
//
// Usage:
//
//	aresdata-ingest setup
//	aresdata-ingest sync run
//	aresdata-ingest sync stage series
//	aresdata-ingest cleanup stale-teams --dry-run
//	aresdata-ingest cleanup roles
//	aresdata-ingest cleanup sequences
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/projectares/aresdata/internal/cleanup"
	"github.com/projectares/aresdata/internal/config"
	"github.com/projectares/aresdata/internal/db"
	"github.com/projectares/aresdata/internal/liquipedia"
	"github.com/projectares/aresdata/internal/sync"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "aresdata-ingest",
		Short: "AresData ingestion CLI",
	}

	root.AddCommand(setupCmd())
	root.AddCommand(syncCmd())
	root.AddCommand(cleanupCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// setup command
// --------------------------------------------------------------------------

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create database tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := pool.Setup(ctx); err != nil {
					return err
				}
				logger.Info("Schema created")
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// sync command
// --------------------------------------------------------------------------

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize data from the Liquipedia API",
	}
	cmd.AddCommand(syncRunCmd())
	cmd.AddCommand(syncStageCmd())
	return cmd
}

func syncRunCmd() *cobra.Command {
	var skipCleanup bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every stage in dependency order, then the cleanup passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				orch, err := buildOrchestrator(cfg, pool)
				if err != nil {
					return err
				}
				start := time.Now()
				report, err := orch.Run(ctx)
				if err != nil {
					return err
				}
				logger.Info("Sync finished",
					"duration", time.Since(start).Round(time.Second))
				fmt.Print(report.Summary())
				if report.Failed() {
					return fmt.Errorf("one or more stages did not succeed")
				}
				if skipCleanup {
					return nil
				}
				return runCleanupPasses(ctx, cfg, pool, false)
			})
		},
	}
	cmd.Flags().BoolVar(&skipCleanup, "skip-cleanup", false, "Run stages only, skip the cleanup passes")
	return cmd
}

// runCleanupPasses executes the three reconciler passes in order.
func runCleanupPasses(ctx context.Context, cfg *config.Config, pool *db.Pool, dryRun bool) error {
	stale, err := cleanup.PurgeStaleTeams(ctx, pool.Pool, logger, cfg.StaleAuthority, dryRun)
	if err != nil {
		return err
	}
	logger.Info("Stale team pass finished", "summary", stale.Summary())

	roles, err := cleanup.PurgeInvalidRoles(ctx, pool.Pool, logger, cfg.RoleVocabulary, dryRun)
	if err != nil {
		return err
	}
	logger.Info("Role pass finished", "summary", roles.Summary())

	seqs, err := cleanup.ResyncSequences(ctx, pool.Pool, logger, dryRun)
	if err != nil {
		return err
	}
	logger.Info("Sequence pass finished", "summary", seqs.Summary())
	return nil
}

func syncStageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stage <name>",
		Short: "Run a single stage plus its dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				orch, err := buildOrchestrator(cfg, pool)
				if err != nil {
					return err
				}
				start := time.Now()
				report, err := orch.RunOnly(ctx, args[0])
				if err != nil {
					return err
				}
				logger.Info("Stage run finished",
					"stage", args[0], "duration", time.Since(start).Round(time.Second))
				fmt.Print(report.Summary())
				if report.Failed() {
					return fmt.Errorf("one or more stages did not succeed")
				}
				return nil
			})
		},
	}
}

func buildOrchestrator(cfg *config.Config, pool *db.Pool) (*sync.Orchestrator, error) {
	if cfg.LiquipediaAPIKey == "" {
		return nil, fmt.Errorf("LIQUIPEDIA_API_KEY is required")
	}
	client := liquipedia.NewClient(cfg, logger)
	pipeline := sync.NewPipeline(pool.Pool, client, cfg, logger)
	return sync.NewOrchestrator(pipeline.Stages(), pool.Pool, logger)
}

// --------------------------------------------------------------------------
// cleanup command
// --------------------------------------------------------------------------

func cleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Reconciler passes: remove rows the sync can no longer justify",
	}
	cmd.AddCommand(cleanupStaleTeamsCmd())
	cmd.AddCommand(cleanupRolesCmd())
	cmd.AddCommand(cleanupSequencesCmd())
	return cmd
}

func cleanupStaleTeamsCmd() *cobra.Command {
	var (
		dryRun    bool
		authority string
	)
	cmd := &cobra.Command{
		Use:   "stale-teams",
		Short: "Purge teams without an active roster (or disbanded upstream)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				auth := cfg.StaleAuthority
				if authority != "" {
					auth = config.StaleTeamAuthority(authority)
					if auth != config.AuthorityRoster && auth != config.AuthoritySource {
						return fmt.Errorf("--authority must be %q or %q",
							config.AuthorityRoster, config.AuthoritySource)
					}
				}
				rep, err := cleanup.PurgeStaleTeams(ctx, pool.Pool, logger, auth, dryRun)
				if err != nil {
					return err
				}
				logger.Info("Stale team pass finished", "summary", rep.Summary())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report candidates without deleting")
	cmd.Flags().StringVar(&authority, "authority", "", "Stale signal: roster or source (default from env)")
	return cmd
}

func cleanupRolesCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Purge players whose role is outside the configured vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				rep, err := cleanup.PurgeInvalidRoles(ctx, pool.Pool, logger, cfg.RoleVocabulary, dryRun)
				if err != nil {
					return err
				}
				logger.Info("Role pass finished", "summary", rep.Summary())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report candidates without deleting")
	return cmd
}

func cleanupSequencesCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sequences",
		Short: "Restart serial sequences of emptied tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				rep, err := cleanup.ResyncSequences(ctx, pool.Pool, logger, dryRun)
				if err != nil {
					return err
				}
				logger.Info("Sequence pass finished", "summary", rep.Summary())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report candidates without resyncing")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, DB connection, and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
