// Package db provides a pgxpool-based connection pool with prepared statement
// registration, health checking, and schema setup.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectares/aresdata/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers the statements the API and ingestion
// layers reuse on every run. Prepared statements eliminate parse overhead.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// API: listings
		"api_games": `SELECT json_agg(row_to_json(g) ORDER BY g.game_id)
			FROM games g`,
		"api_tournaments": `SELECT json_agg(row_to_json(t) ORDER BY t.start_date DESC)
			FROM tournaments t WHERE t.game_id = $1`,
		"api_teams": `SELECT json_agg(row_to_json(x) ORDER BY x.team_name) FROM (
			SELECT t.team_id, t.team_name, t.region, t.is_disbanded,
				(SELECT count(*) FROM match_series s
					WHERE s.team1_id = t.team_id OR s.team2_id = t.team_id) AS series_count
			FROM teams t WHERE t.game_id = $1) x`,

		// API: team profile with active roster
		"api_team_profile": `SELECT row_to_json(x) FROM (
			SELECT t.team_id, t.team_name, t.game_id, t.region, t.location, t.is_disbanded,
				(SELECT count(*) FROM match_series s
					WHERE s.team1_id = t.team_id OR s.team2_id = t.team_id) AS series_count,
				(SELECT coalesce(json_agg(row_to_json(r) ORDER BY r.join_date), '[]'::json)
					FROM (SELECT tr.player_id, tr.player_nickname, tr.join_date,
						tr.is_substitute, tr.role_during_tenure
						FROM team_rosters tr
						WHERE tr.team_id = t.team_id AND tr.status = 'active') r) AS active_roster
			FROM teams t WHERE t.team_id = $1) x`,

		// Ingestion: lookups used by the series and placement stages
		"team_id_by_name": "SELECT team_id FROM teams WHERE team_name = $1 AND game_id = $2",
		"tournament_in_window": `SELECT tournament_id, start_date, end_date FROM tournaments
			WHERE tournament_name = $1 AND game_id = $2
			  AND start_date <= $3 AND end_date >= $3`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
