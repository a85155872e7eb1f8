package db

import (
	"context"
	"fmt"
)

// schemaSQL defines every table the pipeline maintains. Foreign-key delete
// behavior is part of the contract the cleanup passes rely on:
//
//	match_series.team1_id/team2_id  RESTRICT  — a referenced team cannot be
//	                                            deleted until its series rows
//	                                            are removed or repointed
//	match_series.winner_team_id     SET NULL  — winner survives team removal
//	tournament_placements.team_id   CASCADE   — removed with the team
//	player_map_stats.team_id        CASCADE   — removed with the team
//	team_rosters.team_id/player_id  CASCADE   — removed with the parent
const schemaSQL = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	game_name TEXT NOT NULL,
	liquipedia_wiki TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
	team_id SERIAL PRIMARY KEY,
	team_name TEXT NOT NULL,
	game_id TEXT NOT NULL REFERENCES games(game_id),
	region TEXT,
	location TEXT,
	is_disbanded BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (team_name, game_id)
);

CREATE TABLE IF NOT EXISTS players (
	player_id SERIAL PRIMARY KEY,
	player_nickname TEXT NOT NULL,
	game_id TEXT NOT NULL REFERENCES games(game_id),
	birth_date DATE,
	nationality TEXT,
	status TEXT,
	curr_role TEXT,
	player_type TEXT,
	UNIQUE (player_nickname, game_id)
);

CREATE TABLE IF NOT EXISTS tournaments (
	tournament_id SERIAL PRIMARY KEY,
	tournament_name TEXT NOT NULL,
	game_id TEXT NOT NULL REFERENCES games(game_id),
	tier TEXT,
	start_date DATE,
	end_date DATE,
	tournament_type TEXT,
	region TEXT,
	location TEXT,
	prize_pool NUMERIC,
	tournament_weight NUMERIC,
	UNIQUE (tournament_name, game_id, start_date)
);

CREATE TABLE IF NOT EXISTS team_rosters (
	roster_id SERIAL PRIMARY KEY,
	team_id INTEGER NOT NULL REFERENCES teams(team_id) ON DELETE CASCADE,
	player_id INTEGER NOT NULL REFERENCES players(player_id) ON DELETE CASCADE,
	player_nickname TEXT,
	join_date DATE NOT NULL,
	leave_date DATE,
	is_substitute BOOLEAN NOT NULL DEFAULT FALSE,
	role_during_tenure TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	UNIQUE (team_id, player_id, join_date)
);

-- At most one active membership per (team, player); the upserter targets
-- this index so a re-fetched active entry updates in place.
CREATE UNIQUE INDEX IF NOT EXISTS uq_team_rosters_active
	ON team_rosters (team_id, player_id) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS match_series (
	series_id TEXT PRIMARY KEY,
	tournament_id INTEGER NOT NULL REFERENCES tournaments(tournament_id) ON DELETE CASCADE,
	game_id TEXT NOT NULL REFERENCES games(game_id),
	series_date TIMESTAMPTZ NOT NULL,
	team1_id INTEGER NOT NULL REFERENCES teams(team_id) ON DELETE RESTRICT,
	team2_id INTEGER NOT NULL REFERENCES teams(team_id) ON DELETE RESTRICT,
	team1_score INTEGER NOT NULL,
	team2_score INTEGER NOT NULL,
	winner_team_id INTEGER REFERENCES teams(team_id) ON DELETE SET NULL,
	best_of INTEGER,
	is_forfeit BOOLEAN NOT NULL DEFAULT FALSE,
	tier TEXT
);

CREATE TABLE IF NOT EXISTS played_maps (
	map_id TEXT PRIMARY KEY,
	series_id TEXT NOT NULL REFERENCES match_series(series_id) ON DELETE CASCADE,
	map_name TEXT NOT NULL,
	map_number INTEGER NOT NULL,
	team1_score INTEGER NOT NULL,
	team2_score INTEGER NOT NULL,
	winner_team_id INTEGER REFERENCES teams(team_id) ON DELETE SET NULL,
	UNIQUE (series_id, map_number)
);

CREATE TABLE IF NOT EXISTS tournament_placements (
	placement_id SERIAL PRIMARY KEY,
	tournament_id INTEGER NOT NULL REFERENCES tournaments(tournament_id) ON DELETE CASCADE,
	team_id INTEGER NOT NULL REFERENCES teams(team_id) ON DELETE CASCADE,
	placement TEXT NOT NULL,
	placement_lower INTEGER NOT NULL,
	placement_upper INTEGER NOT NULL,
	prize_money NUMERIC,
	currency TEXT,
	UNIQUE (tournament_id, team_id)
);

CREATE TABLE IF NOT EXISTS player_map_stats (
	stat_id SERIAL PRIMARY KEY,
	map_id TEXT NOT NULL REFERENCES played_maps(map_id) ON DELETE CASCADE,
	player_id INTEGER NOT NULL REFERENCES players(player_id) ON DELETE CASCADE,
	team_id INTEGER NOT NULL REFERENCES teams(team_id) ON DELETE CASCADE,
	kills INTEGER,
	deaths INTEGER,
	assists INTEGER,
	adr NUMERIC,
	headshot_pct NUMERIC,
	agent TEXT,
	rating NUMERIC,
	UNIQUE (map_id, player_id)
);
`

// Setup creates all tables and indexes if they do not exist. Safe to run
// repeatedly.
func (p *Pool) Setup(ctx context.Context) error {
	if _, err := p.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
