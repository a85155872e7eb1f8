// Package store persists normalized entities with natural-key upserts.
//
// Every write is a single conflict-aware statement: insert, or update in
// place on key collision. Each statement is atomic on its own, so a crash
// mid-batch never leaves a half-applied record and a re-run converges to
// the same end state.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the store needs. Narrow on purpose
// so tests can substitute a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// --------------------------------------------------------------------------
// Normalized entities
// --------------------------------------------------------------------------

// Game is the root entity; every other entity hangs off a game_id.
type Game struct {
	ID   string
	Name string
	Wiki string
}

// Team exists independent of any roster. Stale teams are the cleanup
// package's responsibility, never the upserter's.
type Team struct {
	Name      string
	GameID    string
	Region    string
	Location  string
	Disbanded bool
}

type Player struct {
	Nickname    string
	GameID      string
	BirthDate   *time.Time
	Nationality string
	Status      string
	Role        string
	Type        string
}

type Tournament struct {
	Name      string
	GameID    string
	Tier      string
	StartDate time.Time
	EndDate   time.Time
	Type      string
	Region    string
	Location  string
	PrizePool *float64
	Weight    float64
}

// RosterEntry is one membership row. History rows key on (team, player,
// join date); at most one active row may exist per (team, player).
type RosterEntry struct {
	TeamID     int
	PlayerID   int
	Nickname   string
	JoinDate   time.Time
	LeaveDate  *time.Time
	Substitute bool
	Role       string
	Status     string
}

// Series is one match series, keyed by the externally assigned match id.
type Series struct {
	ID           string
	TournamentID int
	GameID       string
	Date         time.Time
	Team1ID      int
	Team2ID      int
	Team1Score   int
	Team2Score   int
	WinnerTeamID *int
	BestOf       int
	Forfeit      bool
	Tier         string
}

type Placement struct {
	TournamentID int
	TeamID       int
	Placement    string
	Lower        int
	Upper        int
	PrizeMoney   *float64
	Currency     string
}

// PlayedMap is one map inside a series, keyed by the external game id.
type PlayedMap struct {
	ID           string
	SeriesID     string
	Name         string
	Number       int
	Team1Score   int
	Team2Score   int
	WinnerTeamID *int
}

type MapStat struct {
	MapID       string
	PlayerID    int
	TeamID      int
	Kills       int
	Deaths      int
	Assists     int
	ADR         float64
	HeadshotPct float64
	Agent       string
	Rating      float64
}

// --------------------------------------------------------------------------
// Error classification
// --------------------------------------------------------------------------

// IsForeignKeyViolation reports whether err is a Postgres foreign key
// violation (SQLSTATE 23503). The cleanup passes surface these verbatim;
// the stages treat them as per-record validation failures.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// IsUniqueViolation reports whether err is a unique constraint violation
// (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// nilEmpty returns nil for empty strings (maps to SQL NULL).
func nilEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// HasRows reports whether a table contains at least one row. Stages use it
// as the structural dependency check before touching a child entity type.
func HasRows(ctx context.Context, q Querier, table string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s)", table)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s populated: %w", table, err)
	}
	return exists, nil
}
