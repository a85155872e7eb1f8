package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by the lookup helpers when no row matches.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNoRows reports whether err is pgx's empty result sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// TeamIDByName resolves a team's surrogate id from its natural key.
func TeamIDByName(ctx context.Context, q Querier, name, gameID string) (int, error) {
	var id int
	err := q.QueryRow(ctx, "team_id_by_name", name, gameID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("team %q (%s): %w", name, gameID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup team %q: %w", name, err)
	}
	return id, nil
}

// PlayerIDByNickname resolves a player's surrogate id from its natural key.
func PlayerIDByNickname(ctx context.Context, q Querier, nickname, gameID string) (int, error) {
	var id int
	err := q.QueryRow(ctx,
		"SELECT player_id FROM players WHERE player_nickname = $1 AND game_id = $2",
		nickname, gameID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("player %q (%s): %w", nickname, gameID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup player %q: %w", nickname, err)
	}
	return id, nil
}

// TournamentNameCandidates expands a raw tournament reference into lookup
// candidates, most specific first. Match records often carry a stage suffix
// the tournaments endpoint does not ("ESL Pro League S19: Playoffs",
// "... - Group A"), so each candidate progressively strips one suffix.
func TournamentNameCandidates(raw string) []string {
	name := strings.TrimSpace(strings.ReplaceAll(raw, "_", " "))
	if name == "" {
		return nil
	}
	candidates := []string{name}
	seen := map[string]bool{name: true}

	cur := name
	for {
		stripped := cur
		if i := strings.LastIndex(stripped, ": "); i > 0 {
			stripped = strings.TrimSpace(stripped[:i])
		} else if i := strings.LastIndex(stripped, " - "); i > 0 {
			stripped = strings.TrimSpace(stripped[:i])
		} else if i := strings.LastIndex(stripped, "/"); i > 0 {
			stripped = strings.TrimSpace(stripped[:i])
		} else {
			break
		}
		if stripped == "" || seen[stripped] {
			break
		}
		candidates = append(candidates, stripped)
		seen[stripped] = true
		cur = stripped
	}
	return candidates
}

// FindTournamentForDate resolves the tournament a series belongs to. Each
// name candidate is checked against tournaments whose date window contains
// the series date; with several matches the latest start date wins. When no
// window contains the date, the candidate closest by start date is used so a
// series played a day before the listed start still attaches.
func FindTournamentForDate(ctx context.Context, q Querier, rawName, gameID string, date time.Time) (int, error) {
	candidates := TournamentNameCandidates(rawName)
	if len(candidates) == 0 {
		return 0, fmt.Errorf("tournament name empty: %w", ErrNotFound)
	}

	for _, name := range candidates {
		id, err := tournamentInWindow(ctx, q, name, gameID, date)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}

	// Fallback: nearest start date among exact name matches.
	for _, name := range candidates {
		id, err := tournamentNearest(ctx, q, name, gameID, date)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}
	return 0, fmt.Errorf("tournament %q around %s: %w", rawName, date.Format("2006-01-02"), ErrNotFound)
}

func tournamentInWindow(ctx context.Context, q Querier, name, gameID string, date time.Time) (int, error) {
	rows, err := q.Query(ctx, "tournament_in_window", name, gameID, date)
	if err != nil {
		return 0, fmt.Errorf("tournament window %q: %w", name, err)
	}
	defer rows.Close()

	var (
		bestID    int
		bestStart time.Time
		found     bool
	)
	for rows.Next() {
		var (
			id         int
			start, end time.Time
		)
		if err := rows.Scan(&id, &start, &end); err != nil {
			return 0, err
		}
		if !found || start.After(bestStart) {
			bestID, bestStart, found = id, start, true
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrNotFound
	}
	return bestID, nil
}

func tournamentNearest(ctx context.Context, q Querier, name, gameID string, date time.Time) (int, error) {
	var id int
	err := q.QueryRow(ctx, `
		SELECT tournament_id FROM tournaments
		WHERE tournament_name = $1 AND game_id = $2 AND start_date IS NOT NULL
		ORDER BY abs(extract(epoch FROM (start_date::timestamptz - $3::timestamptz)))
		LIMIT 1`,
		name, gameID, date,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("tournament nearest %q: %w", name, err)
	}
	return id, nil
}
