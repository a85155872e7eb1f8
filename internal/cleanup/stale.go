package cleanup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/projectares/aresdata/internal/config"
	"github.com/projectares/aresdata/internal/store"
)

// StaleTeam is one purge candidate with the evidence behind it.
type StaleTeam struct {
	TeamID int
	Name   string
	GameID string
	// SeriesRefs counts match_series rows that reference the team as a
	// participant. Those references RESTRICT deletion; a candidate with
	// refs will be reported as blocked, never force-deleted.
	SeriesRefs int
}

// FindStaleTeams lists teams the configured authority considers gone.
// Authority "roster" flags teams with zero active roster rows; authority
// "source" trusts the upstream disbanded flag instead.
func FindStaleTeams(ctx context.Context, q store.Querier, authority config.StaleTeamAuthority) ([]StaleTeam, error) {
	var cond string
	switch authority {
	case config.AuthoritySource:
		cond = "t.is_disbanded"
	default:
		cond = `NOT EXISTS (SELECT 1 FROM team_rosters tr
			WHERE tr.team_id = t.team_id AND tr.status = 'active')`
	}

	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT t.team_id, t.team_name, t.game_id,
			(SELECT count(*) FROM match_series s
				WHERE s.team1_id = t.team_id OR s.team2_id = t.team_id)
		FROM teams t
		WHERE %s
		ORDER BY t.game_id, t.team_name`, cond))
	if err != nil {
		return nil, fmt.Errorf("find stale teams: %w", err)
	}
	defer rows.Close()

	var out []StaleTeam
	for rows.Next() {
		var st StaleTeam
		if err := rows.Scan(&st.TeamID, &st.Name, &st.GameID, &st.SeriesRefs); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// PurgeStaleTeams removes stale teams. Deleting a team cascades its roster
// rows, placements and map stat lines; series participation RESTRICTs the
// delete, and that violation is surfaced verbatim per candidate rather than
// worked around.
func PurgeStaleTeams(ctx context.Context, q store.Querier, logger *slog.Logger, authority config.StaleTeamAuthority, dryRun bool) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	candidates, err := FindStaleTeams(ctx, q, authority)
	if err != nil {
		return nil, err
	}

	rep := &Report{Examined: len(candidates), DryRun: dryRun}
	for _, st := range candidates {
		rep.note("team %d %q (%s): series_refs=%d", st.TeamID, st.Name, st.GameID, st.SeriesRefs)
		logger.Info("Stale team candidate",
			"team_id", st.TeamID, "team", st.Name, "game", st.GameID,
			"series_refs", st.SeriesRefs, "authority", authority, "dry_run", dryRun)
		if dryRun {
			continue
		}
		_, err := q.Exec(ctx, "DELETE FROM teams WHERE team_id = $1", st.TeamID)
		if store.IsForeignKeyViolation(err) {
			rep.Blocked++
			rep.note("team %d %q: blocked: %v", st.TeamID, st.Name, err)
			logger.Warn("Stale team delete blocked",
				"team_id", st.TeamID, "team", st.Name, "error", err)
			continue
		}
		if err != nil {
			return rep, fmt.Errorf("delete team %d %q: %w", st.TeamID, st.Name, err)
		}
		rep.Deleted++
	}
	return rep, nil
}
