package cleanup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/projectares/aresdata/internal/store"
)

// serialTables lists every surrogate-keyed table and its primary key
// column. Tables with natural text keys (games, match_series, played_maps)
// carry no sequence and are not listed.
var serialTables = []struct {
	table string
	pk    string
}{
	{"teams", "team_id"},
	{"players", "player_id"},
	{"tournaments", "tournament_id"},
	{"team_rosters", "roster_id"},
	{"tournament_placements", "placement_id"},
	{"player_map_stats", "stat_id"},
}

// ResyncSequences restarts the serial sequence of every emptied table so
// the next insert gets id 1 again. Non-empty tables are left alone; their
// sequence position is part of live data.
func ResyncSequences(ctx context.Context, q store.Querier, logger *slog.Logger, dryRun bool) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rep := &Report{DryRun: dryRun}
	for _, st := range serialTables {
		populated, err := store.HasRows(ctx, q, st.table)
		if err != nil {
			return rep, err
		}
		if populated {
			continue
		}
		rep.Examined++
		rep.note("%s: empty, sequence restarts at 1", st.table)
		logger.Info("Sequence resync candidate", "table", st.table, "dry_run", dryRun)
		if dryRun {
			continue
		}
		_, err = q.Exec(ctx, fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', '%s'), 1, false)", st.table, st.pk))
		if err != nil {
			return rep, fmt.Errorf("resync sequence for %s: %w", st.table, err)
		}
		rep.Applied++
	}
	return rep, nil
}
