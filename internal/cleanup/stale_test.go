package cleanup

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectares/aresdata/internal/config"
)

// staleQuerier serves the candidate query and simulates the delete contract:
// team ids in blocked get a foreign key violation, everything else deletes.
type staleQuerier struct {
	rows     [][]any
	blocked  map[int]bool
	querySQL string
	deleted  []int
}

func (q *staleQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	id := args[0].(int)
	if q.blocked[id] {
		return pgconn.CommandTag{}, &pgconn.PgError{
			Code:    "23503",
			Message: `update or delete on table "teams" violates foreign key constraint "match_series_team1_id_fkey"`,
		}
	}
	q.deleted = append(q.deleted, id)
	return pgconn.CommandTag{}, nil
}

func (q *staleQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.querySQL = sql
	return &fakeRows{rows: q.rows}, nil
}

func (q *staleQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func TestFindStaleTeamsAuthorityCondition(t *testing.T) {
	q := &staleQuerier{rows: [][]any{
		{7, "Old Guard", "cs2", 2},
		{9, "Ghosts", "valorant", 0},
	}}

	got, err := FindStaleTeams(context.Background(), q, config.AuthorityRoster)
	require.NoError(t, err)
	assert.Contains(t, q.querySQL, "NOT EXISTS")
	assert.Contains(t, q.querySQL, "status = 'active'")
	require.Len(t, got, 2)
	assert.Equal(t, 7, got[0].TeamID)
	assert.Equal(t, 2, got[0].SeriesRefs)

	_, err = FindStaleTeams(context.Background(), q, config.AuthoritySource)
	require.NoError(t, err)
	assert.Contains(t, q.querySQL, "t.is_disbanded")
	assert.NotContains(t, q.querySQL, "NOT EXISTS")
}

func TestPurgeStaleTeamsDryRunDeletesNothing(t *testing.T) {
	q := &staleQuerier{rows: [][]any{
		{7, "Old Guard", "cs2", 0},
		{9, "Ghosts", "valorant", 0},
	}}

	rep, err := PurgeStaleTeams(context.Background(), q, nil, config.AuthorityRoster, true)
	require.NoError(t, err)
	assert.True(t, rep.DryRun)
	assert.Equal(t, 2, rep.Examined)
	assert.Equal(t, 0, rep.Deleted)
	assert.Empty(t, q.deleted)
}

func TestPurgeStaleTeamsBlockedBySeriesReference(t *testing.T) {
	q := &staleQuerier{
		rows: [][]any{
			{7, "Old Guard", "cs2", 2},
			{9, "Ghosts", "valorant", 0},
		},
		blocked: map[int]bool{7: true},
	}

	rep, err := PurgeStaleTeams(context.Background(), q, nil, config.AuthorityRoster, false)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Examined)
	assert.Equal(t, 1, rep.Deleted)
	assert.Equal(t, 1, rep.Blocked)
	assert.Equal(t, []int{9}, q.deleted)
	assert.Contains(t, rep.Detail(), "blocked")
	assert.Contains(t, rep.Detail(), "foreign key constraint")
}
