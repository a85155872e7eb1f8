package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		if i >= len(r.vals) {
			break
		}
		switch dst := d.(type) {
		case *bool:
			*dst = r.vals[i].(bool)
		case *int:
			*dst = r.vals[i].(int)
		}
	}
	return nil
}

// captureQuerier records the last statement and returns a scripted row.
type captureQuerier struct {
	sql  string
	args []any
	row  fakeRow
}

func (q *captureQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql, q.args = sql, args
	return pgconn.CommandTag{}, nil
}

func (q *captureQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	return nil, pgx.ErrNoRows
}

func (q *captureQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return q.row
}

func TestUpsertTeamReportsInsertVsUpdate(t *testing.T) {
	q := &captureQuerier{row: fakeRow{vals: []any{5, true}}}
	id, inserted, err := UpsertTeam(context.Background(), q, Team{Name: "Team A", GameID: "cs2"})
	require.NoError(t, err)
	assert.Equal(t, 5, id)
	assert.True(t, inserted)
	assert.Contains(t, q.sql, "ON CONFLICT (team_name, game_id)")

	q.row = fakeRow{vals: []any{5, false}}
	_, inserted, err = UpsertTeam(context.Background(), q, Team{Name: "Team A", GameID: "cs2"})
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestUpsertTeamEmptyOptionalFieldsAreNull(t *testing.T) {
	q := &captureQuerier{row: fakeRow{vals: []any{1, true}}}
	_, _, err := UpsertTeam(context.Background(), q, Team{Name: "Team A", GameID: "cs2"})
	require.NoError(t, err)
	assert.Nil(t, q.args[2]) // region
	assert.Nil(t, q.args[3]) // location
}

func TestUpsertRosterConflictTargetFollowsStatus(t *testing.T) {
	join := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	q := &captureQuerier{row: fakeRow{vals: []any{true}}}
	_, err := UpsertRoster(context.Background(), q, RosterEntry{
		TeamID: 1, PlayerID: 2, JoinDate: join, Status: "active",
	})
	require.NoError(t, err)
	assert.Contains(t, q.sql, "ON CONFLICT (team_id, player_id) WHERE status = 'active'")

	_, err = UpsertRoster(context.Background(), q, RosterEntry{
		TeamID: 1, PlayerID: 2, JoinDate: join, Status: "former",
	})
	require.NoError(t, err)
	assert.Contains(t, q.sql, "ON CONFLICT (team_id, player_id, join_date)")
	assert.NotContains(t, q.sql, "WHERE status")
}

func TestUpsertPlayerPartialUpdatePreservesStoredValues(t *testing.T) {
	q := &captureQuerier{row: fakeRow{vals: []any{3, false}}}
	id, inserted, err := UpsertPlayer(context.Background(), q, Player{Nickname: "ace", GameID: "cs2"})
	require.NoError(t, err)
	assert.Equal(t, 3, id)
	assert.False(t, inserted)
	// NULL incoming attributes must not clobber what is already stored.
	assert.Contains(t, q.sql, "COALESCE(EXCLUDED.birth_date")
	assert.Contains(t, q.sql, "COALESCE(EXCLUDED.curr_role")
}

func TestErrorClassification(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}
	uq := &pgconn.PgError{Code: "23505"}
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(uq))
	assert.True(t, IsUniqueViolation(uq))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestResultCounting(t *testing.T) {
	res := NewResult()
	res.Record(true)
	res.Record(true)
	res.Record(false)
	res.Skip("bad record %d", 7)

	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 3, res.Total())
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.Contains(res.Errors[0], "7"))

	other := Result{Inserted: 1, Skipped: 2, Errors: []string{"x", "y"}}
	res.Merge(other)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 3, res.Skipped)
	assert.Len(t, res.Errors, 3)
	assert.Equal(t, "inserted=3 updated=1 skipped=3 errors=3", res.Summary())
}
