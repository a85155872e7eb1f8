package cleanup

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	for i, d := range dest {
		switch dst := d.(type) {
		case *int:
			*dst = row[i].(int)
		case *string:
			*dst = row[i].(string)
		}
	}
	return nil
}

type fakeQuerier struct {
	rows    *fakeRows
	deleted []any
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.deleted = append(q.deleted, args[0])
	return pgconn.CommandTag{}, nil
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return q.rows, nil
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, "awper", NormalizeRole("  AWPer "))
	assert.Equal(t, "entry fragger", NormalizeRole("Entry Fragger"))
	assert.Equal(t, "", NormalizeRole("   "))
}

func TestFindInvalidRolePlayers(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{rows: [][]any{
		{1, "aim", "cs2", "AWPer"},
		{2, "coachguy", "cs2", "Coach"},
		{3, "flexer", "valorant", "Flex"},
		{4, "odd", "valorant", "Weapons Specialist"},
	}}}

	vocab := []string{"awper", "flex"}
	got, err := FindInvalidRolePlayers(context.Background(), q, vocab)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "coachguy", got[0].Nickname)
	assert.Equal(t, "odd", got[1].Nickname)
}

func TestPurgeInvalidRolesDryRunDeletesNothing(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{rows: [][]any{
		{2, "coachguy", "cs2", "Coach"},
	}}}

	rep, err := PurgeInvalidRoles(context.Background(), q, nil, []string{"awper"}, true)
	require.NoError(t, err)
	assert.True(t, rep.DryRun)
	assert.Equal(t, 1, rep.Examined)
	assert.Equal(t, 0, rep.Deleted)
	assert.Empty(t, q.deleted)
}

func TestPurgeInvalidRolesDeletesCandidates(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{rows: [][]any{
		{2, "coachguy", "cs2", "Coach"},
		{4, "odd", "valorant", "Weapons Specialist"},
	}}}

	rep, err := PurgeInvalidRoles(context.Background(), q, nil, []string{"awper"}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Examined)
	assert.Equal(t, 2, rep.Deleted)
	assert.Equal(t, []any{2, 4}, q.deleted)
}

func TestReportSummary(t *testing.T) {
	rep := Report{Examined: 3, Deleted: 1, Applied: 1, Blocked: 2, DryRun: false}
	assert.Equal(t, "apply examined=3 deleted=1 applied=1 blocked=2", rep.Summary())

	rep.DryRun = true
	assert.Contains(t, rep.Summary(), "dry-run")
}
