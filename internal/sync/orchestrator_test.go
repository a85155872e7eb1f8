package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectares/aresdata/internal/store"
)

// fakeRow scans canned values into the destinations.
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
		case *string:
			*dst = r.vals[i].(string)
		default:
			return fmt.Errorf("fakeRow: unsupported dest %T", d)
		}
	}
	return nil
}

// fakeQuerier dispatches QueryRow by SQL text.
type fakeQuerier struct {
	queryRow func(sql string, args ...any) fakeRow
}

func (q fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("fakeQuerier: Query not scripted")
}

func (q fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if q.queryRow == nil {
		return fakeRow{err: fmt.Errorf("fakeQuerier: QueryRow not scripted")}
	}
	return q.queryRow(sql, args...)
}

func okStage(name string, prio int, order *[]string, deps ...string) *Stage {
	return &Stage{
		Name:      name,
		Priority:  prio,
		DependsOn: deps,
		Run: func(ctx context.Context) (*store.Result, error) {
			*order = append(*order, name)
			return store.NewResult(), nil
		},
	}
}

func failStage(name string, prio int, order *[]string, deps ...string) *Stage {
	return &Stage{
		Name:      name,
		Priority:  prio,
		DependsOn: deps,
		Run: func(ctx context.Context) (*store.Result, error) {
			*order = append(*order, name)
			return store.NewResult(), fmt.Errorf("%s broke", name)
		},
	}
}

func TestOrchestratorRunsInDependencyOrder(t *testing.T) {
	var order []string
	stages := []*Stage{
		okStage("rosters", 5, &order, "teams", "players"),
		okStage("players", 3, &order, "games"),
		okStage("teams", 2, &order, "games"),
		okStage("games", 1, &order),
	}
	orch, err := NewOrchestrator(stages, fakeQuerier{}, nil)
	require.NoError(t, err)

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"games", "teams", "players", "rosters"}, order)
	assert.False(t, report.Failed())
	for _, s := range report.Stages {
		assert.Equal(t, StatusSucceeded, s.Status)
	}
}

func TestOrchestratorSkipsTransitiveDependents(t *testing.T) {
	var order []string
	stages := []*Stage{
		okStage("games", 1, &order),
		failStage("teams", 2, &order, "games"),
		okStage("players", 3, &order, "games"),
		okStage("rosters", 5, &order, "teams", "players"),
		okStage("series", 6, &order, "teams"),
		okStage("mapstats", 8, &order, "series", "players"),
	}
	orch, err := NewOrchestrator(stages, fakeQuerier{}, nil)
	require.NoError(t, err)

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Failed())

	status := map[string]Status{}
	for _, s := range report.Stages {
		status[s.Name] = s.Status
	}
	assert.Equal(t, StatusSucceeded, status["games"])
	assert.Equal(t, StatusFailed, status["teams"])
	assert.Equal(t, StatusSucceeded, status["players"])
	assert.Equal(t, StatusSkipped, status["rosters"])
	assert.Equal(t, StatusSkipped, status["series"])
	assert.Equal(t, StatusSkipped, status["mapstats"])
	assert.NotContains(t, order, "rosters")
	assert.NotContains(t, order, "series")
	assert.NotContains(t, order, "mapstats")
}

func TestOrchestratorStructuralCheckFailsStage(t *testing.T) {
	var order []string
	empty := fakeQuerier{queryRow: func(sql string, args ...any) fakeRow {
		return fakeRow{vals: []any{false}} // every table reads as empty
	}}
	stages := []*Stage{
		okStage("games", 1, &order),
		{
			Name:         "teams",
			Priority:     2,
			DependsOn:    []string{"games"},
			RequiresRows: []string{"games"},
			Run: func(ctx context.Context) (*store.Result, error) {
				t.Fatal("stage body must not run when a required table is empty")
				return nil, nil
			},
		},
	}
	orch, err := NewOrchestrator(stages, empty, nil)
	require.NoError(t, err)

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Stages, 2)
	assert.Equal(t, StatusFailed, report.Stages[1].Status)
	assert.Contains(t, report.Stages[1].Err.Error(), "empty")
}

func TestOrchestratorRunOnlyIncludesDependencies(t *testing.T) {
	var order []string
	stages := []*Stage{
		okStage("games", 1, &order),
		okStage("teams", 2, &order, "games"),
		okStage("players", 3, &order, "games"),
		okStage("rosters", 5, &order, "teams", "players"),
	}
	orch, err := NewOrchestrator(stages, fakeQuerier{}, nil)
	require.NoError(t, err)

	report, err := orch.RunOnly(context.Background(), "teams")
	require.NoError(t, err)
	assert.Equal(t, []string{"games", "teams"}, order)
	assert.Len(t, report.Stages, 2)

	_, err = orch.RunOnly(context.Background(), "nope")
	assert.Error(t, err)
}

func TestOrchestratorRejectsUnknownDependency(t *testing.T) {
	var order []string
	_, err := NewOrchestrator([]*Stage{okStage("teams", 1, &order, "games")}, fakeQuerier{}, nil)
	assert.Error(t, err)
}

func TestOrchestratorRejectsDependencyCycle(t *testing.T) {
	var order []string
	_, err := NewOrchestrator([]*Stage{
		okStage("teams", 1, &order, "rosters"),
		okStage("rosters", 2, &order, "teams"),
	}, fakeQuerier{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")

	_, err = NewOrchestrator([]*Stage{
		okStage("games", 1, &order, "games"),
	}, fakeQuerier{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}
